package firmware

import (
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/settings"
)

// ObjectName is the name under which the firmware surface is attached
// to the device's public object graph.
const ObjectName = "firmware"

// Firmware attribute IDs.
const (
	// AttrUpdateMethod is the active update method discriminant.
	AttrUpdateMethod uint16 = 1

	// AttrFastbootAT is the AT command rebooting into fastboot mode.
	// Empty unless the fastboot method is active.
	AttrFastbootAT uint16 = 2
)

// MethodSetUpdateSettings applies an encoded update-settings record;
// requires device-control authorization.
const MethodSetUpdateSettings uint8 = 1

// ParamSettings carries the CBOR-encoded settings record on the
// SetUpdateSettings invocation.
const ParamSettings = "settings"

// Object wraps the exposed bus object with firmware-specific accessors.
type Object struct {
	*model.Object
}

// NewObject creates the firmware bus object. The method starts at
// unknown with no properties published.
func NewObject() *Object {
	obj := model.NewObject(ObjectName)

	obj.AddAttribute(model.NewAttribute(&model.AttributeMetadata{
		ID:          AttrUpdateMethod,
		Name:        "updateMethod",
		Type:        model.DataTypeUint32,
		Access:      model.AccessReadOnly,
		Default:     uint32(settings.MethodUnknown),
		Description: "Active firmware update method",
	}))
	obj.AddAttribute(model.NewAttribute(&model.AttributeMetadata{
		ID:          AttrFastbootAT,
		Name:        "fastbootAt",
		Type:        model.DataTypeString,
		Access:      model.AccessReadOnly,
		Default:     "",
		Description: "AT command rebooting into fastboot mode",
	}))

	return &Object{Object: obj}
}

// UpdateMethod returns the published update method.
func (o *Object) UpdateMethod() settings.UpdateMethod {
	v, err := o.ReadAttribute(AttrUpdateMethod)
	if err != nil {
		return settings.MethodUnknown
	}
	m, _ := v.(uint32)
	return settings.UpdateMethod(m)
}

// FastbootAT returns the published fastboot AT command.
func (o *Object) FastbootAT() string {
	v, err := o.ReadAttribute(AttrFastbootAT)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// publish stores the settings on the exposed attributes.
func (o *Object) publish(s *settings.UpdateSettings) {
	_ = o.SetAttributeInternal(AttrUpdateMethod, uint32(s.Method()))
	_ = o.SetAttributeInternal(AttrFastbootAT, s.FastbootAT())
}
