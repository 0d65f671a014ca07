package signal

import (
	"github.com/modemd-project/modemd-go/pkg/model"
)

// ObjectName is the name under which the signal surface is attached to
// the device's public object graph.
const ObjectName = "signal"

// Signal attribute IDs.
const (
	// AttrRate is the polling rate in seconds (0 = polling disabled).
	AttrRate uint16 = 1

	AttrCdmaRssi uint16 = 10
	AttrCdmaEcio uint16 = 11

	AttrEvdoRssi uint16 = 20
	AttrEvdoEcio uint16 = 21
	AttrEvdoSinr uint16 = 22
	AttrEvdoIo   uint16 = 23

	AttrGsmRssi uint16 = 30

	AttrUmtsRssi uint16 = 40
	AttrUmtsEcio uint16 = 41

	AttrLteRssi uint16 = 50
	AttrLteRsrq uint16 = 51
	AttrLteRsrp uint16 = 52
	AttrLteSnr  uint16 = 53
)

// MethodSetup configures the polling rate; requires device-control
// authorization.
const MethodSetup uint8 = 1

// measurementAttrs lists every per-technology measurement attribute.
var measurementAttrs = []struct {
	id   uint16
	name string
}{
	{AttrCdmaRssi, "cdmaRssi"},
	{AttrCdmaEcio, "cdmaEcio"},
	{AttrEvdoRssi, "evdoRssi"},
	{AttrEvdoEcio, "evdoEcio"},
	{AttrEvdoSinr, "evdoSinr"},
	{AttrEvdoIo, "evdoIo"},
	{AttrGsmRssi, "gsmRssi"},
	{AttrUmtsRssi, "umtsRssi"},
	{AttrUmtsEcio, "umtsEcio"},
	{AttrLteRssi, "lteRssi"},
	{AttrLteRsrq, "lteRsrq"},
	{AttrLteRsrp, "lteRsrp"},
	{AttrLteSnr, "lteSnr"},
}

// Object wraps the exposed bus object with signal-specific accessors.
type Object struct {
	*model.Object
}

// NewObject creates the signal bus object with its attribute set.
// All measurements start unavailable and the rate starts at 0.
func NewObject() *Object {
	obj := model.NewObject(ObjectName)

	obj.AddAttribute(model.NewAttribute(&model.AttributeMetadata{
		ID:          AttrRate,
		Name:        "rate",
		Type:        model.DataTypeUint32,
		Access:      model.AccessReadWrite,
		Default:     uint32(0),
		Description: "Polling rate in seconds (0 = disabled)",
	}))

	for _, m := range measurementAttrs {
		obj.AddAttribute(model.NewAttribute(&model.AttributeMetadata{
			ID:      m.id,
			Name:    m.name,
			Type:    model.DataTypeStruct,
			Access:  model.AccessReadOnly,
			Default: Reading{},
		}))
	}

	return &Object{Object: obj}
}

// Rate returns the currently published polling rate in seconds.
func (o *Object) Rate() uint32 {
	v, err := o.ReadAttribute(AttrRate)
	if err != nil {
		return 0
	}
	rate, _ := v.(uint32)
	return rate
}

// SetRate publishes the polling rate attribute.
func (o *Object) SetRate(rate uint32) {
	_ = o.SetAttributeInternal(AttrRate, rate)
}

// Reading returns the published reading for a measurement attribute.
func (o *Object) Reading(id uint16) Reading {
	v, err := o.ReadAttribute(id)
	if err != nil {
		return Reading{}
	}
	r, _ := v.(Reading)
	return r
}

// publish stores every reading from a measurement bundle.
func (o *Object) publish(m *Measurements) {
	for id, r := range m.readings() {
		_ = o.SetAttributeInternal(id, r)
	}
}

// clearReadings publishes every measurement as unavailable.
func (o *Object) clearReadings() {
	for _, m := range measurementAttrs {
		_ = o.SetAttributeInternal(m.id, Reading{})
	}
}
