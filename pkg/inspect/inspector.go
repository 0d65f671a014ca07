// Package inspect provides structured views of a device's exposed
// object surface for display and debugging.
package inspect

import (
	"sort"

	"github.com/modemd-project/modemd-go/pkg/model"
)

// Inspector provides inspection capabilities for a local device.
type Inspector struct {
	device *model.Device
}

// NewInspector creates a new Inspector for the given device.
func NewInspector(device *model.Device) *Inspector {
	return &Inspector{device: device}
}

// DeviceTree represents the complete device structure for display.
type DeviceTree struct {
	DeviceID string
	State    model.DeviceState
	Objects  []ObjectInfo
}

// ObjectInfo represents exposed object information for display.
type ObjectInfo struct {
	Name       string
	Attributes []AttributeInfo
	Methods    []MethodInfo
}

// AttributeInfo represents attribute information for display.
type AttributeInfo struct {
	ID     uint16
	Name   string
	Value  any
	Type   model.DataType
	Access model.Access
}

// MethodInfo represents method information for display.
type MethodInfo struct {
	ID          uint8
	Name        string
	Description string
}

// InspectDevice returns a complete tree of the device structure.
// Objects, attributes, and methods are sorted for stable output.
func (i *Inspector) InspectDevice() *DeviceTree {
	tree := &DeviceTree{
		DeviceID: i.device.ID(),
		State:    i.device.State(),
	}

	for _, obj := range i.device.Objects() {
		tree.Objects = append(tree.Objects, i.inspectObject(obj))
	}
	sort.Slice(tree.Objects, func(a, b int) bool {
		return tree.Objects[a].Name < tree.Objects[b].Name
	})

	return tree
}

// InspectObject returns information about one exposed object.
func (i *Inspector) InspectObject(name string) (*ObjectInfo, error) {
	obj, err := i.device.Object(name)
	if err != nil {
		return nil, err
	}
	info := i.inspectObject(obj)
	return &info, nil
}

func (i *Inspector) inspectObject(obj *model.Object) ObjectInfo {
	info := ObjectInfo{Name: obj.Name()}

	for id, value := range obj.ReadAllAttributes() {
		attr, err := obj.GetAttribute(id)
		if err != nil {
			continue
		}
		meta := attr.Metadata()
		info.Attributes = append(info.Attributes, AttributeInfo{
			ID:     id,
			Name:   meta.Name,
			Value:  value,
			Type:   meta.Type,
			Access: meta.Access,
		})
	}
	sort.Slice(info.Attributes, func(a, b int) bool {
		return info.Attributes[a].ID < info.Attributes[b].ID
	})

	for _, m := range obj.Methods() {
		meta := m.Metadata()
		info.Methods = append(info.Methods, MethodInfo{
			ID:          meta.ID,
			Name:        meta.Name,
			Description: meta.Description,
		})
	}
	sort.Slice(info.Methods, func(a, b int) bool {
		return info.Methods[a].ID < info.Methods[b].ID
	})

	return info
}
