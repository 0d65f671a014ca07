package inspect

import (
	"fmt"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes type and access information
	ShowMetadata bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		IndentWidth:  2,
	}
}

// FormatDevice renders the full device tree as text.
func (f *Formatter) FormatDevice(tree *DeviceTree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Device %s (state: %s)\n", tree.DeviceID, tree.State)
	for _, obj := range tree.Objects {
		b.WriteString(f.FormatObject(&obj))
	}
	return b.String()
}

// FormatObject renders one exposed object as text.
func (f *Formatter) FormatObject(obj *ObjectInfo) string {
	var b strings.Builder
	b.WriteString(f.indent(1, obj.Name+"\n"))

	for _, attr := range obj.Attributes {
		line := fmt.Sprintf("[%d] %s = %s", attr.ID, attr.Name, f.FormatValue(attr.Value))
		if f.ShowMetadata {
			line += fmt.Sprintf(" (%s, %s)", attr.Type, attr.Access)
		}
		b.WriteString(f.indent(2, line+"\n"))
	}
	for _, m := range obj.Methods {
		line := fmt.Sprintf("[%d] %s()", m.ID, m.Name)
		if f.ShowMetadata && m.Description != "" {
			line += " - " + m.Description
		}
		b.WriteString(f.indent(2, line+"\n"))
	}
	return b.String()
}

// FormatValue formats an attribute value for display.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// indent returns the content with indentation.
func (f *Formatter) indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}
