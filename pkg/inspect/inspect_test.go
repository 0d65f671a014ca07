package inspect

import (
	"context"
	"strings"
	"testing"

	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/signal"
)

type loaderBackend struct{}

func (loaderBackend) Name() string { return "test" }

func (loaderBackend) LoadValues(ctx context.Context) (*signal.Measurements, error) {
	return &signal.Measurements{}, nil
}

func newTestDevice(t *testing.T) *model.Device {
	t.Helper()
	device := model.NewDevice("modem0")
	iface := signal.New(device, loaderBackend{})
	if err := iface.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return device
}

func TestInspectDevice(t *testing.T) {
	device := newTestDevice(t)
	tree := NewInspector(device).InspectDevice()

	if tree.DeviceID != "modem0" {
		t.Errorf("DeviceID = %q, want modem0", tree.DeviceID)
	}
	if len(tree.Objects) != 1 || tree.Objects[0].Name != signal.ObjectName {
		t.Fatalf("Objects = %+v, want one signal object", tree.Objects)
	}

	obj := tree.Objects[0]
	if len(obj.Attributes) == 0 {
		t.Fatal("signal object has no attributes")
	}
	// Attributes sorted by ID, so rate comes first.
	if obj.Attributes[0].ID != signal.AttrRate {
		t.Errorf("first attribute ID = %d, want rate", obj.Attributes[0].ID)
	}
	if len(obj.Methods) != 1 || obj.Methods[0].ID != signal.MethodSetup {
		t.Errorf("Methods = %+v, want the Setup method", obj.Methods)
	}
}

func TestInspectObjectNotFound(t *testing.T) {
	device := newTestDevice(t)
	if _, err := NewInspector(device).InspectObject("thermals"); err == nil {
		t.Error("InspectObject(unknown) must fail")
	}
}

func TestFormatDevice(t *testing.T) {
	device := newTestDevice(t)
	tree := NewInspector(device).InspectDevice()

	out := NewFormatter().FormatDevice(tree)
	for _, want := range []string{"Device modem0", "signal", "rate", "Setup()"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatValue(t *testing.T) {
	f := NewFormatter()
	tests := []struct {
		value any
		want  string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{"AT^FASTBOOT", `"AT^FASTBOOT"`},
		{-80.5, "-80.5"},
		{uint32(10), "10"},
	}
	for _, tt := range tests {
		if got := f.FormatValue(tt.value); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
