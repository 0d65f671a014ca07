package model

import (
	"context"
	"errors"
	"testing"
)

func TestDeviceStateOrdering(t *testing.T) {
	tests := []struct {
		state   DeviceState
		atLeast bool
	}{
		{StateFailed, false},
		{StateUnknown, false},
		{StateLocked, false},
		{StateDisabled, false},
		{StateDisabling, false},
		{StateEnabling, true},
		{StateEnabled, true},
		{StateRegistered, true},
		{StateConnected, true},
	}

	for _, tt := range tests {
		if got := tt.state.AtLeast(StateEnabling); got != tt.atLeast {
			t.Errorf("%v.AtLeast(ENABLING) = %v, want %v", tt.state, got, tt.atLeast)
		}
	}
}

func TestDeviceSetStateNotifies(t *testing.T) {
	d := NewDevice("modem0")

	var gotOld, gotNew DeviceState
	calls := 0
	d.SubscribeState(func(old, new DeviceState) {
		gotOld, gotNew = old, new
		calls++
	})

	d.SetState(StateEnabling)
	if calls != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls)
	}
	if gotOld != StateUnknown || gotNew != StateEnabling {
		t.Errorf("transition = %v -> %v, want UNKNOWN -> ENABLING", gotOld, gotNew)
	}

	// Same-state set is not a transition.
	d.SetState(StateEnabling)
	if calls != 1 {
		t.Errorf("subscriber called on no-op transition")
	}
}

func TestDeviceAttachDetach(t *testing.T) {
	d := NewDevice("modem0")
	obj := NewObject("signal")

	if err := d.Attach(obj); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := d.Attach(NewObject("signal")); !errors.Is(err, ErrDuplicateObject) {
		t.Errorf("duplicate Attach error = %v, want ErrDuplicateObject", err)
	}
	if !d.HasObject("signal") {
		t.Error("HasObject(signal) = false after Attach")
	}

	got, err := d.Object("signal")
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	if got != obj {
		t.Error("Object returned a different instance")
	}

	d.Detach("signal")
	if d.HasObject("signal") {
		t.Error("HasObject(signal) = true after Detach")
	}
	if _, err := d.Object("signal"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Object after Detach error = %v, want ErrObjectNotFound", err)
	}

	// Detach of an unattached name is a no-op.
	d.Detach("signal")
}

func TestAttributeAccess(t *testing.T) {
	rw := NewAttribute(&AttributeMetadata{
		ID:      1,
		Name:    "rate",
		Type:    DataTypeUint32,
		Access:  AccessReadWrite,
		Default: uint32(0),
	})
	ro := NewAttribute(&AttributeMetadata{
		ID:     2,
		Name:   "reading",
		Type:   DataTypeFloat64,
		Access: AccessReadOnly,
	})

	if err := rw.SetValue(uint32(10)); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if got := rw.Value(); got != uint32(10) {
		t.Errorf("Value = %v, want 10", got)
	}

	if err := rw.SetValue("ten"); !errors.Is(err, ErrAttributeValueType) {
		t.Errorf("wrong-type SetValue error = %v, want ErrAttributeValueType", err)
	}

	if err := ro.SetValue(-80.0); !errors.Is(err, ErrAttributeNotWritable) {
		t.Errorf("read-only SetValue error = %v, want ErrAttributeNotWritable", err)
	}
	if err := ro.SetValueInternal(-80.0); err != nil {
		t.Fatalf("SetValueInternal: %v", err)
	}
	if got := ro.Value(); got != -80.0 {
		t.Errorf("Value = %v, want -80.0", got)
	}
}

func TestObjectFlushDeliversDirtySetOnce(t *testing.T) {
	obj := NewObject("signal")
	obj.AddAttribute(NewAttribute(&AttributeMetadata{
		ID: 1, Name: "rate", Type: DataTypeUint32, Access: AccessReadWrite, Default: uint32(0),
	}))
	obj.AddAttribute(NewAttribute(&AttributeMetadata{
		ID: 2, Name: "rssi", Type: DataTypeFloat64, Access: AccessReadOnly,
	}))

	var flushed []map[uint16]any
	obj.SetFlushHandler(func(changes map[uint16]any) {
		flushed = append(flushed, changes)
	})

	// No dirty attributes: no delivery.
	obj.Flush()
	if len(flushed) != 0 {
		t.Fatalf("flush with no changes delivered %d sets", len(flushed))
	}

	if err := obj.WriteAttribute(1, uint32(5)); err != nil {
		t.Fatalf("WriteAttribute: %v", err)
	}
	if err := obj.SetAttributeInternal(2, -80.0); err != nil {
		t.Fatalf("SetAttributeInternal: %v", err)
	}

	obj.Flush()
	if len(flushed) != 1 {
		t.Fatalf("flushed %d sets, want 1", len(flushed))
	}
	if len(flushed[0]) != 2 {
		t.Errorf("change set has %d entries, want 2", len(flushed[0]))
	}
	if flushed[0][1] != uint32(5) || flushed[0][2] != -80.0 {
		t.Errorf("unexpected change set: %v", flushed[0])
	}

	// Dirty flags cleared: second flush delivers nothing.
	obj.Flush()
	if len(flushed) != 1 {
		t.Errorf("second flush redelivered changes")
	}
}

func TestObjectMethodInvoke(t *testing.T) {
	obj := NewObject("signal")
	obj.AddMethod(NewMethod(&MethodMetadata{ID: 1, Name: "Setup"},
		func(ctx context.Context, params map[string]any) (map[string]any, error) {
			return map[string]any{"echo": params["rate"]}, nil
		}))

	result, err := obj.InvokeMethod(context.Background(), 1, map[string]any{"rate": uint32(10)})
	if err != nil {
		t.Fatalf("InvokeMethod: %v", err)
	}
	if result["echo"] != uint32(10) {
		t.Errorf("result = %v, want echo of rate", result)
	}

	if _, err := obj.InvokeMethod(context.Background(), 9, nil); !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("unknown method error = %v, want ErrMethodNotFound", err)
	}
}

func TestUnreadableAttributeHiddenFromRead(t *testing.T) {
	obj := NewObject("x")
	obj.AddAttribute(NewAttribute(&AttributeMetadata{
		ID: 1, Name: "hidden", Type: DataTypeString, Access: 0,
	}))

	if _, err := obj.ReadAttribute(1); !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("ReadAttribute on non-readable = %v, want ErrAttributeNotFound", err)
	}
	if got := obj.ReadAllAttributes(); len(got) != 0 {
		t.Errorf("ReadAllAttributes exposed non-readable attributes: %v", got)
	}
}
