package wire

import (
	"errors"
	"testing"
)

func TestTaggedRecordRoundTrip(t *testing.T) {
	rec := NewTaggedRecord(1)
	if err := rec.SetString("fastboot-at", "AT^FASTBOOT"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	data, err := rec.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeTaggedRecord(data)
	if err != nil {
		t.Fatalf("DecodeTaggedRecord: %v", err)
	}

	if decoded.Discriminant != 1 {
		t.Errorf("Discriminant = %d, want 1", decoded.Discriminant)
	}
	s, ok, err := decoded.String("fastboot-at")
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if !ok {
		t.Fatal("fastboot-at key missing after round trip")
	}
	if s != "AT^FASTBOOT" {
		t.Errorf("fastboot-at = %q, want %q", s, "AT^FASTBOOT")
	}
}

func TestDecodeTaggedRecordRejectsBadOuterShape(t *testing.T) {
	str, _ := Marshal("not a record")
	num, _ := Marshal(uint32(7))
	null := []byte{0xf6}

	tests := []struct {
		name string
		data []byte
	}{
		{"nil input", nil},
		{"empty input", []byte{}},
		{"null value", null},
		{"string outer", str},
		{"number outer", num},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTaggedRecord(tt.data)
			if !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("DecodeTaggedRecord(%s) error = %v, want ErrInvalidArgs", tt.name, err)
			}
		})
	}
}

func TestTaggedRecordStringTypeMismatch(t *testing.T) {
	num, _ := Marshal(uint32(5))
	rec := NewTaggedRecord(1)
	rec.Properties["fastboot-at"] = num

	_, ok, err := rec.String("fastboot-at")
	if !ok {
		t.Fatal("key should be reported present")
	}
	if !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("String() error = %v, want ErrInvalidArgs", err)
	}
}

func TestTaggedRecordMissingKey(t *testing.T) {
	rec := NewTaggedRecord(0)

	_, ok, err := rec.String("absent")
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if ok {
		t.Error("absent key reported present")
	}
}
