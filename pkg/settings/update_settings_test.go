package settings

import (
	"errors"
	"strings"
	"testing"

	"github.com/modemd-project/modemd-go/pkg/wire"
)

func TestUpdateSettingsRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		method     UpdateMethod
		fastbootAT string
	}{
		{"unknown method", MethodUnknown, ""},
		{"fastboot", MethodFastboot, "AT^FASTBOOT"},
		{"fastboot alternate command", MethodFastboot, "AT!BOOTHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUpdateSettings(tt.method)
			if tt.method == MethodFastboot {
				if err := s.SetFastbootAT(tt.fastbootAT); err != nil {
					t.Fatalf("SetFastbootAT: %v", err)
				}
			}

			data, err := s.Encode()
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			decoded, err := DecodeUpdateSettings(data)
			if err != nil {
				t.Fatalf("DecodeUpdateSettings: %v", err)
			}

			if decoded.Method() != tt.method {
				t.Errorf("Method = %v, want %v", decoded.Method(), tt.method)
			}
			if decoded.FastbootAT() != tt.fastbootAT {
				t.Errorf("FastbootAT = %q, want %q", decoded.FastbootAT(), tt.fastbootAT)
			}
		})
	}
}

func TestDecodeRejectsUnknownKey(t *testing.T) {
	for _, method := range []UpdateMethod{MethodUnknown, MethodFastboot} {
		rec := wire.NewTaggedRecord(uint32(method))
		if method == MethodFastboot {
			_ = rec.SetString(PropertyFastbootAT, "AT^FASTBOOT")
		}
		_ = rec.SetString("future-key", "value")

		data, err := rec.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		_, err = DecodeUpdateSettings(data)
		if !errors.Is(err, wire.ErrInvalidArgs) {
			t.Errorf("method %v: error = %v, want ErrInvalidArgs", method, err)
		}
	}
}

func TestDecodeFastbootRequiresATCommand(t *testing.T) {
	rec := wire.NewTaggedRecord(uint32(MethodFastboot))

	data, err := rec.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = DecodeUpdateSettings(data)
	if !errors.Is(err, wire.ErrInvalidArgs) {
		t.Fatalf("error = %v, want ErrInvalidArgs", err)
	}
	if got := err.Error(); !strings.Contains(got, PropertyFastbootAT) {
		t.Errorf("error %q does not name the missing field %q", got, PropertyFastbootAT)
	}
}

func TestDecodeNullPayload(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"cbor null", []byte{0xf6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeUpdateSettings(tt.data)
			if !errors.Is(err, wire.ErrInvalidArgs) {
				t.Errorf("error = %v, want ErrInvalidArgs", err)
			}
			if s != nil {
				t.Error("settings constructed from invalid payload")
			}
		})
	}
}

func TestDecodeWrongOuterType(t *testing.T) {
	data, err := wire.Marshal(map[string]string{PropertyFastbootAT: "AT^FASTBOOT"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	_, err = DecodeUpdateSettings(data)
	if !errors.Is(err, wire.ErrInvalidArgs) {
		t.Errorf("error = %v, want ErrInvalidArgs", err)
	}
}

func TestDecodeNonStringFastbootAT(t *testing.T) {
	num, err := wire.Marshal(uint32(42))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	rec := wire.NewTaggedRecord(uint32(MethodFastboot))
	rec.Properties[PropertyFastbootAT] = num

	data, err := rec.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = DecodeUpdateSettings(data)
	if !errors.Is(err, wire.ErrInvalidArgs) {
		t.Errorf("error = %v, want ErrInvalidArgs", err)
	}
}

func TestSetFastbootATWrongMethod(t *testing.T) {
	s := NewUpdateSettings(MethodUnknown)
	if err := s.SetFastbootAT("AT^FASTBOOT"); !errors.Is(err, wire.ErrInvalidArgs) {
		t.Errorf("SetFastbootAT on UNKNOWN method: error = %v, want ErrInvalidArgs", err)
	}
}
