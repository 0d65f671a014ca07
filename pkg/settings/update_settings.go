package settings

import (
	"fmt"

	"github.com/modemd-project/modemd-go/pkg/wire"
)

// UpdateMethod selects how a firmware update is carried out.
type UpdateMethod uint32

const (
	// MethodUnknown indicates the update method is not known. It has no
	// associated properties.
	MethodUnknown UpdateMethod = 0

	// MethodFastboot indicates the device is reset into fastboot mode
	// with an AT command before flashing.
	MethodFastboot UpdateMethod = 1
)

// String returns the method name.
func (m UpdateMethod) String() string {
	switch m {
	case MethodUnknown:
		return "UNKNOWN"
	case MethodFastboot:
		return "FASTBOOT"
	default:
		return "UNKNOWN"
	}
}

// PropertyFastbootAT is the property key holding the AT command that
// resets the device into fastboot mode.
const PropertyFastbootAT = "fastboot-at"

// UpdateSettings holds the settings for a firmware update operation.
type UpdateSettings struct {
	method UpdateMethod

	// Fastboot specific
	fastbootAT string
}

// NewUpdateSettings creates settings for the given update method.
func NewUpdateSettings(method UpdateMethod) *UpdateSettings {
	return &UpdateSettings{method: method}
}

// Method returns the update method.
func (s *UpdateSettings) Method() UpdateMethod {
	return s.method
}

// FastbootAT returns the AT command that resets the device into fastboot
// mode. Only meaningful when the method is MethodFastboot.
func (s *UpdateSettings) FastbootAT() string {
	return s.fastbootAT
}

// SetFastbootAT sets the fastboot AT command. Returns an error unless the
// method is MethodFastboot.
func (s *UpdateSettings) SetFastbootAT(cmd string) error {
	if s.method != MethodFastboot {
		return fmt.Errorf("%w: %q only applies to the fastboot method",
			wire.ErrInvalidArgs, PropertyFastbootAT)
	}
	s.fastbootAT = cmd
	return nil
}

// Record builds the tagged wire record for the settings. The property map
// is populated only with keys relevant to the method.
func (s *UpdateSettings) Record() (*wire.TaggedRecord, error) {
	rec := wire.NewTaggedRecord(uint32(s.method))

	switch s.method {
	case MethodFastboot:
		if err := rec.SetString(PropertyFastbootAT, s.fastbootAT); err != nil {
			return nil, err
		}
	default:
	}

	return rec, nil
}

// Encode serializes the settings to their CBOR wire form.
func (s *UpdateSettings) Encode() ([]byte, error) {
	rec, err := s.Record()
	if err != nil {
		return nil, err
	}
	return rec.Encode()
}

// consumeProperty dispatches one property map entry to its typed field.
// An unrecognized key is a hard decode error, not silently ignored.
func (s *UpdateSettings) consumeProperty(rec *wire.TaggedRecord, key string) error {
	switch key {
	case PropertyFastbootAT:
		v, _, err := rec.String(key)
		if err != nil {
			return err
		}
		s.fastbootAT = v
	default:
		return fmt.Errorf("%w: unexpected key %q in settings record",
			wire.ErrInvalidArgs, key)
	}
	return nil
}

// validate applies per-method required-field checks after all properties
// have been consumed.
func (s *UpdateSettings) validate(seen map[string]bool) error {
	switch s.method {
	case MethodFastboot:
		if !seen[PropertyFastbootAT] {
			return fmt.Errorf("%w: fastboot method requires the %q setting",
				wire.ErrInvalidArgs, PropertyFastbootAT)
		}
	default:
	}
	return nil
}

// NewUpdateSettingsFromRecord builds settings from a decoded tagged record.
//
// A record with a discriminant outside the known method set decodes as
// MethodUnknown-compatible only if its property map is empty; any key that
// this version does not recognize fails with wire.ErrInvalidArgs.
func NewUpdateSettingsFromRecord(rec *wire.TaggedRecord) (*UpdateSettings, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: no input given", wire.ErrInvalidArgs)
	}

	s := NewUpdateSettings(UpdateMethod(rec.Discriminant))
	seen := make(map[string]bool, len(rec.Properties))
	for key := range rec.Properties {
		if err := s.consumeProperty(rec, key); err != nil {
			return nil, err
		}
		seen[key] = true
	}

	if err := s.validate(seen); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeUpdateSettings parses the CBOR wire form of update settings.
// All malformed input (wrong outer shape, unrecognized keys, missing
// required fields) fails with wire.ErrInvalidArgs.
func DecodeUpdateSettings(data []byte) (*UpdateSettings, error) {
	rec, err := wire.DecodeTaggedRecord(data)
	if err != nil {
		return nil, err
	}
	return NewUpdateSettingsFromRecord(rec)
}
