package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidArgs indicates a malformed payload: wrong outer shape,
// unrecognized key, or a missing required field. It is always surfaced to
// the caller that supplied the payload.
var ErrInvalidArgs = errors.New("invalid arguments")

// TaggedRecord is the outer wire shape for extensible settings payloads:
// a discriminant selecting the settings variant, followed by a string-keyed
// property map holding only the keys relevant to that variant.
//
// Encoded as a two-element CBOR array. Additional variants are added by
// defining new discriminant values; the outer shape never changes.
type TaggedRecord struct {
	_            struct{} `cbor:",toarray"`
	Discriminant uint32
	Properties   map[string]cbor.RawMessage
}

// NewTaggedRecord creates an empty record for the given discriminant.
func NewTaggedRecord(discriminant uint32) *TaggedRecord {
	return &TaggedRecord{
		Discriminant: discriminant,
		Properties:   make(map[string]cbor.RawMessage),
	}
}

// SetString stores a string property.
func (r *TaggedRecord) SetString(key, value string) error {
	data, err := Marshal(value)
	if err != nil {
		return err
	}
	if r.Properties == nil {
		r.Properties = make(map[string]cbor.RawMessage)
	}
	r.Properties[key] = data
	return nil
}

// String decodes a string property. The second return value reports
// whether the key is present; a present key holding a non-string value is
// an ErrInvalidArgs error.
func (r *TaggedRecord) String(key string) (string, bool, error) {
	raw, ok := r.Properties[key]
	if !ok {
		return "", false, nil
	}
	var s string
	if err := Unmarshal(raw, &s); err != nil {
		return "", true, fmt.Errorf("%w: property %q is not a string", ErrInvalidArgs, key)
	}
	return s, true, nil
}

// Encode serializes the record to CBOR bytes.
func (r *TaggedRecord) Encode() ([]byte, error) {
	return Marshal(r)
}

// cborMajorArray is the CBOR major type for arrays (bits 7-5 = 4).
const cborMajorArray = 4

// DecodeTaggedRecord decodes CBOR bytes into a tagged record.
//
// A nil/empty input, a CBOR null, or any outer shape other than
// "(discriminant, map)" fails with ErrInvalidArgs before any property is
// examined.
func DecodeTaggedRecord(data []byte) (*TaggedRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no input given", ErrInvalidArgs)
	}
	if data[0]>>5 != cborMajorArray {
		return nil, fmt.Errorf("%w: invalid input type", ErrInvalidArgs)
	}
	var r TaggedRecord
	if err := Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: invalid input type", ErrInvalidArgs)
	}
	return &r, nil
}
