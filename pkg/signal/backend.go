package signal

import (
	"context"
)

// Backend is the pluggable driver performing the hardware protocol work
// for one managed device.
type Backend interface {
	// Name identifies the backend implementation (e.g. "at", "qmi").
	Name() string
}

// ValueLoader is the optional signal-quality capability of a Backend.
// A capability interface bound to a backend that does not implement
// ValueLoader reports Unsupported from Initialize; that is a feature
// detection result, not an error in normal operation.
type ValueLoader interface {
	// LoadValues reads the current signal measurements from hardware.
	LoadValues(ctx context.Context) (*Measurements, error)
}

// Reading is one published measurement: an availability flag plus a
// value. Unavailable readings are published with Available false rather
// than a sentinel number.
type Reading struct {
	_         struct{} `cbor:",toarray"`
	Available bool
	Value     float64
}

// Measurements bundles the per-technology signal readings a backend
// returns from one load operation. Each technology has one availability
// flag covering all its values.
type Measurements struct {
	CDMAAvailable bool
	CDMARSSI      float64
	CDMAECIO      float64

	EVDOAvailable bool
	EVDORSSI      float64
	EVDOECIO      float64
	EVDOSINR      float64
	EVDOIO        float64

	GSMAvailable bool
	GSMRSSI      float64

	UMTSAvailable bool
	UMTSRSSI      float64
	UMTSECIO      float64

	LTEAvailable bool
	LTERSSI      float64
	LTERSRQ      float64
	LTERSRP      float64
	LTESNR       float64
}

// readings maps the measurement bundle to per-attribute readings.
func (m *Measurements) readings() map[uint16]Reading {
	return map[uint16]Reading{
		AttrCdmaRssi: {Available: m.CDMAAvailable, Value: m.CDMARSSI},
		AttrCdmaEcio: {Available: m.CDMAAvailable, Value: m.CDMAECIO},
		AttrEvdoRssi: {Available: m.EVDOAvailable, Value: m.EVDORSSI},
		AttrEvdoEcio: {Available: m.EVDOAvailable, Value: m.EVDOECIO},
		AttrEvdoSinr: {Available: m.EVDOAvailable, Value: m.EVDOSINR},
		AttrEvdoIo:   {Available: m.EVDOAvailable, Value: m.EVDOIO},
		AttrGsmRssi:  {Available: m.GSMAvailable, Value: m.GSMRSSI},
		AttrUmtsRssi: {Available: m.UMTSAvailable, Value: m.UMTSRSSI},
		AttrUmtsEcio: {Available: m.UMTSAvailable, Value: m.UMTSECIO},
		AttrLteRssi:  {Available: m.LTEAvailable, Value: m.LTERSSI},
		AttrLteRsrq:  {Available: m.LTEAvailable, Value: m.LTERSRQ},
		AttrLteRsrp:  {Available: m.LTEAvailable, Value: m.LTERSRP},
		AttrLteSnr:   {Available: m.LTEAvailable, Value: m.LTESNR},
	}
}
