package examples

import (
	"context"
	"math/rand"
	"sync"

	"github.com/modemd-project/modemd-go/pkg/settings"
	"github.com/modemd-project/modemd-go/pkg/signal"
)

// SimulatedModem is a backend producing synthetic LTE and UMTS
// measurements. Values wander around plausible baselines so that
// repeated polls publish observable changes.
type SimulatedModem struct {
	mu sync.Mutex

	manufacturer string
	model        string

	lteRSSI float64
	lteRSRP float64
	lteRSRQ float64
	lteSNR  float64

	umtsRSSI float64
	umtsECIO float64

	failing bool

	updateSettings *settings.UpdateSettings

	rng *rand.Rand
}

// SimulatedModemConfig configures the simulated modem.
type SimulatedModemConfig struct {
	// Manufacturer reported for discovery. Default "Simulated".
	Manufacturer string

	// Model reported for discovery. Default "SIM-100".
	Model string

	// Seed seeds the value generator. 0 uses a fixed default.
	Seed int64
}

// NewSimulatedModem creates a simulated modem backend.
func NewSimulatedModem(cfg SimulatedModemConfig) *SimulatedModem {
	if cfg.Manufacturer == "" {
		cfg.Manufacturer = "Simulated"
	}
	if cfg.Model == "" {
		cfg.Model = "SIM-100"
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	return &SimulatedModem{
		manufacturer: cfg.Manufacturer,
		model:        cfg.Model,
		lteRSSI:      -72.0,
		lteRSRP:      -101.0,
		lteRSRQ:      -11.0,
		lteSNR:       9.0,
		umtsRSSI:     -83.0,
		umtsECIO:     -7.5,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Name implements signal.Backend.
func (m *SimulatedModem) Name() string { return "simulated" }

// Manufacturer returns the simulated manufacturer string.
func (m *SimulatedModem) Manufacturer() string { return m.manufacturer }

// Model returns the simulated model string.
func (m *SimulatedModem) Model() string { return m.model }

// SetFailing makes subsequent polls fail, for exercising the
// soft-fail path.
func (m *SimulatedModem) SetFailing(failing bool) {
	m.mu.Lock()
	m.failing = failing
	m.mu.Unlock()
}

// LoadValues implements signal.ValueLoader.
func (m *SimulatedModem) LoadValues(ctx context.Context) (*signal.Measurements, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return nil, ErrSimulatedFailure
	}

	m.lteRSSI = wander(m.rng, m.lteRSSI, -72.0, 3.0)
	m.lteRSRP = wander(m.rng, m.lteRSRP, -101.0, 3.0)
	m.lteRSRQ = wander(m.rng, m.lteRSRQ, -11.0, 1.5)
	m.lteSNR = wander(m.rng, m.lteSNR, 9.0, 2.0)
	m.umtsRSSI = wander(m.rng, m.umtsRSSI, -83.0, 3.0)
	m.umtsECIO = wander(m.rng, m.umtsECIO, -7.5, 1.0)

	return &signal.Measurements{
		LTEAvailable: true,
		LTERSSI:      m.lteRSSI,
		LTERSRP:      m.lteRSRP,
		LTERSRQ:      m.lteRSRQ,
		LTESNR:       m.lteSNR,

		UMTSAvailable: true,
		UMTSRSSI:      m.umtsRSSI,
		UMTSECIO:      m.umtsECIO,
	}, nil
}

// ApplyUpdateSettings stores firmware update settings, mimicking a
// modem that accepts the fastboot method.
func (m *SimulatedModem) ApplyUpdateSettings(s *settings.UpdateSettings) {
	m.mu.Lock()
	m.updateSettings = s
	m.mu.Unlock()
}

// UpdateSettings returns the last applied firmware update settings.
func (m *SimulatedModem) UpdateSettings() *settings.UpdateSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateSettings
}

// wander nudges value toward baseline with a random step, keeping the
// series centered without drifting away.
func wander(rng *rand.Rand, value, baseline, step float64) float64 {
	pull := (baseline - value) * 0.2
	return value + pull + (rng.Float64()-0.5)*step
}

// Compile-time interface satisfaction checks.
var (
	_ signal.Backend     = (*SimulatedModem)(nil)
	_ signal.ValueLoader = (*SimulatedModem)(nil)
)
