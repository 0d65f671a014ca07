package examples

import (
	"context"
	"errors"
	"testing"
)

func TestSimulatedModemLoadValues(t *testing.T) {
	modem := NewSimulatedModem(SimulatedModemConfig{})

	values, err := modem.LoadValues(context.Background())
	if err != nil {
		t.Fatalf("LoadValues() error = %v", err)
	}
	if !values.LTEAvailable || !values.UMTSAvailable {
		t.Error("simulated modem must report LTE and UMTS available")
	}
	if values.CDMAAvailable || values.GSMAvailable {
		t.Error("simulated modem must not report CDMA or GSM")
	}
	if values.LTERSSI > -40 || values.LTERSSI < -120 {
		t.Errorf("LTE RSSI = %f, outside plausible range", values.LTERSSI)
	}
}

func TestSimulatedModemValuesWander(t *testing.T) {
	modem := NewSimulatedModem(SimulatedModemConfig{Seed: 42})

	first, err := modem.LoadValues(context.Background())
	if err != nil {
		t.Fatalf("LoadValues() error = %v", err)
	}
	second, err := modem.LoadValues(context.Background())
	if err != nil {
		t.Fatalf("LoadValues() error = %v", err)
	}
	if first.LTERSSI == second.LTERSSI {
		t.Error("consecutive polls must produce different LTE RSSI values")
	}
}

func TestSimulatedModemFailing(t *testing.T) {
	modem := NewSimulatedModem(SimulatedModemConfig{})
	modem.SetFailing(true)

	if _, err := modem.LoadValues(context.Background()); !errors.Is(err, ErrSimulatedFailure) {
		t.Errorf("LoadValues() error = %v, want ErrSimulatedFailure", err)
	}

	modem.SetFailing(false)
	if _, err := modem.LoadValues(context.Background()); err != nil {
		t.Errorf("LoadValues() after recovery error = %v", err)
	}
}

func TestSimulatedModemCancelledContext(t *testing.T) {
	modem := NewSimulatedModem(SimulatedModemConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := modem.LoadValues(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadValues() error = %v, want context.Canceled", err)
	}
}
