package config

import (
	"errors"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if got := cfg.Touch.FilterPeriod(cfg.Periods.Touchpanel); got != 0.005 {
		t.Fatalf("FilterPeriod() = %v, want 0.005", got)
	}
	if got := len(cfg.Touch.Points()); got != 9 {
		t.Fatalf("Points() has %d entries, want 9", got)
	}
}

func TestDutyPerTorque(t *testing.T) {
	m := Default().Motor
	want := (100 * 2.21) / (4 * 13.8 * 12)
	if got := m.DutyPerTorque(); got != want {
		t.Fatalf("DutyPerTorque() = %v, want %v", got, want)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero period":    func(c *Config) { c.Periods.Motor = 0 },
		"short gains":    func(c *Config) { c.Controller.Gains = []float64{1, 2} },
		"alpha above 1":  func(c *Config) { c.Touch.Alpha = 1.5 },
		"eight points":   func(c *Config) { c.Touch.ReferencePoints = c.Touch.ReferencePoints[:8] },
		"3d point":       func(c *Config) { c.Touch.ReferencePoints[0] = []float64{1, 2, 3} },
		"no log file":    func(c *Config) { c.Telemetry.File = "" },
		"no gear":        func(c *Config) { c.Motor.GearRatio = 0 },
		"duty above 100": func(c *Config) { c.Motor.MaxDuty = 120 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: Validate() = %v, want ErrInvalid", name, err)
		}
	}
}
