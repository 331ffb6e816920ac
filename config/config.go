// Package config is the runtime configuration of the balancer.
//
// Every field has a default taken from the bench rig; a YAML file may
// override any subset of them on hosted builds.
package config

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("invalid config")

// Config is the full runtime configuration.
type Config struct {
	Periods    Periods    `yaml:"periods"`
	Controller Controller `yaml:"controller"`
	Touch      Touch      `yaml:"touch"`
	IMU        IMU        `yaml:"imu"`
	Motor      Motor      `yaml:"motor"`
	Telemetry  Telemetry  `yaml:"telemetry"`
	Host       Host       `yaml:"host"`
	QueueSlots int        `yaml:"queue_slots"`
}

// Periods are task periods in microseconds.
type Periods struct {
	User       uint32 `yaml:"user"`
	Touchpanel uint32 `yaml:"touchpanel"`
	IMU        uint32 `yaml:"imu"`
	Controller uint32 `yaml:"controller"`
	Motor      uint32 `yaml:"motor"`
	Datalog    uint32 `yaml:"datalog"`
	Console    uint32 `yaml:"console"`
	Logger     uint32 `yaml:"logger"`
}

// Controller holds the state-feedback gains, applied to both axes as
// [position, angle, velocity, angular rate].
type Controller struct {
	Gains []float64 `yaml:"gains"`
}

// Touch configures the resistive panel and its calibration.
type Touch struct {
	Width   float64 `yaml:"width"`
	Length  float64 `yaml:"length"`
	XCenter float64 `yaml:"x_center"`
	YCenter float64 `yaml:"y_center"`

	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	// SampleTime is the filter period in seconds; 0 uses the task period.
	SampleTime float64 `yaml:"sample_time"`

	CalFile string `yaml:"cal_file"`
	// SequentialMap feeds the already-corrected x into the y equation.
	SequentialMap bool `yaml:"sequential_map"`
	// ColumnFit reads the fit's cross terms column-wise, the exact inverse of
	// a skewed panel. The default reads them row-wise.
	ColumnFit       bool        `yaml:"column_fit"`
	ReferencePoints [][]float64 `yaml:"reference_points"`
}

// IMU configures the inertial sensor.
type IMU struct {
	CalFile     string `yaml:"cal_file"`
	Mode        uint8  `yaml:"mode"`
	InvertYRate bool   `yaml:"invert_y_rate"`
}

// Motor holds the drive electronics constants.
type Motor struct {
	PWMHz          uint32  `yaml:"pwm_hz"`
	Resistance     float64 `yaml:"resistance"`
	TorqueConstant float64 `yaml:"torque_constant"`
	SupplyVoltage  float64 `yaml:"supply_voltage"`
	GearRatio      float64 `yaml:"gear_ratio"`
	MaxDuty        float64 `yaml:"max_duty"`
}

// Telemetry configures the data log capture.
type Telemetry struct {
	File       string `yaml:"file"`
	DurationMS uint32 `yaml:"duration_ms"`
}

// Host configures the desktop simulator.
type Host struct {
	Window  bool   `yaml:"window"`
	Hz      int    `yaml:"hz"`
	DataDir string `yaml:"data_dir"`
	Ticks   uint64 `yaml:"ticks"`
}

// Default returns the bench rig configuration.
func Default() Config {
	return Config{
		Periods: Periods{
			User:       100_000,
			Touchpanel: 5_000,
			IMU:        10_000,
			Controller: 10_000,
			Motor:      5_000,
			Datalog:    50_000,
			Console:    50_000,
			Logger:     20_000,
		},
		Controller: Controller{Gains: []float64{0, -5, 0, -0.2}},
		Touch: Touch{
			Width:   176,
			Length:  100,
			XCenter: 88,
			YCenter: 50,
			Alpha:   0.85,
			Beta:    0.005,
			CalFile: "RT_cal_coeffs.txt",
			ReferencePoints: [][]float64{
				{-70, 30}, {-70, 0}, {-70, -30},
				{0, 30}, {0, 0}, {0, -30},
				{70, 30}, {70, 0}, {70, -30},
			},
		},
		IMU: IMU{
			CalFile:     "IMU_cal_coeffs.txt",
			Mode:        0x0C,
			InvertYRate: true,
		},
		Motor: Motor{
			PWMHz:          20_000,
			Resistance:     2.21,
			TorqueConstant: 13.8,
			SupplyVoltage:  12,
			GearRatio:      4,
			MaxDuty:        100,
		},
		Telemetry:  Telemetry{File: "Data.txt", DurationMS: 10_000},
		Host:       Host{Hz: 2000, DataDir: "."},
		QueueSlots: 8,
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	p := c.Periods
	for _, f := range []struct {
		name string
		v    uint32
	}{
		{"user", p.User}, {"touchpanel", p.Touchpanel}, {"imu", p.IMU},
		{"controller", p.Controller}, {"motor", p.Motor}, {"datalog", p.Datalog},
		{"console", p.Console}, {"logger", p.Logger},
	} {
		if f.v == 0 || f.v >= 1<<31 {
			return fmt.Errorf("%w: periods.%s = %d", ErrInvalid, f.name, f.v)
		}
	}
	if len(c.Controller.Gains) != 4 {
		return fmt.Errorf("%w: controller.gains has %d entries, want 4", ErrInvalid, len(c.Controller.Gains))
	}

	t := c.Touch
	if t.Width <= 0 || t.Length <= 0 {
		return fmt.Errorf("%w: touch panel %vx%v", ErrInvalid, t.Width, t.Length)
	}
	if t.Alpha <= 0 || t.Alpha > 1 {
		return fmt.Errorf("%w: touch.alpha = %v", ErrInvalid, t.Alpha)
	}
	if t.Beta < 0 || t.SampleTime < 0 {
		return fmt.Errorf("%w: touch.beta = %v, touch.sample_time = %v", ErrInvalid, t.Beta, t.SampleTime)
	}
	if len(t.ReferencePoints) != 9 {
		return fmt.Errorf("%w: touch.reference_points has %d points, want 9", ErrInvalid, len(t.ReferencePoints))
	}
	for i, pt := range t.ReferencePoints {
		if len(pt) != 2 {
			return fmt.Errorf("%w: touch.reference_points[%d] has %d coordinates", ErrInvalid, i, len(pt))
		}
	}
	if t.CalFile == "" || c.IMU.CalFile == "" || c.Telemetry.File == "" {
		return fmt.Errorf("%w: empty file name", ErrInvalid)
	}

	m := c.Motor
	if m.PWMHz == 0 {
		return fmt.Errorf("%w: motor.pwm_hz = 0", ErrInvalid)
	}
	if m.GearRatio*m.TorqueConstant*m.SupplyVoltage == 0 {
		return fmt.Errorf("%w: motor constants give a zero divisor", ErrInvalid)
	}
	if m.MaxDuty <= 0 || m.MaxDuty > 100 {
		return fmt.Errorf("%w: motor.max_duty = %v", ErrInvalid, m.MaxDuty)
	}
	if c.Telemetry.DurationMS == 0 {
		return fmt.Errorf("%w: telemetry.duration_ms = 0", ErrInvalid)
	}
	if c.QueueSlots < 0 {
		return fmt.Errorf("%w: queue_slots = %d", ErrInvalid, c.QueueSlots)
	}
	return nil
}

// FilterPeriod returns the touch filter sample period in seconds.
func (t Touch) FilterPeriod(periodUS uint32) float64 {
	if t.SampleTime > 0 {
		return t.SampleTime
	}
	return float64(periodUS) / 1e6
}

// Points returns the calibration reference grid as coordinate pairs.
func (t Touch) Points() [][2]float64 {
	pts := make([][2]float64, 0, len(t.ReferencePoints))
	for _, p := range t.ReferencePoints {
		if len(p) == 2 {
			pts = append(pts, [2]float64{p[0], p[1]})
		}
	}
	return pts
}

// DutyPerTorque converts a commanded torque into a duty cycle percentage.
func (m Motor) DutyPerTorque() float64 {
	return 100 * m.Resistance / (m.GearRatio * m.TorqueConstant * m.SupplyVoltage)
}
