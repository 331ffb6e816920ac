//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"

	"balancer/internal/mathx"
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

var pwmSlices = [...]pwmDevice{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

// pwmMotors drives the two H-bridges. Each bridge input pin is one PWM
// channel; pins on the same slice share its period.
type pwmMotors struct {
	pins [MotorChannels]machine.Pin
	out  [MotorChannels]pwmOutput
}

type pwmOutput struct {
	dev pwmDevice
	ch  uint8
}

func (m *pwmMotors) Configure(freqHz uint32) error {
	if freqHz == 0 {
		return fmt.Errorf("motor pwm: %w: zero frequency", ErrNotImplemented)
	}
	cfg := machine.PWMConfig{Period: uint64(1e9 / freqHz)}
	configured := map[uint8]bool{}
	for i, pin := range m.pins {
		slice, err := machine.PWMPeripheral(pin)
		if err != nil || int(slice) >= len(pwmSlices) {
			return fmt.Errorf("motor pwm: pin %d has no pwm slice", pin)
		}
		dev := pwmSlices[slice]
		if !configured[slice] {
			if err := dev.Configure(cfg); err != nil {
				return fmt.Errorf("motor pwm slice %d: %w", slice, err)
			}
			configured[slice] = true
		}
		ch, err := dev.Channel(pin)
		if err != nil {
			return fmt.Errorf("motor pwm pin %d: %w", pin, err)
		}
		dev.Set(ch, 0)
		m.out[i] = pwmOutput{dev: dev, ch: ch}
	}
	return nil
}

func (m *pwmMotors) SetPercent(ch MotorChannel, pct float64) {
	if ch >= MotorChannels || m.out[ch].dev == nil {
		return
	}
	o := m.out[ch]
	o.dev.Set(o.ch, uint32(float64(o.dev.Top())*mathx.Clamp(pct, 0, 100)/100))
}
