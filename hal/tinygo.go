//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	clock  *tinyGoClock
	serial *uartSerial
	imu    *BNO055
	touch  *fourWirePanel
	motors *pwmMotors
	flash  Flash
}

// New returns the Pico board HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// IMU: BNO055 on I2C0, GP4 (SDA) / GP5 (SCL), 400 kHz.
// Touch panel: YP GP26, XM GP27, YM GP21, XP GP22.
// Motors: GP16/GP17 (motor 1), GP18/GP19 (motor 2).
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GP4,
		SCL:       machine.GP5,
	})

	machine.InitADC()

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		clock:  &tinyGoClock{start: time.Now()},
		serial: &uartSerial{uart: uart},
		imu:    NewBNO055(i2c),
		touch: &fourWirePanel{
			yp: machine.GP26, xm: machine.GP27,
			ym: machine.GP21, xp: machine.GP22,
		},
		motors: &pwmMotors{pins: [MotorChannels]machine.Pin{
			machine.GP16, machine.GP17, machine.GP18, machine.GP19,
		}},
		flash: newRP2Flash(),
	}
}

func (h *tinyGoHAL) Logger() Logger         { return h.logger }
func (h *tinyGoHAL) LED() LED               { return h.led }
func (h *tinyGoHAL) Flash() Flash           { return h.flash }
func (h *tinyGoHAL) Clock() Clock           { return h.clock }
func (h *tinyGoHAL) Serial() Serial         { return h.serial }
func (h *tinyGoHAL) IMU() IMU               { return h.imu }
func (h *tinyGoHAL) TouchPanel() TouchPanel { return h.touch }
func (h *tinyGoHAL) Motors() Motors         { return h.motors }

// Display returns nil: the board has no screen, so the console only drives
// the LED.
func (h *tinyGoHAL) Display() Display { return nil }
