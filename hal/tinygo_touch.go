//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/touch/resistive"
)

// Pressure above which the panel counts as touched.
const touchThreshold = 0x2000

type fourWirePanel struct {
	yp, ym, xp, xm machine.Pin

	dev  resistive.FourWire
	geom PanelGeometry
}

func (p *fourWirePanel) Configure(g PanelGeometry) error {
	p.geom = g
	return p.dev.Configure(&resistive.FourWireConfig{
		YP:          p.yp,
		YM:          p.ym,
		XP:          p.xp,
		XM:          p.xm,
		ReadSamples: 2,
	})
}

// ADC counts span the full panel; scale to millimetres from centre.
func (p *fourWirePanel) ScanX() float64 {
	return float64(p.dev.ReadX())*p.geom.Width/0xFFFF - p.geom.XCenter
}

func (p *fourWirePanel) ScanY() float64 {
	return float64(p.dev.ReadY())*p.geom.Length/0xFFFF - p.geom.YCenter
}

func (p *fourWirePanel) ScanContact() bool {
	return p.dev.ReadZ() > touchThreshold
}

func (p *fourWirePanel) ScanAll() (x, y float64, contact bool) {
	return p.ScanX(), p.ScanY(), p.ScanContact()
}
