package touchpanel

import (
	"errors"
	"math"
	"testing"

	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
	"balancer/store"

	"gonum.org/v1/gonum/mat"
)

var grid = [][2]float64{
	{-70, 30}, {-70, 0}, {-70, -30},
	{0, 30}, {0, 0}, {0, -30},
	{70, 30}, {70, 0}, {70, -30},
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFilterHoldsSteadyInput(t *testing.T) {
	f := AlphaBeta{Alpha: 0.85, Beta: 0.005, T: 0.005}
	f.Reset(12.5)
	for i := 0; i < 1000; i++ {
		pos, vel := f.Update(12.5)
		if pos != 12.5 || vel != 0 {
			t.Fatalf("step %d: (%v, %v), want (12.5, 0)", i, pos, vel)
		}
	}
}

func TestFilterVelocityUsesAdvancedPosition(t *testing.T) {
	f := AlphaBeta{Alpha: 0.5, Beta: 0.1, T: 0.01}
	pos, vel := f.Update(10)
	// pos = 0 + 0.5*(10-0) + 0 = 5; vel = 0 + (0.1/0.01)*(10-5) = 50.
	if pos != 5 || vel != 50 {
		t.Fatalf("Update(10) = (%v, %v), want (5, 50)", pos, vel)
	}
	pos, _ = f.Update(10)
	// pos = 5 + 0.5*5 + 0.01*50 = 8.
	if !near(pos, 8) {
		t.Fatalf("second Update(10) pos = %v, want 8", pos)
	}
}

func TestFitIdentity(t *testing.T) {
	c, err := Fit(grid, grid, false)
	if err != nil {
		t.Fatalf("Fit() = %v", err)
	}
	want := Identity()
	for i, v := range c.coeffs() {
		if math.Abs(v-want.coeffs()[i]) > 1e-9 {
			t.Fatalf("coefficients = %+v, want identity", c)
		}
	}
}

func skewedGrid() [][2]float64 {
	raw := make([][2]float64, len(grid))
	for i, p := range grid {
		raw[i] = [2]float64{1.04*p[0] + 0.03*p[1] + 2.5, -0.02*p[0] + 0.96*p[1] - 1.5}
	}
	return raw
}

func TestFitReadsCrossTermsRowWise(t *testing.T) {
	raw := skewedGrid()
	a := mat.NewDense(len(raw), 3, nil)
	b := mat.NewDense(len(raw), 2, nil)
	for i := range raw {
		a.SetRow(i, []float64{raw[i][0], raw[i][1], 1})
		b.SetRow(i, grid[i][:])
	}
	var beta mat.Dense
	if err := beta.Solve(a, b); err != nil {
		t.Fatal(err)
	}

	c, err := Fit(grid, raw, false)
	if err != nil {
		t.Fatalf("Fit() = %v", err)
	}
	want := Calibration{
		Kxx: beta.At(0, 0), Kxy: beta.At(0, 1),
		Kyx: beta.At(1, 0), Kyy: beta.At(1, 1),
		Xc: beta.At(2, 0), Yc: beta.At(2, 1),
	}
	for i, v := range c.coeffs() {
		if math.Abs(v-want.coeffs()[i]) > 1e-9 {
			t.Fatalf("Fit() = %+v, want %+v", c, want)
		}
	}
	// The inverse skew has cross terms 0.02/0.999 and -0.03/0.999.
	if math.Abs(c.Kxy-0.02/0.999) > 1e-9 || math.Abs(c.Kyx+0.03/0.999) > 1e-9 {
		t.Fatalf("Kxy = %v, Kyx = %v", c.Kxy, c.Kyx)
	}

	col, err := Fit(grid, raw, true)
	if err != nil {
		t.Fatalf("Fit(byColumn) = %v", err)
	}
	if col.Kxy != c.Kyx || col.Kyx != c.Kxy || col.Kxx != c.Kxx || col.Yc != c.Yc {
		t.Fatalf("Fit(byColumn) = %+v, want cross terms of %+v swapped", col, c)
	}
}

func TestFitByColumnInvertsSkew(t *testing.T) {
	raw := skewedGrid()
	c, err := Fit(grid, raw, true)
	if err != nil {
		t.Fatalf("Fit() = %v", err)
	}
	for i, r := range raw {
		x, y := c.Apply(r[0], r[1], false)
		if math.Abs(x-grid[i][0]) > 1e-6 || math.Abs(y-grid[i][1]) > 1e-6 {
			t.Fatalf("point %d maps to (%v, %v), want %v", i, x, y, grid[i])
		}
	}
}

func TestFitSingular(t *testing.T) {
	raw := make([][2]float64, len(grid))
	for i := range raw {
		raw[i] = [2]float64{5, 5}
	}
	if _, err := Fit(grid, raw, false); !errors.Is(err, ErrSingular) {
		t.Fatalf("Fit(collinear) = %v, want ErrSingular", err)
	}
	if _, err := Fit(grid, raw[:4], false); !errors.Is(err, ErrPointMismatch) {
		t.Fatalf("Fit(short) = %v, want ErrPointMismatch", err)
	}
}

func TestApplyUsesRawXUnlessSequential(t *testing.T) {
	c := Calibration{Kxx: 2, Kxy: 0, Kyx: 1, Kyy: 1, Xc: 10, Yc: 0}
	x, y := c.Apply(3, 4, false)
	if x != 16 || y != 7 {
		t.Fatalf("Apply(raw) = (%v, %v), want (16, 7)", x, y)
	}
	x, y = c.Apply(3, 4, true)
	if x != 16 || y != 20 {
		t.Fatalf("Apply(sequential) = (%v, %v), want (16, 20)", x, y)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	c := Calibration{Kxx: 0.96, Kxy: -0.03, Kyx: 0.02, Kyy: 1.04, Xc: -2.4, Yc: 1.6}
	rec := string(c.Record())
	if rec[len(rec)-2:] != "\r\n" {
		t.Fatalf("Record() = %q, want CRLF terminated", rec)
	}
	got, err := ParseRecord(rec)
	if err != nil || got != c {
		t.Fatalf("ParseRecord() = %+v, %v", got, err)
	}
	if _, err := ParseRecord("1, 2, 3"); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("ParseRecord(short) = %v", err)
	}
	if _, err := ParseRecord("1, 2, x, 4, 5, 6"); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("ParseRecord(garbage) = %v", err)
	}
}

type fakePanel struct {
	x, y       float64
	contact    bool
	configured bool
	xScans     int
}

func (p *fakePanel) Configure(hal.PanelGeometry) error {
	p.configured = true
	return nil
}

func (p *fakePanel) ScanX() float64 {
	p.xScans++
	return p.x
}

func (p *fakePanel) ScanY() float64    { return p.y }
func (p *fakePanel) ScanContact() bool { return p.contact }

func (p *fakePanel) ScanAll() (float64, float64, bool) {
	return p.x, p.y, p.contact
}

type harness struct {
	task  *Task
	b     *board.Board
	panel *fakePanel
	st    *store.Memory
	now   kernel.Tick
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{b: board.New(16), panel: &fakePanel{}, st: store.NewMemory()}
	h.task = New(Config{
		Period:     1000,
		Geometry:   hal.PanelGeometry{Width: 176, Length: 100, XCenter: 88, YCenter: 50},
		Alpha:      0.85,
		Beta:       0.005,
		SampleTime: 0.001,
		CalFile:    "RT_cal_coeffs.txt",
		Reference:  grid,
	}, h.b, h.panel, h.st, nil)
	h.task.Step(h.now)
	h.step()
	if h.task.State() != StateUpdate || !h.panel.configured {
		t.Fatalf("after init: state %v, configured %v", h.task.State(), h.panel.configured)
	}
	return h
}

func (h *harness) step() {
	h.now = h.now.Add(1000)
	h.task.Step(h.now)
}

func TestCalibrationScenario(t *testing.T) {
	h := newHarness(t)

	h.b.CalibrateTouch.Put(kernel.Signal{})
	h.step()
	if h.task.State() != StateCalibrate {
		t.Fatalf("state = %v, want calibrate", h.task.State())
	}
	if !h.b.TouchNeedInput.Take() {
		t.Fatal("no need-input signal")
	}

	h.panel.contact = true
	for i, p := range grid {
		h.panel.x, h.panel.y = 2*p[0]+5, 2*p[1]-3
		h.b.TouchConfirm.Put(kernel.Signal{})
		h.step()
		if got := h.b.TouchPointDone.Len(); got != i+1 {
			t.Fatalf("after point %d: %d point-done signals", i, got)
		}
	}
	if h.task.State() != StateWriteFile {
		t.Fatalf("state = %v after 9 points, want write-file", h.task.State())
	}

	h.step()
	if h.task.State() != StateUpdate {
		t.Fatalf("state = %v, want update", h.task.State())
	}
	if !h.b.TouchCalDone.Take() {
		t.Fatal("no calibration-done signal")
	}

	line, err := store.ReadLine(h.st, "RT_cal_coeffs.txt")
	if err != nil {
		t.Fatalf("record not written: %v", err)
	}
	c, err := ParseRecord(line)
	if err != nil {
		t.Fatalf("ParseRecord(%q) = %v", line, err)
	}
	if !c.finite() {
		t.Fatalf("non-finite coefficients %+v", c)
	}
	if !near(c.Kxx, 0.5) || !near(c.Kyy, 0.5) || !near(c.Xc, -2.5) || !near(c.Yc, 1.5) {
		t.Fatalf("coefficients = %+v", c)
	}
	if h.task.Calibration() != c {
		t.Fatalf("task calibration %+v differs from the record %+v", h.task.Calibration(), c)
	}
}

func TestCalibrateWaitsForContact(t *testing.T) {
	h := newHarness(t)
	h.b.CalibrateTouch.Put(kernel.Signal{})
	h.step()

	h.b.TouchConfirm.Put(kernel.Signal{})
	h.step()
	if h.b.TouchPointDone.Len() != 0 || h.panel.xScans != 0 {
		t.Fatal("point taken without contact")
	}
	if h.b.TouchConfirm.Len() != 1 {
		t.Fatal("confirmation consumed without contact")
	}

	h.panel.contact = true
	h.step()
	if h.b.TouchPointDone.Len() != 1 {
		t.Fatal("pending confirmation not used once contact appeared")
	}
}

func TestUpdateLoadsExistingRecord(t *testing.T) {
	h := newHarness(t)
	want := Calibration{Kxx: 1, Kyy: 1, Xc: 10, Yc: -10}
	_ = h.st.WriteFile("RT_cal_coeffs.txt", want.Record())

	h.b.CalibrateTouch.Put(kernel.Signal{})
	h.step()
	if h.task.State() != StateUpdate {
		t.Fatalf("state = %v, want update", h.task.State())
	}
	if !h.b.TouchCalDone.Take() || h.task.Calibration() != want {
		t.Fatalf("record not applied: %+v", h.task.Calibration())
	}
}

func TestCorruptRecordTriggersCalibration(t *testing.T) {
	h := newHarness(t)
	_ = h.st.WriteFile("RT_cal_coeffs.txt", []byte("not, a, record\r\n"))
	h.b.CalibrateTouch.Put(kernel.Signal{})
	h.step()
	if h.task.State() != StateCalibrate {
		t.Fatalf("state = %v, want calibrate", h.task.State())
	}
}

func TestSingularFitRestartsCollection(t *testing.T) {
	h := newHarness(t)
	h.b.CalibrateTouch.Put(kernel.Signal{})
	h.step()
	h.b.TouchNeedInput.Take()

	h.panel.contact = true
	h.panel.x, h.panel.y = 1, 1
	for range grid {
		h.b.TouchConfirm.Put(kernel.Signal{})
		h.step()
	}
	if h.task.State() != StateCalibrate {
		t.Fatalf("state = %v, want calibrate after a degenerate fit", h.task.State())
	}
	if !h.b.TouchNeedInput.Take() {
		t.Fatal("operator not asked for new points")
	}
	if h.st.Writes("RT_cal_coeffs.txt") != 0 {
		t.Fatal("degenerate calibration was persisted")
	}
}

func TestUpdatePublishesFilteredPosition(t *testing.T) {
	h := newHarness(t)
	h.panel.x, h.panel.y, h.panel.contact = 20, -10, true
	for i := 0; i < 400; i++ {
		h.step()
	}
	if !h.b.Contact.Read() {
		t.Fatal("contact not published")
	}
	if x := h.b.XPos.Read(); math.Abs(x-20) > 0.01 {
		t.Fatalf("XPos = %v, want ~20", x)
	}
	if y := h.b.YPos.Read(); math.Abs(y+10) > 0.01 {
		t.Fatalf("YPos = %v, want ~-10", y)
	}
}
