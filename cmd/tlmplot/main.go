//go:build !tinygo

// Command tlmplot renders a telemetry capture as PNG plots.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"balancer/internal/buildinfo"
	"balancer/tasks/datalog"

	"github.com/urfave/cli"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// series is one plotted quantity of a capture.
type series struct {
	name string
	get  func(datalog.Row) float64
}

// chart is one output image.
type chart struct {
	file   string
	title  string
	ylabel string
	lines  []series
}

var charts = []chart{
	{"position.png", "Ball position", "position [mm]", []series{
		{"x", func(r datalog.Row) float64 { return r.XPos }},
		{"y", func(r datalog.Row) float64 { return r.YPos }},
	}},
	{"velocity.png", "Ball velocity", "velocity [mm/s]", []series{
		{"x", func(r datalog.Row) float64 { return r.XVel }},
		{"y", func(r datalog.Row) float64 { return r.YVel }},
	}},
	{"tilt.png", "Platform tilt", "angle [deg]", []series{
		{"theta x", func(r datalog.Row) float64 { return r.ThetaX }},
		{"theta y", func(r datalog.Row) float64 { return r.ThetaY }},
	}},
	{"tilt_rate.png", "Platform tilt rate", "rate [deg/s]", []series{
		{"theta x", func(r datalog.Row) float64 { return r.ThetaXVel }},
		{"theta y", func(r datalog.Row) float64 { return r.ThetaYVel }},
	}},
}

func main() {
	app := cli.NewApp()
	app.Name = "tlmplot"
	app.Usage = "plot a balancer telemetry capture"
	app.Version = buildinfo.Short()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "in",
			Value: "Data.txt",
			Usage: "telemetry capture to read",
		},
		cli.StringFlag{
			Name:  "out",
			Value: "plots",
			Usage: "directory for the PNG files",
		},
		cli.BoolFlag{
			Name:  "contact-only",
			Usage: "drop samples taken without ball contact",
		},
	}
	app.Action = func(c *cli.Context) error {
		rows, err := load(c.String("in"))
		if err != nil {
			return err
		}
		if c.Bool("contact-only") {
			rows = withContact(rows)
		}
		if len(rows) == 0 {
			return fmt.Errorf("%s: no samples", c.String("in"))
		}
		if err := os.MkdirAll(c.String("out"), 0o755); err != nil {
			return err
		}
		for _, ch := range charts {
			path := filepath.Join(c.String("out"), ch.file)
			if err := render(ch, rows, path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			log.Printf("wrote %s", path)
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func load(path string) ([]datalog.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := datalog.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func withContact(rows []datalog.Row) []datalog.Row {
	out := rows[:0:0]
	for _, r := range rows {
		if r.Contact {
			out = append(out, r)
		}
	}
	return out
}

func points(rows []datalog.Row, get func(datalog.Row) float64) plotter.XYs {
	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i].X = float64(r.TimeMS) / 1000
		pts[i].Y = get(r)
	}
	return pts
}

func render(ch chart, rows []datalog.Row, path string) error {
	p := plot.New()
	p.Title.Text = ch.title
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = ch.ylabel
	p.Add(plotter.NewGrid())

	var args []interface{}
	for _, s := range ch.lines {
		args = append(args, s.name, points(rows, s.get))
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
