package tustinpid

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var chartLines = []struct {
	name  string
	field Field
	color color.RGBA
}{
	{"setpoint", FieldSetpoint, color.RGBA{B: 255, A: 255}},
	{"command", FieldCommand, color.RGBA{G: 160, A: 255}},
	{"output", FieldOutput, color.RGBA{R: 255, A: 255}},
}

// SaveChart draws setpoint, command and plant output of one channel against the sample index.
// The extension of path picks the format (svg, png, pdf, ...).
func SaveChart[V Channels[V]](path, title string, samples []Sample[V], channel int) error {
	if len(samples) == 0 {
		return errors.New("nothing to chart")
	}
	if n := len(samples[0].Output.Components()); channel < 0 || channel >= n {
		return errors.Errorf("channel %d out of range, have %d", channel, n)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "k"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())

	for _, cl := range chartLines {
		ys := Channel(samples, channel, cl.field)
		pts := make(plotter.XYs, len(ys))
		for i, y := range ys {
			pts[i].X = float64(samples[i].K)
			pts[i].Y = y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "cannot build %s line", cl.name)
		}
		line.LineStyle.Color = cl.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(cl.name, line)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "cannot create chart directory")
		}
	}
	if err := p.Save(10*vg.Inch, 7.5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "cannot save chart to %s", path)
	}
	return nil
}
