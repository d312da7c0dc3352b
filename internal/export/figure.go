package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultFigureWidth  = 8 * vg.Inch
	DefaultFigureHeight = 4.5 * vg.Inch
)

// Figure holds the layout shared by the PNG and SVG sinks.
type Figure struct {
	Path   string
	Title  string
	Width  vg.Length
	Height vg.Length
	collector
}

func newFigure(path string) Figure {
	return Figure{
		Path:   path,
		Title:  "Mechanical energy",
		Width:  DefaultFigureWidth,
		Height: DefaultFigureHeight,
	}
}

func (f *Figure) plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "t [s]"
	p.Y.Label.Text = "E [J]"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range f.series {
		xys := make(plotter.XYs, len(s.Times))
		for j := range s.Times {
			xys[j].X = s.Times[j]
			xys[j].Y = s.Energy[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		if i > 0 {
			line.LineStyle.Dashes = plotutil.Dashes(i)
		}
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}
	return p, nil
}

// writeFile creates the parent directory and streams through a buffered writer.
func writeFile(path string, render func(w io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	w := bufio.NewWriter(f)
	if err := render(w); err != nil {
		return err
	}
	return w.Flush()
}
