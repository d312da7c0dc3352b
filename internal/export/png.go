package export

import (
	"io"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultEnergyFigurePath = "assets/ur5_rollout_energy.png"
	DefaultDPI              = 240
)

// PNGSink renders every added series into one raster figure on Close.
type PNGSink struct {
	Figure
	DPI int
}

func NewPNGSink(path string) *PNGSink {
	if path == "" {
		path = DefaultEnergyFigurePath
	}
	return &PNGSink{Figure: newFigure(path), DPI: DefaultDPI}
}

// Close writes the figure. A sink with no series writes nothing.
func (s *PNGSink) Close() error {
	if len(s.series) == 0 {
		return nil
	}
	p, err := s.plot()
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(s.Width, s.Height), vgimg.UseDPI(s.DPI))
	p.Draw(draw.New(c))

	return writeFile(s.Path, func(w io.Writer) error {
		_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		return err
	})
}
