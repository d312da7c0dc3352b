package export

import (
	"io"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// SVGSink renders the same figure as PNGSink in vector form.
type SVGSink struct {
	Figure
}

func NewSVGSink(path string) *SVGSink {
	return &SVGSink{Figure: newFigure(path)}
}

func (s *SVGSink) Close() error {
	if len(s.series) == 0 {
		return nil
	}
	p, err := s.plot()
	if err != nil {
		return err
	}

	c := vgsvg.New(s.Width, s.Height)
	p.Draw(draw.New(c))

	return writeFile(s.Path, func(w io.Writer) error {
		_, err := c.WriteTo(w)
		return err
	})
}
