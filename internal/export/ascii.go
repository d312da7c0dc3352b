package export

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Aqua,
	asciigraph.Orange,
	asciigraph.LimeGreen,
	asciigraph.HotPink,
}

// ASCIISink draws the curves as a terminal chart.
type ASCIISink struct {
	w       io.Writer
	Height  int
	Width   int
	Caption string
	collector
}

func NewASCIISink(w io.Writer) *ASCIISink {
	return &ASCIISink{w: w, Height: 12, Width: 72, Caption: "energy"}
}

func (s *ASCIISink) Close() error {
	if len(s.series) == 0 {
		return nil
	}
	data := make([][]float64, len(s.series))
	labels := make([]string, len(s.series))
	colors := make([]asciigraph.AnsiColor, len(s.series))
	for i, sr := range s.series {
		data[i] = sr.Energy
		labels[i] = sr.Label
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(s.Height),
		asciigraph.Width(s.Width),
		asciigraph.Caption(s.Caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(labels...),
	)
	_, err := fmt.Fprintln(s.w, graph)
	return err
}
