package mechanism

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Plot draws the pose segments as thick lines, one legend entry each.
func (p Pose) Plot() (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s (#%d)", RootName, p.Seq)
	pl.X.Label.Text = "x (m)"
	pl.Y.Label.Text = "y (m)"

	for i, s := range p.Segments() {
		line, err := plotter.NewLine(plotter.XYs{
			{X: s.Start.X(), Y: s.Start.Y()},
			{X: s.End.X(), Y: s.End.Y()},
		})
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(6)
		line.LineStyle.Color = plotutil.Color(i)
		pl.Add(line)
		pl.Legend.Add(s.Name, line)
	}
	pl.Add(plotter.NewGrid())

	return pl, nil
}

// WritePNG renders the pose as a PNG image of the given size.
func (p Pose) WritePNG(w io.Writer, width, height vg.Length) error {
	pl, err := p.Plot()
	if err != nil {
		return err
	}

	c := vgimg.New(width, height)
	pl.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
