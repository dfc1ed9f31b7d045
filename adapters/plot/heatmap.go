package plot

import (
	"context"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"eegtfr/domain/tfr"
	"eegtfr/internal/errors"
	"eegtfr/ports"
)

// Renderer draws time-frequency maps as PNG heat maps using a
// diverging blue-red palette centered on zero.
type Renderer struct {
	width  vg.Length
	height vg.Length
	shades int
}

var _ ports.FigurePort = (*Renderer)(nil)

// NewRenderer creates a figure renderer with dimensions in inches
func NewRenderer(widthIn, heightIn float64) *Renderer {
	if widthIn <= 0 {
		widthIn = 9
	}
	if heightIn <= 0 {
		heightIn = 5
	}
	return &Renderer{
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
		shades: 255,
	}
}

// RenderDifference draws the contrast heat map with the significance
// contour and a stimulus-onset marker
func (r *Renderer) RenderDifference(ctx context.Context, fig ports.DifferenceFigure, path string) error {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (Hz)"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(fig.ColorMin)
	cm.SetMax(fig.ColorMax)
	hm := plotter.NewHeatMap(mapGrid{fig.Map}, cm.Palette(r.shades))
	hm.Min = fig.ColorMin
	hm.Max = fig.ColorMax
	p.Add(hm)

	if anyTrue(fig.SigMask) {
		contour := plotter.NewContour(
			maskGrid{times: fig.Map.Times, freqs: fig.Map.Freqs, mask: fig.SigMask},
			[]float64{0.5},
			solidPalette{color.Black},
		)
		p.Add(contour)
	}

	if err := r.addOnsetMarker(p, fig.Map); err != nil {
		return err
	}

	if err := p.Save(r.width, r.height, path); err != nil {
		return errors.RenderError("failed to save difference figure", err)
	}
	return nil
}

// RenderMap draws a single freq x time surface
func (r *Renderer) RenderMap(ctx context.Context, m *tfr.Map, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Frequency (Hz)"

	lo, hi := tfr.RobustRange(m, 98)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)
	hm := plotter.NewHeatMap(mapGrid{m}, cm.Palette(r.shades))
	hm.Min = lo
	hm.Max = hi
	p.Add(hm)

	if err := r.addOnsetMarker(p, m); err != nil {
		return err
	}

	if err := p.Save(r.width, r.height, path); err != nil {
		return errors.RenderError("failed to save map figure", err)
	}
	return nil
}

// addOnsetMarker draws a vertical line at t=0 when it is inside the axis
func (r *Renderer) addOnsetMarker(p *plot.Plot, m *tfr.Map) error {
	if len(m.Times) == 0 || m.Times[0] > 0 || m.Times[len(m.Times)-1] < 0 {
		return nil
	}
	line, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: m.Freqs[0]},
		{X: 0, Y: m.Freqs[len(m.Freqs)-1]},
	})
	if err != nil {
		return errors.RenderError("failed to build onset marker", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.Gray{Y: 32}
	p.Add(line)
	return nil
}

// solidPalette paints every contour level with the same color
type solidPalette struct {
	c color.Color
}

func (p solidPalette) Colors() []color.Color { return []color.Color{p.c} }

func anyTrue(mask [][]bool) bool {
	for _, row := range mask {
		for _, v := range row {
			if v {
				return true
			}
		}
	}
	return false
}
