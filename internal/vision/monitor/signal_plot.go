package monitor

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/banshee-data/court.report/internal/vision"
	"github.com/banshee-data/court.report/internal/vision/l3events"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	signalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	deltaColor  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	eventColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// SignalPlot builds a plot of the rolling event signal against frame index
// with each detected event marked on the curve. NaN samples break the line
// rather than being drawn as zero.
func SignalPlot(title string, sig l3events.Signal, events vision.EventFrames) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Signal (px)"

	for i, seg := range segments(sig.Rolling) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return nil, fmt.Errorf("signal segment %d: %w", i, err)
		}
		line.Color = signalColor
		line.Width = vg.Points(1)
		p.Add(line)
		if i == 0 {
			p.Legend.Add("rolling", line)
		}
	}

	for i, seg := range segments(sig.Delta) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return nil, fmt.Errorf("delta segment %d: %w", i, err)
		}
		line.Color = deltaColor
		line.Width = vg.Points(0.5)
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
		if i == 0 {
			p.Legend.Add("delta", line)
		}
	}

	marks := make(plotter.XYs, 0, len(events))
	for _, f := range events {
		if f < 0 || f >= len(sig.Rolling) || !finite(sig.Rolling[f]) {
			continue
		}
		marks = append(marks, plotter.XY{X: float64(f), Y: sig.Rolling[f]})
	}
	if len(marks) > 0 {
		sc, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, fmt.Errorf("event markers: %w", err)
		}
		sc.GlyphStyle.Color = eventColor
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("events", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveSignalPlot writes SignalPlot to path. The image format follows the
// file extension (png, svg, pdf).
func SaveSignalPlot(path, title string, sig l3events.Signal, events vision.EventFrames) error {
	p, err := SignalPlot(title, sig, events)
	if err != nil {
		return err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save signal plot: %w", err)
	}
	return nil
}

// WriteSignalPlot renders SignalPlot to w in the given format (png, svg,
// pdf, ...).
func WriteSignalPlot(w io.Writer, format, title string, sig l3events.Signal, events vision.EventFrames) error {
	p, err := SignalPlot(title, sig, events)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("signal plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write signal plot: %w", err)
	}
	return nil
}

// segments splits v into runs of finite samples.
func segments(v []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, y := range v {
		if !finite(y) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: y})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
