package diagnostics

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/stats"
)

// DefaultBins is the histogram resolution of every figure.
const DefaultBins = 100

var (
	red  = color.NRGBA{R: 220, G: 40, B: 40, A: 128}
	blue = color.NRGBA{R: 40, G: 70, B: 220, A: 128}
)

type series struct {
	values []float64
	color  color.Color
}

// Plot writes the per-feature figures into folder/transformed_figures.
//
// Conditioning features get <f>_original.png, targets <f>_identity_check.png with the
// round-tripped values overlaid on the raw ones. Both get <f>.png and <f>_log.png
// with the normalized values.
func Plot(cfg *dataset.DatasetConfig, a *Arrays, folder string, bins int) error {
	if bins <= 0 {
		bins = DefaultBins
	}
	dir := filepath.Join(folder, dataset.FiguresDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	nCond, nTarget := len(cfg.ConditioningFeatures), len(cfg.TargetFeatures)

	for j, name := range cfg.Features() {
		file := displayName(name)
		orig := a.Original.Col(j)
		edges := stats.BinEdges(orig, bins)

		c, suffix := red, "_original.png"
		raw := []series{{orig, red}}
		if j >= nCond {
			c, suffix = blue, "_identity_check.png"
			raw = []series{
				{orig, blue},
				{a.RoundTrip.Col(roundTripCol(j, nCond, nTarget)), red},
			}
		}
		if err := saveHist(filepath.Join(dir, file+suffix), file, edges, raw, false); err != nil {
			return err
		}

		tr := a.Transformed.Col(j)
		trEdges := stats.BinEdges(tr, bins)
		if err := saveHist(filepath.Join(dir, file+".png"), file, trEdges, []series{{tr, c}}, false); err != nil {
			return err
		}
		if err := saveHist(filepath.Join(dir, file+"_log.png"), file, trEdges, []series{{tr, c}}, true); err != nil {
			return err
		}
	}
	return nil
}

func saveHist(path, title string, edges []float64, ss []series, logY bool) error {
	p := hplot.New()
	p.Title.Text = title
	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	for _, s := range ss {
		h := hbook.NewH1DFromEdges(edges)
		last := edges[len(edges)-1]
		for _, v := range s.values {
			// the last bin is closed on the right
			if v == last {
				v = math.Nextafter(v, math.Inf(-1))
			}
			h.Fill(v, 1)
		}
		hh := hplot.NewH1D(h, hplot.WithLogY(logY))
		hh.FillColor = s.color
		hh.LineStyle.Color = s.color
		p.Add(hh)
	}
	if logY {
		// a log axis needs a positive, non-degenerate range
		p.Y.Min = 0.5
		p.Y.Max = math.Max(p.Y.Max, 10)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: save %s: %w", path, err)
	}
	return nil
}
