package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const bins = 20

// Histograms writes one PNG histogram per column of m into dir and returns
// the written paths. NaN cells are ignored and constant columns skipped.
func Histograms(dir string, m mat.Matrix, names []string) ([]string, error) {
	rows, cols := m.Dims()
	if len(names) != cols {
		return nil, fmt.Errorf("report: %d names for %d columns", len(names), cols)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	for j := 0; j < cols; j++ {
		vals := make(plotter.Values, 0, rows)
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < rows; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			vals = append(vals, v)
			lo, hi = min(lo, v), max(hi, v)
		}
		if len(vals) == 0 || lo == hi {
			continue
		}

		p := plot.New()
		p.Title.Text = names[j]
		p.X.Label.Text = "value"
		p.Y.Label.Text = "count"

		h, err := plotter.NewHist(vals, bins)
		if err != nil {
			return written, fmt.Errorf("report: %s: %w", names[j], err)
		}
		h.FillColor = color.RGBA{R: 50, G: 50, B: 255, A: 255}
		p.Add(h)

		path := filepath.Join(dir, fileName(names[j])+".png")
		if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
			return written, fmt.Errorf("report: %s: %w", names[j], err)
		}
		written = append(written, path)
	}
	return written, nil
}

// fileName keeps letters, digits, '-' and '_' and maps everything else to '_'.
func fileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
