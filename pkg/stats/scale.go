package stats

import (
	"errors"
	"fmt"
	"math"
)

// scales below this are treated as constant columns and left unscaled
const minScale = 10 * 2.220446049250313e-16

// StandardScaler standardizes columns to zero mean and unit variance.
// With WithMean=false the columns are only divided by their std, which keeps
// one-hot blocks sparse.
type StandardScaler struct {
	WithMean bool
	WithStd  bool

	Mean   []float64
	Scale  []float64
	Fitted bool
}

// ScalerOption functional config for StandardScaler
type ScalerOption func(*StandardScaler)

func WithMean(b bool) ScalerOption { return func(s *StandardScaler) { s.WithMean = b } }
func WithStd(b bool) ScalerOption  { return func(s *StandardScaler) { s.WithStd = b } }

func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{WithMean: true, WithStd: true}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fit learns per-column mean and population std.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("scaler: empty X")
	}
	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if len(X[i]) != c {
				return fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(X[i]), c)
			}
			col[i] = X[i][j]
		}
		s.Mean[j] = Mean(col)
		std := Std(col)
		if math.IsNaN(std) || std < minScale {
			std = 1
		}
		s.Scale[j] = std
	}
	s.Fitted = true
	return nil
}

// Transform applies the learned centering and scaling to a copy of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.Fitted {
		return nil, errors.New("scaler: not fitted")
	}
	c := len(s.Scale)
	out := make([][]float64, len(X))
	for i := range X {
		if len(X[i]) != c {
			return nil, fmt.Errorf("scaler: row %d has %d columns, fitted on %d", i, len(X[i]), c)
		}
		row := make([]float64, c)
		for j, v := range X[i] {
			if s.WithMean {
				v -= s.Mean[j]
			}
			if s.WithStd {
				v /= s.Scale[j]
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
