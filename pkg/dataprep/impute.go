package dataprep

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mlprep/pkg/data"
	"mlprep/pkg/stats"
)

// Strategy names how SimpleImputer fills a missing cell.
type Strategy string

const (
	StrategyMean         Strategy = "mean"
	StrategyMedian       Strategy = "median"
	StrategyMostFrequent Strategy = "most_frequent"
	StrategyConstant     Strategy = "constant"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyMean, StrategyMedian, StrategyMostFrequent, StrategyConstant:
		return st, nil
	default:
		return "", fmt.Errorf("imputer: unknown strategy %q", s)
	}
}

// numeric reports whether the strategy needs parseable numbers.
func (s Strategy) numeric() bool { return s == StrategyMean || s == StrategyMedian }

// SimpleImputer fills missing cells column by column with a statistic learned at fit time.
// It works on raw string cells so the same imputer serves numeric and categorical columns.
type SimpleImputer struct {
	Strategy  Strategy
	FillValue string

	Statistics []string
	Fitted     bool
}

// ImputerOption functional config for SimpleImputer
type ImputerOption func(*SimpleImputer)

func WithFillValue(v string) ImputerOption { return func(im *SimpleImputer) { im.FillValue = v } }

func NewSimpleImputer(strategy Strategy, opts ...ImputerOption) *SimpleImputer {
	im := &SimpleImputer{Strategy: strategy, FillValue: "missing_value"}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Fit learns one fill value per column from its non-missing cells.
func (im *SimpleImputer) Fit(X [][]string) error {
	if len(X) == 0 {
		return errors.New("imputer: empty X")
	}
	cols := len(X[0])
	im.Statistics = make([]string, cols)
	for c := 0; c < cols; c++ {
		observed := make([]string, 0, len(X))
		for r := range X {
			if len(X[r]) != cols {
				return fmt.Errorf("imputer: row %d has %d columns, want %d", r, len(X[r]), cols)
			}
			if v := X[r][c]; !data.IsMissing(v) {
				observed = append(observed, v)
			}
		}
		stat, err := im.statistic(observed)
		if err != nil {
			return fmt.Errorf("imputer: column %d: %w", c, err)
		}
		im.Statistics[c] = stat
	}
	im.Fitted = true
	return nil
}

func (im *SimpleImputer) statistic(observed []string) (string, error) {
	if im.Strategy == StrategyConstant {
		return im.FillValue, nil
	}
	if len(observed) == 0 {
		return "", errors.New("no observed values")
	}
	if !im.Strategy.numeric() {
		if im.Strategy != StrategyMostFrequent {
			return "", fmt.Errorf("unknown strategy %q", im.Strategy)
		}
		mode, _ := stats.MostFrequent(observed)
		return mode, nil
	}

	nums := make([]float64, len(observed))
	for i, v := range observed {
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", fmt.Errorf("%s needs numeric values: %w", im.Strategy, err)
		}
		nums[i] = num
	}
	var v float64
	if im.Strategy == StrategyMean {
		v = stats.Mean(nums)
	} else {
		v = stats.Median(nums)
	}
	// shortest exact representation so the parsed value round-trips bit for bit
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

// Transform returns a copy of X with missing cells filled.
func (im *SimpleImputer) Transform(X [][]string) ([][]string, error) {
	if !im.Fitted {
		return nil, errors.New("imputer: not fitted")
	}
	out := make([][]string, len(X))
	for r, row := range X {
		if len(row) != len(im.Statistics) {
			return nil, fmt.Errorf("imputer: row %d has %d columns, fitted on %d", r, len(row), len(im.Statistics))
		}
		filled := make([]string, len(row))
		for c, v := range row {
			if data.IsMissing(v) {
				v = im.Statistics[c]
			}
			filled[c] = v
		}
		out[r] = filled
	}
	return out, nil
}

func (im *SimpleImputer) FitTransform(X [][]string) ([][]string, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}
