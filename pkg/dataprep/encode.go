package dataprep

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"mlprep/pkg/data"
)

// NumericEncoder parses string cells into floats, one output column per input column.
type NumericEncoder struct {
	Width  int
	Fitted bool
}

func NewNumericEncoder() *NumericEncoder { return &NumericEncoder{} }

func (e *NumericEncoder) Fit(X [][]string) error {
	if len(X) == 0 {
		return errors.New("numeric: empty X")
	}
	e.Width = len(X[0])
	if _, err := e.parse(X); err != nil {
		return err
	}
	e.Fitted = true
	return nil
}

func (e *NumericEncoder) Transform(X [][]string) ([][]float64, error) {
	if !e.Fitted {
		return nil, errors.New("numeric: not fitted")
	}
	return e.parse(X)
}

// parse converts cells; a missing cell becomes NaN.
func (e *NumericEncoder) parse(X [][]string) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != e.Width {
			return nil, fmt.Errorf("numeric: row %d has %d columns, want %d", i, len(row), e.Width)
		}
		vals := make([]float64, len(row))
		for j, v := range row {
			if data.IsMissing(v) {
				vals[j] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("numeric: row %d column %d: %w", i, j, err)
			}
			vals[j] = f
		}
		out[i] = vals
	}
	return out, nil
}

func (e *NumericEncoder) FeatureNames(input []string) []string {
	return append([]string(nil), input...)
}

// OneHotEncoder one-hot encodes string columns. Categories are the sorted
// unique values seen per column at fit time; unseen values fail the transform.
type OneHotEncoder struct {
	Categories [][]string
	Fitted     bool

	lookup []map[string]int
}

func NewOneHotEncoder() *OneHotEncoder { return &OneHotEncoder{} }

func (e *OneHotEncoder) Fit(X [][]string) error {
	if len(X) == 0 {
		return errors.New("onehot: empty X")
	}
	cols := len(X[0])
	e.Categories = make([][]string, cols)
	for c := 0; c < cols; c++ {
		seen := map[string]struct{}{}
		for r := range X {
			if len(X[r]) != cols {
				return fmt.Errorf("onehot: row %d has %d columns, want %d", r, len(X[r]), cols)
			}
			seen[X[r][c]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[c] = cats
	}
	e.lookup = e.newLookup()
	e.Fitted = true
	return nil
}

// NOutputs returns the total number of one-hot columns.
func (e *OneHotEncoder) NOutputs() int {
	n := 0
	for _, cats := range e.Categories {
		n += len(cats)
	}
	return n
}

func (e *OneHotEncoder) newLookup() []map[string]int {
	lookup := make([]map[string]int, len(e.Categories))
	for c, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for i, v := range cats {
			m[v] = i
		}
		lookup[c] = m
	}
	return lookup
}

type oneHotState struct {
	Categories [][]string
	Fitted     bool
}

func (e *OneHotEncoder) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(oneHotState{Categories: e.Categories, Fitted: e.Fitted})
	return buf.Bytes(), err
}

// GobDecode restores the categories and rebuilds the index used by Transform.
func (e *OneHotEncoder) GobDecode(b []byte) error {
	var st oneHotState
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&st); err != nil {
		return err
	}
	e.Categories, e.Fitted = st.Categories, st.Fitted
	e.lookup = e.newLookup()
	return nil
}

func (e *OneHotEncoder) Transform(X [][]string) ([][]float64, error) {
	if !e.Fitted {
		return nil, errors.New("onehot: not fitted")
	}
	lookup := e.lookup
	if lookup == nil {
		lookup = e.newLookup()
	}
	width := e.NOutputs()
	out := make([][]float64, len(X))
	for r, row := range X {
		if len(row) != len(e.Categories) {
			return nil, fmt.Errorf("onehot: row %d has %d columns, fitted on %d", r, len(row), len(e.Categories))
		}
		vec := make([]float64, width)
		offset := 0
		for c, v := range row {
			k, ok := lookup[c][v]
			if !ok {
				return nil, fmt.Errorf("onehot: unknown category %q in column %d at row %d", v, c, r)
			}
			vec[offset+k] = 1
			offset += len(e.Categories[c])
		}
		out[r] = vec
	}
	return out, nil
}

func (e *OneHotEncoder) FeatureNames(input []string) []string {
	var names []string
	for c, cats := range e.Categories {
		prefix := fmt.Sprintf("x%d", c)
		if c < len(input) {
			prefix = input[c]
		}
		for _, v := range cats {
			names = append(names, prefix+"_"+v)
		}
	}
	return names
}
