package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// missing markers recognised when reading CSV cells (pandas default NA set)
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a cell counts as a missing value. Cells are
// matched exactly, so " NA" is a value.
func IsMissing(s string) bool {
	_, ok := naValues[s]
	return ok
}

// Frame is a rows x named-columns table of raw string cells.
type Frame struct {
	Header  []string
	Records [][]string
	index   map[string]int
}

// NewFrame builds a frame and checks every record has one cell per header column.
func NewFrame(header []string, records [][]string) (*Frame, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("frame: duplicate column %q", h)
		}
		index[h] = i
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("frame: row %d has %d fields, header has %d", i+1, len(rec), len(header))
		}
	}
	return &Frame{Header: header, Records: records, index: index}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Records) }

// Has reports whether the frame carries the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("frame: column %q not found", name)
	}
	out := make([]string, len(f.Records))
	for i, rec := range f.Records {
		out[i] = rec[j]
	}
	return out, nil
}

// Float64Column parses the named column. Missing cells become NaN.
func (f *Frame) Float64Column(name string) ([]float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, v := range col {
		if IsMissing(v) {
			out[i] = math.NaN()
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("frame: column %q row %d: %w", name, i+1, err)
		}
		out[i] = x
	}
	return out, nil
}

// Select returns the named columns as a rows x len(cols) slice, in the order given.
func (f *Frame) Select(cols ...string) ([][]string, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return nil, fmt.Errorf("frame: column %q not found", c)
		}
		idx[k] = j
	}
	out := make([][]string, len(f.Records))
	for i, rec := range f.Records {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = rec[j]
		}
		out[i] = row
	}
	return out, nil
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(cols ...string) (*Frame, error) {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if !f.Has(c) {
			return nil, fmt.Errorf("frame: column %q not found", c)
		}
		drop[c] = struct{}{}
	}
	var keep []string
	for _, h := range f.Header {
		if _, ok := drop[h]; !ok {
			keep = append(keep, h)
		}
	}
	records, err := f.Select(keep...)
	if err != nil {
		return nil, err
	}
	return NewFrame(keep, records)
}

// Rows returns a new frame holding the given rows, in the order given.
func (f *Frame) Rows(indices []int) (*Frame, error) {
	records := make([][]string, len(indices))
	for k, i := range indices {
		if i < 0 || i >= len(f.Records) {
			return nil, fmt.Errorf("frame: row index %d out of range", i)
		}
		records[k] = f.Records[i]
	}
	return NewFrame(f.Header, records)
}
