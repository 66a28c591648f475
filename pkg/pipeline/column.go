package pipeline

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"mlprep/pkg/data"
	"mlprep/pkg/dataprep"
	"mlprep/pkg/stats"
)

func init() {
	// concrete stage types travelling behind the Pipeline interfaces
	gob.Register(&dataprep.SimpleImputer{})
	gob.Register(&dataprep.NumericEncoder{})
	gob.Register(&dataprep.OneHotEncoder{})
	gob.Register(&stats.StandardScaler{})
}

// Group applies one pipeline to a set of named columns.
type Group struct {
	Name     string
	Pipeline *Pipeline
	Columns  []string
}

// ColumnTransformer runs each group on its columns and concatenates the
// results left to right. Columns not named by any group are dropped.
type ColumnTransformer struct {
	Groups      []Group
	OutputNames []string
	Widths      []int
	Fitted      bool
}

func NewColumnTransformer(groups ...Group) *ColumnTransformer {
	return &ColumnTransformer{Groups: groups}
}

// FitTransform fits every group on f and returns the stacked features.
func (ct *ColumnTransformer) FitTransform(f *data.Frame) (*mat.Dense, error) {
	if len(ct.Groups) == 0 {
		return nil, errors.New("column transformer: no groups")
	}
	if f.Len() == 0 {
		return nil, errors.New("column transformer: no rows")
	}
	blocks := make([][][]float64, len(ct.Groups))
	ct.Widths = make([]int, len(ct.Groups))
	ct.OutputNames = nil
	for g, grp := range ct.Groups {
		X, err := f.Select(grp.Columns...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", grp.Name, err)
		}
		out, err := grp.Pipeline.FitTransform(X)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", grp.Name, err)
		}
		blocks[g] = out
		ct.Widths[g] = width(out)
		for _, n := range grp.Pipeline.FeatureNames(grp.Columns) {
			ct.OutputNames = append(ct.OutputNames, grp.Name+"__"+n)
		}
	}
	ct.Fitted = true
	return stack(f.Len(), ct.Widths, blocks), nil
}

// Transform applies the fitted groups to f.
func (ct *ColumnTransformer) Transform(f *data.Frame) (*mat.Dense, error) {
	if !ct.Fitted {
		return nil, errors.New("column transformer: not fitted")
	}
	if f.Len() == 0 {
		return nil, errors.New("column transformer: no rows")
	}
	blocks := make([][][]float64, len(ct.Groups))
	for g, grp := range ct.Groups {
		X, err := f.Select(grp.Columns...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", grp.Name, err)
		}
		out, err := grp.Pipeline.Transform(X)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", grp.Name, err)
		}
		if w := width(out); w != ct.Widths[g] {
			return nil, fmt.Errorf("%s: produced %d columns, fitted with %d", grp.Name, w, ct.Widths[g])
		}
		blocks[g] = out
	}
	return stack(f.Len(), ct.Widths, blocks), nil
}

// NumOutputs returns the fitted output width.
func (ct *ColumnTransformer) NumOutputs() int {
	n := 0
	for _, w := range ct.Widths {
		n += w
	}
	return n
}

// FeatureNames returns "<group>__<feature>" names of the fitted output.
func (ct *ColumnTransformer) FeatureNames() []string {
	return append([]string(nil), ct.OutputNames...)
}

func width(X [][]float64) int {
	if len(X) == 0 {
		return 0
	}
	return len(X[0])
}

// stack lays the group blocks side by side in one row-major matrix.
func stack(rows int, widths []int, blocks [][][]float64) *mat.Dense {
	total := 0
	for _, w := range widths {
		total += w
	}
	buf := make([]float64, 0, rows*total)
	for i := 0; i < rows; i++ {
		for g := range blocks {
			buf = append(buf, blocks[g][i]...)
		}
	}
	return mat.NewDense(rows, total, buf)
}

// gob sees this type without the marshal methods below
type columnTransformerState ColumnTransformer

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (ct *ColumnTransformer) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode((*columnTransformerState)(ct)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (ct *ColumnTransformer) UnmarshalBinary(b []byte) error {
	var st columnTransformerState
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&st); err != nil {
		return err
	}
	*ct = ColumnTransformer(st)
	return nil
}
