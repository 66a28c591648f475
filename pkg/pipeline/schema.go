package pipeline

import (
	"errors"
	"fmt"

	"mlprep/pkg/data"
)

// Schema describes the structure of a dataset.
type Schema struct {
	Numeric     []string `koanf:"numeric"`
	Categorical []string `koanf:"categorical"`
	Target      string   `koanf:"target"`
}

// StudentSchema is the student-performance layout.
func StudentSchema() Schema {
	return Schema{
		Numeric: []string{"writing_score", "reading_score"},
		Categorical: []string{
			"gender", "race_ethnicity", "parental_level_of_education", "lunch", "test_preparation_course",
		},
		Target: "math_score",
	}
}

// Validate checks the schema is usable. One of the two groups may be empty
// but not both, and no column may be used twice.
func (s Schema) Validate() error {
	if len(s.Numeric) == 0 && len(s.Categorical) == 0 {
		return errors.New("schema: no feature columns")
	}
	if s.Target == "" {
		return errors.New("schema: target column is required")
	}
	seen := map[string]struct{}{s.Target: {}}
	for _, c := range append(append([]string{}, s.Numeric...), s.Categorical...) {
		if c == "" {
			return errors.New("schema: empty column name")
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("schema: column %q listed twice", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Check verifies a frame carries every schema column.
func (s Schema) Check(f *data.Frame, withTarget bool) error {
	cols := append(append([]string{}, s.Numeric...), s.Categorical...)
	if withTarget {
		cols = append(cols, s.Target)
	}
	for _, c := range cols {
		if !f.Has(c) {
			return fmt.Errorf("schema: column %q missing from input", c)
		}
	}
	return nil
}
