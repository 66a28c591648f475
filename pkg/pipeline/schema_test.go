package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlprep/pkg/data"
)

func TestStudentSchemaValid(t *testing.T) {
	s := StudentSchema()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Numeric, 2)
	assert.Len(t, s.Categorical, 5)
	assert.Equal(t, "math_score", s.Target)
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"no features", Schema{Target: "y"}},
		{"no target", Schema{Numeric: []string{"a"}}},
		{"duplicate", Schema{Numeric: []string{"a"}, Categorical: []string{"a"}, Target: "y"}},
		{"target reused", Schema{Numeric: []string{"y"}, Target: "y"}},
		{"empty name", Schema{Numeric: []string{""}, Target: "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.schema.Validate())
		})
	}
}

func TestSchemaValidateSingleGroup(t *testing.T) {
	assert.NoError(t, Schema{Numeric: []string{"a"}, Target: "y"}.Validate())
	assert.NoError(t, Schema{Categorical: []string{"b"}, Target: "y"}.Validate())
}

func TestSchemaCheck(t *testing.T) {
	s := Schema{Numeric: []string{"a"}, Categorical: []string{"b"}, Target: "y"}
	f, err := data.NewFrame([]string{"a", "b"}, nil)
	require.NoError(t, err)

	assert.NoError(t, s.Check(f, false))
	assert.Error(t, s.Check(f, true))
}
