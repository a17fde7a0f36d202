package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateChars(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{"empty", "", 5, ""},
		{"ASCII under limit", "hello", 10, "hello"},
		{"ASCII exact", "hello", 5, "hello"},
		{"ASCII over", "hello world", 5, "hello"},
		{"Unicode", "привет", 3, "при"},
		{"Unicode under", "привет", 10, "привет"},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncateChars(tt.text, tt.maxChars))
		})
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		list    any
		sep     string
		want    string
		wantErr bool
	}{
		{"nil", nil, ", ", "", false},
		{"strings", []string{"a", "b", "c"}, ", ", "a, b, c", false},
		{"any of strings", []any{"x", "y"}, "|", "x|y", false},
		{"empty", []string{}, ",", "", false},
		{"ints", []int{1, 2}, ",", "1,2", false},
		{"mixed", []any{"a", 1.5, nil}, "|", "a|1.5|", false},
		{"not a list", 42, ",", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := join(tt.list, tt.sep)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []any
		want    any
		wantErr bool
	}{
		{"no args", nil, int64(0), false},
		{"ints", []any{1, 2, 3}, int64(6), false},
		{"int slice", []any{[]int{1, 2, 3}}, int64(6), false},
		{"mixed", []any{1, 2.5}, 3.5, false},
		{"float first", []any{0.5, 1}, 1.5, false},
		{"float slice", []any{[]float64{0.25, 0.25}}, 0.5, false},
		{"not a number", []any{1, "two"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := sum(tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceholderFuncMap_CoversDirectives(t *testing.T) {
	t.Parallel()
	fm := placeholderFuncMap()
	for _, name := range []string{funcExtends, funcInclude, funcExt, funcSection, funcHasSection, "truncate_chars", "join", "sum"} {
		assert.Contains(t, fm, name)
	}
}
