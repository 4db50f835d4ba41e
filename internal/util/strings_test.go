package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "nil slice returns (none)", items: nil, want: "(none)"},
		{name: "empty slice returns (none)", items: []string{}, want: "(none)"},
		{name: "single item returns item", items: []string{"foo"}, want: "foo"},
		{name: "multiple items joined with comma", items: []string{"foo", "bar", "baz"}, want: "foo, bar, baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "-", JoinOrDefault(nil, "-"))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "-"))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "processes", Pluralize(0, "process", "processes"))
	assert.Equal(t, "process", Pluralize(1, "process", "processes"))
	assert.Equal(t, "processes", Pluralize(2, "process", "processes"))
}

func TestParsePIDs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int32
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "42", want: []int32{42}},
		{name: "spaces and order", raw: " 7, 3 ,12", want: []int32{7, 3, 12}},
		{name: "duplicates dropped", raw: "5,5,6", want: []int32{5, 6}},
		{name: "empty parts skipped", raw: "1,,2,", want: []int32{1, 2}},
		{name: "not a number", raw: "1,abc", wantErr: true},
		{name: "zero rejected", raw: "0", wantErr: true},
		{name: "negative rejected", raw: "-4", wantErr: true},
		{name: "overflow rejected", raw: "99999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePIDs(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPIDs(t *testing.T) {
	assert.Equal(t, "(none)", FormatPIDs(nil))
	assert.Equal(t, "3, 1", FormatPIDs([]int32{3, 1}))
}
