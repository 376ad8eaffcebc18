package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeParams(t *testing.T) {
	tests := []struct {
		name   string
		params *SearchParams
		want   string
	}{
		{
			name:   "nil",
			params: nil,
			want:   "",
		},
		{
			name:   "empty",
			params: NewSearchParams(),
			want:   "",
		},
		{
			name:   "scalars keep insertion order",
			params: NewSearchParams().Set("limit", 50).Set("fields", "id,title").Set("a", true),
			want:   "?limit=50&fields=id%2Ctitle&a=true",
		},
		{
			name: "arrays and nested params",
			params: NewSearchParams().
				Set("ids", []int{1, 2}).
				Set("filter", NewSearchParams().Set("status", "open")),
			want: "?ids%5B%5D=1&ids%5B%5D=2&filter%5Bstatus%5D=open",
		},
		{
			name:   "space encodes as plus",
			params: NewSearchParams().Set("title", "blue hat"),
			want:   "?title=blue+hat",
		},
		{
			name: "deep nesting",
			params: NewSearchParams().Set("a", NewSearchParams().
				Set("b", NewSearchParams().Set("c", []string{"x"}))),
			want: "?a%5Bb%5D%5Bc%5D%5B%5D=x",
		},
		{
			name:   "array of mappings",
			params: NewSearchParams().Set("items", []any{NewSearchParams().Set("id", 7)}),
			want:   "?items%5B%5D%5Bid%5D=7",
		},
		{
			name:   "plain maps use sorted keys",
			params: NewSearchParams().Set("m", map[string]any{"z": 1, "a": 2}),
			want:   "?m%5Ba%5D=2&m%5Bz%5D=1",
		},
		{
			name:   "nil values skipped",
			params: NewSearchParams().Set("skip", nil).Set("keep", "1"),
			want:   "?keep=1",
		},
		{
			name:   "only nil values",
			params: NewSearchParams().Set("skip", nil),
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializeParams(tt.params))
		})
	}
}

func TestSearchParams_SetKeepsPosition(t *testing.T) {
	params := NewSearchParams().Set("a", 1).Set("b", 2).Set("a", 3)

	var keys []string
	for key := range params.All() {
		keys = append(keys, key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	value, ok := params.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, value)
	assert.Equal(t, 2, params.Len())
}

func TestSearchParams_ZeroValueUsable(t *testing.T) {
	var params SearchParams
	params.Set("q", "x")
	assert.Equal(t, "?q=x", SerializeParams(&params))
}
