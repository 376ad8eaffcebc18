package rest

import (
	"iter"
	"net/url"
	"reflect"
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
)

// SearchParams is an insertion-ordered set of query parameters. Values may be
// scalars, slices, nested *SearchParams or plain maps. Plain Go maps have no
// insertion order, so their keys are serialized in sorted order.
type SearchParams struct {
	values *orderedmap.Map[string, any]
}

// NewSearchParams returns an empty parameter set.
func NewSearchParams() *SearchParams {
	return &SearchParams{values: orderedmap.New[string, any]()}
}

// Set adds or replaces key, keeping the key's original position on replace.
func (p *SearchParams) Set(key string, value any) *SearchParams {
	if p.values == nil {
		p.values = orderedmap.New[string, any]()
	}
	p.values.Set(key, value)
	return p
}

// Get returns the value stored under key.
func (p *SearchParams) Get(key string) (any, bool) {
	if p == nil || p.values == nil {
		return nil, false
	}
	return p.values.Get(key)
}

// Len returns the number of keys. A nil *SearchParams is empty.
func (p *SearchParams) Len() int {
	if p == nil || p.values == nil {
		return 0
	}
	return p.values.Len()
}

// All iterates keys in insertion order.
func (p *SearchParams) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if p.Len() == 0 {
			return
		}
		for key, value := range p.values.FromOldest() {
			if !yield(key, value) {
				return
			}
		}
	}
}

// SerializeParams renders params as a query string: "" when there is nothing
// to send, otherwise "?" followed by the encoded pairs. Slices expand to
// repeated key[] entries and mappings to key[sub] entries. Nil values are skipped.
func SerializeParams(params *SearchParams) string {
	var pairs []string
	for key, value := range params.All() {
		pairs = appendParam(pairs, key, value)
	}
	if len(pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(pairs, "&")
}

func appendParam(pairs []string, key string, value any) []string {
	switch v := value.(type) {
	case nil:
		return pairs
	case *SearchParams:
		for sub, subValue := range v.All() {
			pairs = appendParam(pairs, key+"["+sub+"]", subValue)
		}
		return pairs
	}

	if list, ok := listValue(value); ok {
		for i := 0; i < list.Len(); i++ {
			pairs = appendParam(pairs, key+"[]", list.Index(i).Interface())
		}
		return pairs
	}

	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Map {
		for _, k := range sortedMapKeys(rv) {
			pairs = appendParam(pairs, key+"["+stringify(k.Interface())+"]", rv.MapIndex(k).Interface())
		}
		return pairs
	}

	return append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(stringify(value)))
}
