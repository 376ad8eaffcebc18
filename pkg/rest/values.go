package rest

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/spf13/cast"
)

// stringify renders a scalar header or parameter value.
func stringify(value any) string {
	if s, err := cast.ToStringE(value); err == nil {
		return s
	}
	return fmt.Sprint(value)
}

// listValue reports whether value is a slice or array, excluding byte slices.
func listValue(value any) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv, false
		}
		return rv, true
	}
	return rv, false
}

// sortedMapKeys returns the keys of a plain Go map ordered by their string form.
func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}
