package binproto

import "reflect"

// sliceViaReflection accepts any slice or array value (e.g. []int,
// []string, [3]float64) and returns its elements as []any, so Array
// fields can be assigned from ordinary Go slices instead of requiring
// callers to box everything as []any by hand.
func sliceViaReflection(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// valuesEqual reports whether two field values are equal for the
// purposes of an always-mismatch check and RecordValue.Equal (§3.3:
// "arrays compared by sequence equality").
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
