package binproto

import "io"

// resolveArrayLen returns the element count of an Array field type.
// AUTOSIZED arrays are rejected (§3.1): this library disallows them
// entirely, matching protlib.py's CArray constructor which raises for
// a non-int, non-symbolic length.
func (t *FieldType) resolveArrayLen(ctx Context) (int, error) {
	if t.length.IsAutosized() {
		return 0, newDescriptorError("", "", "AUTOSIZED arrays are not supported")
	}
	return resolveLength(t.length, ctx, "", "")
}

// convertArray converts each element of v through the inner type's
// conversion (§4.3).
func (t *FieldType) convertArray(v any, rt *Runtime, record, field string) ([]any, error) {
	items, ok := toSlice(v)
	if !ok {
		return nil, newFramingError(record, field, "cannot convert %T to array", v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := t.elem.convert(item, rt, record, field)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func toSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case nil:
		return nil, true
	default:
		return sliceViaReflection(v)
	}
}

// parseArray parses n inner values in order (§4.1).
func (t *FieldType) parseArray(r io.Reader, ctx Context, rt *Runtime) ([]any, error) {
	n, err := t.resolveArrayLen(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := t.elem.parseValue(r, ctx, rt)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// serializeArray implements §4.1's array defaulting and overrun rules:
// a short input is padded with (in priority order) the array's always,
// the array's default, the inner type's always, the inner type's
// default; a still-short array is an error. A long input is truncated
// with a warning. Each element is serialized via the inner type.
func (t *FieldType) serializeArray(v []any, ctx Context, rt *Runtime) ([]byte, error) {
	n, err := t.resolveArrayLen(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]any, n)
	copy(items, v)

	if len(v) < n {
		fill, haveFill := t.arrayFillValue()
		for i := len(v); i < n; i++ {
			if !haveFill {
				return nil, newFramingError("", "", "array needs %d elements, got %d with no default to fill the rest", n, len(v))
			}
			items[i] = fill
		}
	} else if len(v) > n {
		if err := rt.warn("", "", "array of length %d truncated to %d elements", len(v), n); err != nil {
			return nil, err
		}
	}

	var out []byte
	for i := 0; i < n; i++ {
		b, err := t.elem.serializeValue(items[i], ctx, rt)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// arrayFillValue returns the value used to pad a short array, in the
// priority order of §4.1: the array's own always/default, then the
// inner type's always/default.
func (t *FieldType) arrayFillValue() (any, bool) {
	if t.hasAlways {
		return t.always, true
	}
	if v, ok := t.resolveDefault(); ok {
		return v, true
	}
	if t.elem.hasAlways {
		return t.elem.always, true
	}
	if v, ok := t.elem.resolveDefault(); ok {
		return v, true
	}
	return nil, false
}
