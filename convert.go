package binproto

import (
	"fmt"
	"math"
	"strconv"
)

// convert coerces a user-supplied value into t's native domain per the
// rules of §4.3, raising a Warning (never an error) for float-to-int
// precision loss and failing outright for anything that cannot be
// made to fit.
func (t *FieldType) convert(v any, rt *Runtime, record, field string) (any, error) {
	rt = rt.orDefault()
	if t.hooks != nil && t.hooks.Coerce != nil && (t.kind == KindByteString || t.kind == KindTextString) {
		return t.hooks.Coerce(v)
	}
	switch t.kind {
	case KindScalar:
		return convertScalar(t.scalar, v, rt, record, field)
	case KindByteString:
		return convertByteString(v, record, field)
	case KindTextString:
		return convertTextString(t.encoding, t.encErrors, v, record, field)
	case KindArray:
		return t.convertArray(v, rt, record, field)
	case KindRecord:
		return convertRecordField(t.record, v, record, field)
	default:
		return nil, newDescriptorError(record, field, "unknown field kind")
	}
}

// convertScalar implements:
//   - integer scalars: a genuinely float-typed input (float32/float64,
//     or a string that only parses as a float) truncates, emitting a
//     precision-loss warning when it is non-integral, then range-checks
//     and narrows via the float path; any integer-typed input (including
//     uint64 values above math.MaxInt64) is range-checked and narrowed
//     on the integer path, never routed through float64, so i64/u64
//     values above 2^53 survive intact.
//   - float scalars: accept any numeric-like input.
//   - single-byte scalars: a single-character text/byte value is its
//     code point.
func convertScalar(k ScalarKind, v any, rt *Runtime, record, field string) (any, error) {
	if k.width() == 1 && !k.isFloat() {
		if code, ok := singleByteCodePoint(v); ok {
			v = code
		}
	}

	if k.isFloat() {
		f, ok := toFloat64(v)
		if !ok {
			return nil, newFramingError(record, field, "cannot convert %T to %s", v, k)
		}
		return narrowFloat(k, f, record, field)
	}

	if f, ok := toFloatOnly(v); ok {
		if f != math.Trunc(f) {
			if err := rt.warn(record, field, "truncating non-integer float %v to %s", f, k); err != nil {
				return nil, err
			}
		}
		f = math.Trunc(f)
		lo, hi := scalarRange(k)
		if f < lo || f > hi {
			return nil, newFramingError(record, field, "value %v out of range for %s [%v, %v]", f, k, lo, hi)
		}
		return narrowInt(k, f), nil
	}

	i, u, isUnsigned, ok := toInteger(v)
	if !ok {
		return nil, newFramingError(record, field, "cannot convert %T to %s", v, k)
	}
	if !integerInRange(k, i, u, isUnsigned) {
		return nil, newFramingError(record, field, "value %s out of range for %s", formatInteger(i, u, isUnsigned), k)
	}
	return narrowIntExact(k, i, u, isUnsigned), nil
}

// singleByteCodePoint interprets a single-character string/byte/rune
// value as its code-point integer, per §4.3.
func singleByteCodePoint(v any) (int64, bool) {
	switch x := v.(type) {
	case string:
		if len([]rune(x)) == 1 {
			return int64([]rune(x)[0]), true
		}
	case byte:
		return int64(x), true
	case rune:
		return int64(x), true
	}
	return 0, false
}

// toFloatOnly reports whether v is genuinely float-typed — float32,
// float64, or a string that fails integer parsing but succeeds as a
// float — as opposed to an integer-typed value that merely happens to
// be representable as a float. Only genuinely float-typed input takes
// the truncate-with-warning path in convertScalar; everything else
// goes through toInteger to avoid float64's 2^53 precision ceiling.
func toFloatOnly(v any) (f float64, ok bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if _, err := strconv.ParseInt(x, 10, 64); err == nil {
			return 0, false
		}
		if _, err := strconv.ParseUint(x, 10, 64); err == nil {
			return 0, false
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toFloat64 extracts a float64 from any numeric-like or textual-numeric
// value, for the float-scalar conversion path (F32/F64), where a
// float64 intermediate loses no precision relevant to those widths.
func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return float64(n), true
		}
		if n, err := strconv.ParseUint(x, 10, 64); err == nil {
			return float64(n), true
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toInteger extracts the exact integer value of v without ever routing
// it through float64: isUnsigned selects which of i/u holds the value,
// so a uint64 above math.MaxInt64 is preserved exactly.
func toInteger(v any) (i int64, u uint64, isUnsigned, ok bool) {
	switch x := v.(type) {
	case int:
		return int64(x), 0, false, true
	case int8:
		return int64(x), 0, false, true
	case int16:
		return int64(x), 0, false, true
	case int32:
		return int64(x), 0, false, true
	case int64:
		return x, 0, false, true
	case uint:
		return 0, uint64(x), true, true
	case uint8:
		return 0, uint64(x), true, true
	case uint16:
		return 0, uint64(x), true, true
	case uint32:
		return 0, uint64(x), true, true
	case uint64:
		return 0, x, true, true
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n, 0, false, true
		}
		if n, err := strconv.ParseUint(x, 10, 64); err == nil {
			return 0, n, true, true
		}
		return 0, 0, false, false
	default:
		return 0, 0, false, false
	}
}

func formatInteger(i int64, u uint64, isUnsigned bool) string {
	if isUnsigned {
		return strconv.FormatUint(u, 10)
	}
	return strconv.FormatInt(i, 10)
}

// narrowInt converts an already-truncated float64 to k's native Go
// type; used only on the genuinely-float-typed input path, where the
// float64 intermediate was unavoidable before this call ever ran.
func narrowInt(k ScalarKind, f float64) any {
	switch k {
	case I8:
		return int8(f)
	case U8:
		return uint8(f)
	case I16:
		return int16(f)
	case U16:
		return uint16(f)
	case I32:
		return int32(f)
	case U32:
		return uint32(f)
	case I64:
		return int64(f)
	case U64:
		return uint64(f)
	default:
		return nil
	}
}

func narrowFloat(k ScalarKind, f float64, record, field string) (any, error) {
	switch k {
	case F32:
		if math.Abs(f) > math.MaxFloat32 {
			return nil, newFramingError(record, field, "value %v out of range for f32", f)
		}
		return float32(f), nil
	case F64:
		return f, nil
	default:
		return nil, newDescriptorError(record, field, "narrowFloat called with non-float kind")
	}
}

// convertByteString coerces a value to a []byte: text is encoded as
// UTF-8, integers and other values via their textual form then UTF-8
// encoded, byte slices pass through.
func convertByteString(v any, record, field string) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case nil:
		return nil, nil
	default:
		return []byte(fmt.Sprint(x)), nil
	}
}

// convertRecordField accepts only values of the exact child-record
// type (§4.3: "only values of the exact child-record type are
// accepted").
func convertRecordField(desc *RecordDescriptor, v any, record, field string) (*RecordValue, error) {
	rv, ok := v.(*RecordValue)
	if !ok {
		return nil, newFramingError(record, field, "expected *RecordValue for nested record %s, got %T", desc.name, v)
	}
	if rv.desc != desc {
		return nil, newFramingError(record, field, "value belongs to descriptor %s, not %s", rv.desc.name, desc.name)
	}
	return rv, nil
}
