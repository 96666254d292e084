package binproto

// Context resolves a symbolic length reference to the current value of
// an earlier field in the same record (§4.2). A *RecordValue under
// construction implements Context directly — there is no separate
// context object created per parse; a record parses/serializes itself
// by passing itself as the Context its own fields consult.
type Context interface {
	// Resolve looks up the current value of field name, returning
	// ok=false if it is unset or does not exist.
	Resolve(name string) (value any, ok bool)
}

// resolveLength returns the integer length denoted by l in ctx,
// applying the rules of §4.2. It never consults ctx for a fixed or
// AUTOSIZED length.
func resolveLength(l Length, ctx Context, record, field string) (int, error) {
	switch l.kind {
	case lengthFixed:
		return l.fixed, nil
	case lengthAutosized:
		return -1, newDescriptorError(record, field, "AUTOSIZED has no fixed length")
	case lengthSymbolic:
		if ctx == nil {
			return 0, newDescriptorError(record, field, "symbolic length %q needs a record context", l.name)
		}
		v, ok := ctx.Resolve(l.name)
		if !ok {
			return 0, newDescriptorError(record, field, "length field %q is unset", l.name)
		}
		n, ok := asInt(v)
		if !ok {
			return 0, newDescriptorError(record, field, "length field %q is not an integer (got %T)", l.name, v)
		}
		if n < 0 {
			return 0, newDescriptorError(record, field, "length field %q is negative (%d)", l.name, n)
		}
		return n, nil
	default:
		return 0, newDescriptorError(record, field, "unknown length kind")
	}
}

// asInt extracts an int from any of the integer-like kinds a field
// value may hold.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case uint:
		return int(n), true
	default:
		return 0, false
	}
}
