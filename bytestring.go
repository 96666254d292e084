package binproto

import (
	"bytes"
	"io"
)

// resolveStringLen returns the fixed wire length of a ByteString or
// TextString field type given ctx, failing for AUTOSIZED since no
// value is available to measure at this level (see RecordDescriptor's
// Serialize/Sizeof, which measure AUTOSIZED fields directly against a
// concrete value instead of going through this method).
func (t *FieldType) resolveStringLen(ctx Context) (int, error) {
	if t.length.IsAutosized() {
		return 0, newDescriptorError("", "", "AUTOSIZED string has no fixed sizeof without a value")
	}
	return resolveLength(t.length, ctx, "", "")
}

// parseByteString implements §4.1's ByteString/TextString parse rules:
// fixed reads N bytes (truncating at the first null unless fullString
// is set); AUTOSIZED reads until a null terminator, failing with a
// FramingError if EOF arrives first.
func (t *FieldType) parseByteString(r io.Reader, ctx Context) ([]byte, error) {
	if t.hooks != nil && t.hooks.Decode != nil {
		v, err := t.hooks.Decode(r, ctx)
		if err != nil {
			return nil, err
		}
		b, _ := convertByteString(v, "", "")
		return b, nil
	}

	if t.length.IsAutosized() {
		return readUntilNull(r)
	}

	n, err := t.resolveStringLen(ctx)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, newShortReadError("", "", got, n)
	}
	if !t.fullString {
		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}
	}
	return buf, nil
}

// readUntilNull reads bytes one at a time until (and excluding) a null
// byte. EOF before a null byte is a FramingError.
func readUntilNull(r io.Reader) ([]byte, error) {
	var out []byte
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 0 {
			if err == nil {
				continue
			}
			return nil, newFramingError("", "", "end of stream reached with no null terminator")
		}
		if b[0] == 0 {
			return out, nil
		}
		out = append(out, b[0])
	}
}

// serializeByteString implements §4.1's ByteString/TextString
// serialize rules: fixed right-pads short input with '\0' and warns +
// truncates long input; AUTOSIZED truncates at the first embedded null
// (treating it as a premature terminator) and appends a trailing '\0'.
func (t *FieldType) serializeByteString(v []byte, ctx Context, rt *Runtime) ([]byte, error) {
	if t.hooks != nil && t.hooks.Encode != nil {
		return t.hooks.Encode(v, ctx)
	}

	if t.length.IsAutosized() {
		if i := bytes.IndexByte(v, 0); i >= 0 {
			v = v[:i]
		}
		out := make([]byte, len(v)+1)
		copy(out, v)
		return out, nil
	}

	n, err := t.resolveStringLen(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if len(v) > n {
		if err := rt.warn("", "", "string of length %d truncated to %d bytes", len(v), n); err != nil {
			return nil, err
		}
		copy(out, v[:n])
	} else {
		copy(out, v)
	}
	return out, nil
}
