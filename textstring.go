package binproto

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupEncoding resolves a named codec (e.g. "utf-8", "utf-16be",
// "windows-1252") to a golang.org/x/text encoding.Encoding. "utf-8",
// "utf8" and the empty name are special-cased to encoding.Nop, since Go strings are
// already UTF-8 and round-tripping them through x/text would be pure
// overhead.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8", "":
		return encoding.Nop, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, newDescriptorError("", "", "unknown text encoding %q: %v", name, err)
	}
	return enc, nil
}

// convertTextString decodes input bytes with the configured encoding,
// passing text straight through (§4.3).
func convertTextString(encName string, errs EncErrors, v any, record, field string) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, ok := v.([]byte)
	if !ok {
		b, _ = convertByteString(v, record, field)
	}

	enc, err := lookupEncoding(encName)
	if err != nil {
		return "", err
	}
	dec := enc.NewDecoder()
	if errs == EncIgnore || errs == EncReplace {
		// golang.org/x/text decoders already replace invalid sequences
		// with U+FFFD by default; EncIgnore additionally strips them.
		out, decErr := dec.Bytes(b)
		if decErr != nil {
			return "", newFramingError(record, field, "decode error: %v", decErr)
		}
		s := string(out)
		if errs == EncIgnore {
			s = strings.ReplaceAll(s, "�", "")
		}
		return s, nil
	}

	// EncStrict relies solely on the decoder's own reported error rather
	// than scanning the output for U+FFFD: a codec is free to legitimately
	// decode to a real U+FFFD character, and sniffing for it would
	// false-reject that input.
	out, err := dec.Bytes(b)
	if err != nil {
		return "", newFramingError(record, field, "decode error: %v", err)
	}
	return string(out), nil
}

// parseTextString decodes one TextString value: ByteString rules
// followed by a decode with the stored encoding and enc_errors policy.
func (t *FieldType) parseTextString(r io.Reader, ctx Context) (string, error) {
	if t.hooks != nil && t.hooks.Decode != nil {
		v, err := t.hooks.Decode(r, ctx)
		if err != nil {
			return "", err
		}
		s, _ := v.(string)
		return s, nil
	}

	raw, err := t.parseByteString(r, ctx)
	if err != nil {
		return "", err
	}
	s, err := convertTextString(t.encoding, t.encErrors, raw, "", "")
	if err != nil {
		return "", err
	}
	// AUTOSIZED termination is detected at the byte level (the first
	// single 0x00), which is only correct for single-byte-per-unit
	// encodings. A multi-byte codec (UTF-16, UTF-32, ...) can carry a
	// 0x00 as half of an ordinary code unit well before its real
	// terminator; decoding such a truncated prefix then surfaces a NUL
	// rune in the result, which we reject rather than hand back a
	// silently corrupted string.
	if t.length.IsAutosized() && strings.ContainsRune(s, 0) {
		return "", newFramingError("", "", "AUTOSIZED text decoded with an embedded terminator for encoding %q", t.encoding)
	}
	return s, nil
}

// serializeTextString coerces to text, encodes with the configured
// codec, then applies ByteString rules to the encoded bytes.
func (t *FieldType) serializeTextString(s string, ctx Context, rt *Runtime) ([]byte, error) {
	if t.hooks != nil && t.hooks.Encode != nil {
		return t.hooks.Encode(s, ctx)
	}

	enc, err := lookupEncoding(t.encoding)
	if err != nil {
		return nil, err
	}
	encoded, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, newFramingError("", "", "encode error: %v", err)
	}
	return t.serializeByteString(encoded, ctx, rt)
}
