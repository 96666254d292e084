package binproto

import "io"

// Kind tags which variant of the field-type algebra a FieldType value
// is (§3.1, §9 "tagged union" design note).
type Kind int

// Field-type variants.
const (
	KindScalar Kind = iota
	KindByteString
	KindTextString
	KindArray
	KindRecord
)

// EncErrors is TextString's decode-error policy (§3.1).
type EncErrors int

// Text decode-error policies.
const (
	EncStrict EncErrors = iota
	EncIgnore
	EncReplace
)

// OverrideHooks lets a caller re-express the source library's subclass
// overrides of ByteString.parse/serialize/convert (§9) as a value
// supplied alongside a base FieldType, instead of a subtype. Any hook
// left nil falls back to the base variant's behavior.
type OverrideHooks struct {
	Decode func(r io.Reader, ctx Context) (any, error)
	Encode func(v any, ctx Context) ([]byte, error)
	Coerce func(v any) (any, error)
}

// FieldType is an immutable value describing one wire field: a
// Scalar, ByteString, TextString, Array, or Record (§3.1). Build one
// with NewScalar, NewByteString, NewTextString, NewArray, or
// NewRecordField; field options (Always, Default) attach to any of
// them.
type FieldType struct {
	kind Kind

	// KindScalar
	scalar ScalarKind

	// KindByteString, KindTextString, KindArray
	length Length

	// KindByteString, KindTextString
	fullString bool // false => truncate at first null on parse

	// KindTextString
	encoding  string
	encErrors EncErrors

	// KindArray
	elem *FieldType

	// KindRecord
	record *RecordDescriptor

	always   any
	hasAlways bool
	default_ any // a value, or a func() any producer

	hooks *OverrideHooks
}

// FieldOption configures a FieldType at construction time.
type FieldOption func(*FieldType)

// Always sets the constant value a field must equal. Deviation warns
// on serialize/parse (§3.1) unless the field is a dispatcher
// discriminator, where it instead identifies the record.
func Always(v any) FieldOption {
	return func(t *FieldType) {
		t.always = v
		t.hasAlways = true
	}
}

// Default sets the value (or zero-arg producer) used when a field is
// unset at serialize time, or when initializing a record.
func Default(v any) FieldOption {
	return func(t *FieldType) {
		t.default_ = v
	}
}

// WithHooks attaches the override hook trio (§9) to a ByteString or
// TextString FieldType, letting a caller replace parse/serialize/
// convert wholesale without subclassing.
func WithHooks(h OverrideHooks) FieldOption {
	return func(t *FieldType) {
		t.hooks = &h
	}
}

// NewScalar builds a Scalar FieldType.
func NewScalar(k ScalarKind, opts ...FieldOption) *FieldType {
	t := &FieldType{kind: KindScalar, scalar: k}
	applyFieldOptions(t, opts)
	return t
}

// NewByteString builds a ByteString FieldType: fixed-length when
// length is Fixed(n), or null-delimited when length is Autosized.
// fullString, when false, truncates parsed values at the first null
// byte (§3.1).
func NewByteString(length Length, fullString bool, opts ...FieldOption) *FieldType {
	t := &FieldType{kind: KindByteString, length: length, fullString: fullString}
	applyFieldOptions(t, opts)
	return t
}

// NewTextString builds a TextString FieldType: like NewByteString but
// with a required named codec and decode-error policy.
func NewTextString(length Length, encoding string, errs EncErrors, opts ...FieldOption) *FieldType {
	t := &FieldType{kind: KindTextString, length: length, encoding: encoding, encErrors: errs}
	applyFieldOptions(t, opts)
	return t
}

// NewArray builds an Array FieldType of length elements of elem.
// AUTOSIZED arrays are rejected (§3.1) with a DescriptorError, though
// not by NewArray itself: NewRecord and WithOverride reject a record
// that declares one, and a standalone array reports it the first time
// its Sizeof/Parse/Serialize runs.
func NewArray(length Length, elem *FieldType, opts ...FieldOption) *FieldType {
	t := &FieldType{kind: KindArray, length: length, elem: elem}
	applyFieldOptions(t, opts)
	return t
}

// NewRecordField wraps a RecordDescriptor as a nested-record
// FieldType.
func NewRecordField(desc *RecordDescriptor, opts ...FieldOption) *FieldType {
	t := &FieldType{kind: KindRecord, record: desc}
	applyFieldOptions(t, opts)
	return t
}

func applyFieldOptions(t *FieldType, opts []FieldOption) {
	for _, opt := range opts {
		opt(t)
	}
}

// Kind reports the field type's variant.
func (t *FieldType) Kind() Kind { return t.kind }

// HasAlways reports whether the field type carries a constant value.
func (t *FieldType) HasAlways() (any, bool) { return t.always, t.hasAlways }

// resolveDefault invokes the default producer if callable, else
// returns the stored value as-is (§4.1: "a value or a callable
// producing a value").
func (t *FieldType) resolveDefault() (any, bool) {
	if t.default_ == nil {
		return nil, false
	}
	if f, ok := t.default_.(func() any); ok {
		return f(), true
	}
	return t.default_, true
}

// StructFormat returns the wire-layout token of §4.1: a scalar's fixed
// code, "{N}s" for ByteString/TextString, the inner token repeated N
// times for Array, or the concatenation of a Record's field tokens.
func (t *FieldType) StructFormat(ctx Context) (string, error) {
	switch t.kind {
	case KindScalar:
		return t.scalar.structFormat(), nil
	case KindByteString, KindTextString:
		n, err := t.resolveStringLen(ctx)
		if err != nil {
			if t.length.IsAutosized() {
				return "0s", nil
			}
			return "", err
		}
		return itoa(n) + "s", nil
	case KindArray:
		n, err := t.resolveArrayLen(ctx)
		if err != nil {
			return "", err
		}
		inner, err := t.elem.StructFormat(ctx)
		if err != nil {
			return "", err
		}
		out := ""
		for i := 0; i < n; i++ {
			out += inner
		}
		return out, nil
	case KindRecord:
		out := ""
		for _, f := range t.record.Fields() {
			tok, err := f.Type.StructFormat(nil)
			if err != nil {
				return "", err
			}
			out += tok
		}
		return out, nil
	default:
		return "", newDescriptorError("", "", "unknown field kind")
	}
}

// Sizeof returns the number of bytes t occupies on the wire under ctx.
// Calling Sizeof on a variable-length type without a sufficient ctx
// fails with a DescriptorError (§4.1).
func (t *FieldType) Sizeof(ctx Context) (int, error) {
	switch t.kind {
	case KindScalar:
		return t.scalar.width(), nil
	case KindByteString, KindTextString:
		return t.resolveStringLen(ctx)
	case KindArray:
		n, err := t.resolveArrayLen(ctx)
		if err != nil {
			return 0, err
		}
		elemSize, err := t.elem.Sizeof(ctx)
		if err != nil {
			return 0, err
		}
		return n * elemSize, nil
	case KindRecord:
		rv, ok := ctx.(*RecordValue)
		if !ok || rv.desc != t.record {
			return 0, newDescriptorError("", "", "nested record sizeof requires its own RecordValue as context")
		}
		return t.record.Sizeof(rv)
	default:
		return 0, newDescriptorError("", "", "unknown field kind")
	}
}

// Parse decodes one value of t from r (§4.1). ctx resolves symbolic
// length references; rt controls warnings/events (nil uses library
// defaults).
func (t *FieldType) Parse(r io.Reader, ctx Context, rt *Runtime) (any, error) {
	rt = rt.orDefault()
	switch t.kind {
	case KindScalar:
		return t.parseScalar(r, rt)
	case KindByteString:
		b, err := t.parseByteString(r, ctx)
		if err != nil {
			return nil, err
		}
		if err := t.checkAlways(b, rt); err != nil {
			return nil, err
		}
		return b, nil
	case KindTextString:
		s, err := t.parseTextString(r, ctx)
		if err != nil {
			return nil, err
		}
		if err := t.checkAlways(s, rt); err != nil {
			return nil, err
		}
		return s, nil
	case KindArray:
		return t.parseArray(r, ctx, rt)
	case KindRecord:
		return t.record.Parse(r, rt)
	default:
		return nil, newDescriptorError("", "", "unknown field kind")
	}
}

// parseScalar reads Sizeof(nil) bytes and unpacks them per §6's fixed
// wire order. A short read is a FramingError naming the type and the
// number of bytes actually obtained.
func (t *FieldType) parseScalar(r io.Reader, rt *Runtime) (any, error) {
	width := t.scalar.width()
	buf := make([]byte, width)
	got, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, newShortReadError("", "", got, width)
	}
	v := unpackScalar(t.scalar, buf)
	if err := t.checkAlways(v, rt); err != nil {
		return nil, err
	}
	return v, nil
}

// Serialize encodes v as t's wire bytes (§4.1's dual of Parse).
func (t *FieldType) Serialize(v any, ctx Context, rt *Runtime) ([]byte, error) {
	rt = rt.orDefault()
	switch t.kind {
	case KindScalar:
		cv, err := convertScalar(t.scalar, v, rt, "", "")
		if err != nil {
			return nil, err
		}
		if err := t.checkAlways(cv, rt); err != nil {
			return nil, err
		}
		return packScalar(t.scalar, cv), nil
	case KindByteString:
		cv, err := convertByteString(v, "", "")
		if err != nil {
			return nil, err
		}
		if err := t.checkAlways(cv, rt); err != nil {
			return nil, err
		}
		return t.serializeByteString(cv, ctx, rt)
	case KindTextString:
		cv, err := convertTextString(t.encoding, t.encErrors, v, "", "")
		if err != nil {
			return nil, err
		}
		if err := t.checkAlways(cv, rt); err != nil {
			return nil, err
		}
		return t.serializeTextString(cv, ctx, rt)
	case KindArray:
		cv, err := t.convertArray(v, rt, "", "")
		if err != nil {
			return nil, err
		}
		return t.serializeArray(cv, ctx, rt)
	case KindRecord:
		rv, err := convertRecordField(t.record, v, "", "")
		if err != nil {
			return nil, err
		}
		return t.record.Serialize(rv, rt)
	default:
		return nil, newDescriptorError("", "", "unknown field kind")
	}
}

// checkAlways warns (or, in strict mode, errors) when v deviates from
// t's constant value. The dispatcher never reaches this path when
// matching a discriminator: it compares raw bytes directly and simply
// treats a mismatch as "not this candidate", so the "except where the
// constant is used for dispatch" carve-out of §3.1 never needs special
// handling here.
func (t *FieldType) checkAlways(v any, rt *Runtime) error {
	if !t.hasAlways {
		return nil
	}
	want := t.always
	if cv, err := t.convertAlways(rt); err == nil {
		want = cv
	}
	if !valuesEqual(want, v) {
		return rt.warn("", "", "value %v does not match always=%v", v, want)
	}
	return nil
}

// convertAlways runs the field type's own conversion over its always
// value, so checkAlways compares like-typed values (e.g. the narrowed
// uint16 a parse produces, not the untyped int literal Always(0x1234)
// was declared with).
func (t *FieldType) convertAlways(rt *Runtime) (any, error) {
	switch t.kind {
	case KindScalar:
		return convertScalar(t.scalar, t.always, rt, "", "")
	case KindByteString:
		return convertByteString(t.always, "", "")
	case KindTextString:
		return convertTextString(t.encoding, t.encErrors, t.always, "", "")
	default:
		return t.always, nil
	}
}

// parseValue and serializeValue are internal aliases of Parse/Serialize
// used by Array/Record so the public names read better at call sites
// outside this package.
func (t *FieldType) parseValue(r io.Reader, ctx Context, rt *Runtime) (any, error) {
	return t.Parse(r, ctx, rt)
}

func (t *FieldType) serializeValue(v any, ctx Context, rt *Runtime) ([]byte, error) {
	return t.Serialize(v, ctx, rt)
}
