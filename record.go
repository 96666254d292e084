package binproto

import "io"

// Field is one (name, FieldType) declaration in a RecordDescriptor, in
// the wire order it should appear.
type Field struct {
	Name string
	Type *FieldType
}

// fieldEntry is the descriptor's internal, flattened representation of
// one field after inheritance/override has been resolved.
type fieldEntry = Field

// RecordDescriptor is an ordered list of (name, FieldType) pairs, plus
// optionally a parent RecordDescriptor whose fields it overrides by
// name (§3.2). It is immutable after construction; its flattened field
// list is computed once and cached (§5).
type RecordDescriptor struct {
	name    string
	fields  []fieldEntry
	index   map[string]int
	parent  *RecordDescriptor
	runtime *Runtime
}

// Name returns the record's declared name.
func (d *RecordDescriptor) Name() string { return d.name }

// Fields returns the descriptor's flattened, ordered field list. The
// returned slice must not be mutated.
func (d *RecordDescriptor) Fields() []Field { return d.fields }

// FieldIndex returns the position of name in wire order, or (-1,
// false) if there is no such field.
func (d *RecordDescriptor) FieldIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// NewRecord builds a RecordDescriptor from an ordered field list,
// validating the invariants of §3.2/§4.2: unique names, backward-only
// symbolic length references, no AUTOSIZED arrays, no two fields
// sharing one *FieldType instance (the third Open Question — this
// library rejects it at construction rather than leaving it undefined,
// per SPEC_FULL.md's resolution), and array always/default lists
// matching a fixed array's length.
func NewRecord(name string, fields []Field, opts ...DescriptorOption) (*RecordDescriptor, error) {
	d := &RecordDescriptor{name: name, fields: append([]Field(nil), fields...)}
	if err := d.reindex(); err != nil {
		return nil, err
	}
	if err := validateFields(name, d.fields); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// WithOverride builds a child RecordDescriptor that inherits parent's
// fields, replacing the named ones with overrides while preserving
// their position in wire order. An override must keep the same wire
// size as the field it replaces — either the same fixed length, or
// both symbolic and referring to the same length name — otherwise
// construction fails (§3.2: "Size-changing overrides are an error").
func WithOverride(parent *RecordDescriptor, name string, overrides []Field, opts ...DescriptorOption) (*RecordDescriptor, error) {
	merged := append([]Field(nil), parent.fields...)
	byName := make(map[string]int, len(merged))
	for i, f := range merged {
		byName[f.Name] = i
	}

	for _, ov := range overrides {
		i, ok := byName[ov.Name]
		if !ok {
			return nil, newDescriptorError(name, ov.Name, "override names a field not present in parent %s", parent.name)
		}
		if err := checkSizePreserved(merged[i].Type, ov.Type); err != nil {
			return nil, withFieldContext(err, name, ov.Name)
		}
		merged[i].Type = ov.Type
	}

	d := &RecordDescriptor{name: name, fields: merged, parent: parent}
	if err := d.reindex(); err != nil {
		return nil, err
	}
	if err := validateFields(name, d.fields); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// checkSizePreserved enforces §3.2's override size-preservation rule.
func checkSizePreserved(orig, ov *FieldType) error {
	size := func(t *FieldType) (Length, bool) {
		switch t.kind {
		case KindByteString, KindTextString, KindArray:
			return t.length, true
		case KindScalar:
			return Fixed(t.scalar.width()), true
		default:
			return Length{}, false
		}
	}

	origLen, origOK := size(orig)
	ovLen, ovOK := size(ov)
	if !origOK || !ovOK {
		return nil
	}

	switch {
	case origLen.kind == lengthFixed && ovLen.kind == lengthFixed:
		if origLen.fixed != ovLen.fixed {
			return newDescriptorError("", "", "override changes fixed size from %d to %d bytes", origLen.fixed, ovLen.fixed)
		}
	case origLen.kind == lengthSymbolic && ovLen.kind == lengthSymbolic:
		if origLen.name != ovLen.name {
			return newDescriptorError("", "", "override's symbolic length %q differs from parent's %q", ovLen.name, origLen.name)
		}
	default:
		return newDescriptorError("", "", "override changes the field's size class")
	}
	return nil
}

// reindex (re)builds the name→position index, failing on duplicate
// names.
func (d *RecordDescriptor) reindex() error {
	d.index = make(map[string]int, len(d.fields))
	for i, f := range d.fields {
		if _, dup := d.index[f.Name]; dup {
			return newDescriptorError(d.name, f.Name, "duplicate field name")
		}
		d.index[f.Name] = i
	}
	return nil
}

// validateFields checks the construction-time invariants that do not
// depend on inheritance: backward-only symbolic length references, no
// AUTOSIZED arrays, no shared *FieldType instances, and array
// always/default lists matching a fixed array's length.
func validateFields(record string, fields []Field) error {
	seenTypes := make(map[*FieldType]string, len(fields))
	for i, f := range fields {
		if other, dup := seenTypes[f.Type]; dup {
			return newDescriptorError(record, f.Name, "shares a *FieldType instance with field %q; give each field its own FieldType value", other)
		}
		seenTypes[f.Type] = f.Name

		switch f.Type.kind {
		case KindByteString, KindTextString:
			if err := checkLengthOrdering(record, f.Name, f.Type.length, fields[:i]); err != nil {
				return err
			}
		case KindArray:
			if f.Type.length.IsAutosized() {
				return newDescriptorError(record, f.Name, "AUTOSIZED arrays are not supported")
			}
			if err := checkLengthOrdering(record, f.Name, f.Type.length, fields[:i]); err != nil {
				return err
			}
			if f.Type.length.kind == lengthFixed {
				if always, ok := f.Type.HasAlways(); ok {
					if lst, ok := always.([]any); ok && len(lst) != f.Type.length.fixed {
						return newDescriptorError(record, f.Name, "always list has %d elements, array length is %d", len(lst), f.Type.length.fixed)
					}
				}
				if dv, ok := f.Type.resolveDefault(); ok {
					if lst, ok := dv.([]any); ok && len(lst) != f.Type.length.fixed {
						return newDescriptorError(record, f.Name, "default list has %d elements, array length is %d", len(lst), f.Type.length.fixed)
					}
				}
			}
		}
	}
	return nil
}

// checkLengthOrdering enforces that a symbolic length name refers to a
// field declared earlier in wire order (§3.2, §4.2).
func checkLengthOrdering(record, field string, l Length, earlier []Field) error {
	name, ok := l.SymbolicName()
	if !ok {
		return nil
	}
	for _, f := range earlier {
		if f.Name == name {
			return nil
		}
	}
	return newDescriptorError(record, field, "length reference %q must name a field declared earlier in the record", name)
}

// effectiveRuntime resolves the Runtime an operation should use: an
// explicit per-operation rt, else the descriptor's configured default,
// else the library default.
func (d *RecordDescriptor) effectiveRuntime(rt *Runtime) *Runtime {
	if rt != nil {
		return rt.orDefault()
	}
	return d.runtime.orDefault()
}

// New constructs a RecordValue from a map of field name → initial
// value, per §4.3's construction algorithm:
//  1. every field gets its always value, else its default producer's
//     result, else is left unset (unless it is a variable-length field
//     whose length resolves to 0, in which case it is set to the empty
//     value). This step only converts and binds the value — it does
//     not trial-serialize, since a default can legitimately depend on
//     another field (e.g. a symbolic length) that step 3 hasn't bound
//     yet.
//  2. unknown names in vals are a Warning, not an error;
//  3. known names are assigned afterward via Set, so an invalid
//     explicit value is surfaced by its conversion/trial-serialize
//     error.
func (d *RecordDescriptor) New(vals map[string]any, rt *Runtime) (*RecordValue, error) {
	rt = d.effectiveRuntime(rt)
	rv := newRecordValue(d)

	for _, f := range d.fields {
		if always, ok := f.Type.HasAlways(); ok {
			if err := rv.bindDefault(f.Name, always, rt); err != nil {
				return nil, err
			}
			continue
		}
		if dv, ok := f.Type.resolveDefault(); ok {
			if err := rv.bindDefault(f.Name, dv, rt); err != nil {
				return nil, err
			}
			continue
		}
		if isEmptyableVariableLength(f.Type, rv) {
			rv.unsafeBind(f.Name, emptyValueFor(f.Type))
		}
	}

	for name := range vals {
		if _, ok := d.index[name]; !ok {
			if err := rt.warn(d.name, name, "unknown field, ignored"); err != nil {
				return nil, err
			}
		}
	}

	for _, f := range d.fields {
		v, ok := vals[f.Name]
		if !ok {
			continue
		}
		if err := rv.Set(f.Name, v, rt); err != nil {
			return nil, err
		}
	}

	return rv, nil
}

// NewPositional constructs a RecordValue by binding vals to fields in
// declaration order (§4.3's "Positional arguments... bind to fields in
// declaration order").
func (d *RecordDescriptor) NewPositional(vals []any, rt *Runtime) (*RecordValue, error) {
	m := make(map[string]any, len(vals))
	for i, v := range vals {
		if i >= len(d.fields) {
			return nil, newDescriptorError(d.name, "", "too many positional arguments: got %d, record has %d fields", len(vals), len(d.fields))
		}
		m[d.fields[i].Name] = v
	}
	return d.New(m, rt)
}

// isEmptyableVariableLength reports whether f is a variable-length
// field (ByteString/TextString/Array with a symbolic length) whose
// length currently resolves to 0 against rv (§3.2's completeness rule,
// §4.3 step 1). A field with a fixed or AUTOSIZED length is never
// auto-emptied this way.
func isEmptyableVariableLength(t *FieldType, ctx Context) bool {
	if t.kind != KindByteString && t.kind != KindTextString && t.kind != KindArray {
		return false
	}
	if !t.length.IsSymbolic() {
		return false
	}
	n, err := resolveLength(t.length, ctx, "", "")
	return err == nil && n == 0
}

func emptyValueFor(t *FieldType) any {
	switch t.kind {
	case KindByteString:
		return []byte{}
	case KindTextString:
		return ""
	case KindArray:
		return []any{}
	default:
		return nil
	}
}

// Parse decodes one record value from r: a fresh RecordValue is
// created and bound to this descriptor, then each field is parsed in
// declaration order using the new record itself as context, so a later
// field can reference an already-bound earlier field's value as its
// length (§4.1's Record parse rule).
func (d *RecordDescriptor) Parse(r io.Reader, rt *Runtime) (*RecordValue, error) {
	rt = d.effectiveRuntime(rt)
	rv := newRecordValue(d)

	for _, f := range d.fields {
		v, err := f.Type.Parse(r, rv, rt)
		if err != nil {
			return nil, withFieldContext(err, d.name, f.Name)
		}
		rv.unsafeBind(f.Name, v)
	}

	rt.Events.StructReceived(rv)
	return rv, nil
}

// Serialize encodes rv's fields in declaration order. A missing field
// is substituted, in priority order, by the field's always, the
// field's default, an empty value for a variable-length field that
// resolves to zero length, or else fails with a missing-field error
// (§4.1's Record serialize rule).
func (d *RecordDescriptor) Serialize(rv *RecordValue, rt *Runtime) ([]byte, error) {
	rt = d.effectiveRuntime(rt)

	var out []byte
	for _, f := range d.fields {
		v, ok := rv.Resolve(f.Name)
		if !ok {
			if always, hasAlways := f.Type.HasAlways(); hasAlways {
				v, ok = always, true
			} else if dv, hasDefault := f.Type.resolveDefault(); hasDefault {
				v, ok = dv, true
			} else if isEmptyableVariableLength(f.Type, rv) {
				v, ok = emptyValueFor(f.Type), true
			}
		}
		if !ok {
			return nil, newFramingError(d.name, f.Name, "missing value and no default")
		}

		b, err := f.Type.Serialize(v, rv, rt)
		if err != nil {
			return nil, withFieldContext(err, d.name, f.Name)
		}
		out = append(out, b...)
	}

	rt.Events.StructSent(rv)
	return out, nil
}

// Sizeof returns len(Serialize(rv, nil)); per §8's round-trip law this
// is the authoritative wire size of a fully-specified record value,
// including any AUTOSIZED fields whose size depends on their content.
func (d *RecordDescriptor) Sizeof(rv *RecordValue) (int, error) {
	b, err := d.Serialize(rv, nil)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
