package binproto

// RecordValue binds a RecordDescriptor to a map of field name →
// current value (§3.3). It implements Context so a record resolves its
// own fields' symbolic length references against itself.
type RecordValue struct {
	desc   *RecordDescriptor
	values map[string]any
	isSet  map[string]bool
}

// newRecordValue allocates an empty, unbound RecordValue for desc.
func newRecordValue(desc *RecordDescriptor) *RecordValue {
	return &RecordValue{
		desc:   desc,
		values: make(map[string]any, len(desc.fields)),
		isSet:  make(map[string]bool, len(desc.fields)),
	}
}

// Descriptor returns the RecordDescriptor this value is bound to.
func (rv *RecordValue) Descriptor() *RecordDescriptor { return rv.desc }

// Resolve implements Context by looking up a field's current value.
func (rv *RecordValue) Resolve(name string) (any, bool) {
	if !rv.isSet[name] {
		return nil, false
	}
	return rv.values[name], true
}

// Get returns the current value of a field and whether it is set.
func (rv *RecordValue) Get(name string) (any, bool) {
	return rv.Resolve(name)
}

// IsSet reports whether a field currently has a value.
func (rv *RecordValue) IsSet(name string) bool {
	return rv.isSet[name]
}

// Set assigns a new value to a field, rerunning conversion, a trial
// serialization, and the always-mismatch check (§4.3's "Assignment
// semantics"). rt controls warnings raised during conversion; nil uses
// the descriptor's configured runtime.
func (rv *RecordValue) Set(name string, v any, rt *Runtime) error {
	idx, ok := rv.desc.index[name]
	if !ok {
		return newDescriptorError(rv.desc.name, name, "no such field")
	}
	field := rv.desc.fields[idx]
	rt = rv.desc.effectiveRuntime(rt)

	cv, err := field.Type.convert(v, rt, rv.desc.name, name)
	if err != nil {
		return withFieldContext(err, rv.desc.name, name)
	}

	// Trial serialization: any failure under the current record
	// context is surfaced immediately, before the value is bound.
	if _, err := field.Type.Serialize(cv, rv, rt); err != nil {
		return withFieldContext(err, rv.desc.name, name)
	}

	if err := field.Type.checkAlways(cv, rt); err != nil {
		return withFieldContext(err, rv.desc.name, name)
	}

	rv.values[name] = cv
	rv.isSet[name] = true
	return nil
}

// unsafeBind sets a field's value without running conversion or a
// trial serialization; used by the parser, which already knows the
// value it read is well-formed for the field type.
func (rv *RecordValue) unsafeBind(name string, v any) {
	rv.values[name] = v
	rv.isSet[name] = true
}

// bindDefault converts v and stores it without a trial serialization.
// RecordDescriptor.New uses this for step 1's always/default pass: a
// default whose wire size depends on another field (e.g. a
// symbolic-length array's Default, sized off a length field the caller
// supplies later in step 3) must not be trial-serialized before that
// other field is bound. checkAlways still runs, since it only compares
// against the field's own always value and needs no other field's
// state. Step 3's explicit assignments still go through Set, which
// does trial-serialize.
func (rv *RecordValue) bindDefault(name string, v any, rt *Runtime) error {
	idx, ok := rv.desc.index[name]
	if !ok {
		return newDescriptorError(rv.desc.name, name, "no such field")
	}
	field := rv.desc.fields[idx]
	rt = rv.desc.effectiveRuntime(rt)

	cv, err := field.Type.convert(v, rt, rv.desc.name, name)
	if err != nil {
		return withFieldContext(err, rv.desc.name, name)
	}
	if err := field.Type.checkAlways(cv, rt); err != nil {
		return withFieldContext(err, rv.desc.name, name)
	}

	rv.values[name] = cv
	rv.isSet[name] = true
	return nil
}

// Equal reports whether two record values share a descriptor and have
// element-wise equal field values (§3.3; arrays compare by sequence
// equality via valuesEqual's reflect.DeepEqual).
func (rv *RecordValue) Equal(other *RecordValue) bool {
	if rv == nil || other == nil {
		return rv == other
	}
	if rv.desc != other.desc {
		return false
	}
	if len(rv.isSet) != len(other.isSet) {
		return false
	}
	for name, set := range rv.isSet {
		if set != other.isSet[name] {
			return false
		}
		if set && !valuesEqual(rv.values[name], other.values[name]) {
			return false
		}
	}
	return true
}

// snapshot returns a shallow copy of the set field values, used by the
// default EventSink implementation to log a record without exposing
// its mutable internals.
func (rv *RecordValue) snapshot() map[string]any {
	return rv.Fields()
}

// Fields returns a shallow copy of every currently-set field value,
// keyed by name. Callers that only need to inspect a decoded record
// (e.g. a CLI printing it) can use this instead of calling Get once
// per declared field.
func (rv *RecordValue) Fields() map[string]any {
	out := make(map[string]any, len(rv.values))
	for name, v := range rv.values {
		if rv.isSet[name] {
			out[name] = v
		}
	}
	return out
}
