package binproto

import "fmt"

// DescriptorError is a static inconsistency in a FieldType or
// RecordDescriptor declaration, e.g. a forward length reference or a
// conflicting override. It is raised at construction time, or lazily at
// the first operation that needs the missing information.
type DescriptorError struct {
	// Record is the enclosing record name, if any.
	Record string
	// Field is the field name the error concerns, if any.
	Field string
	Msg   string
}

func (e *DescriptorError) Error() string {
	switch {
	case e.Record != "" && e.Field != "":
		return fmt.Sprintf("%s.%s: %s", e.Record, e.Field, e.Msg)
	case e.Record != "":
		return fmt.Sprintf("%s: %s", e.Record, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("field %s: %s", e.Field, e.Msg)
	default:
		return e.Msg
	}
}

// FramingError is a dynamic parse or serialize failure tied to one
// record. It never corrupts the bytes of a different record on the same
// stream.
type FramingError struct {
	Record string
	Field  string
	Msg    string
	// Got is the number of bytes actually obtained on a short read,
	// or -1 when not applicable.
	Got int
}

func (e *FramingError) Error() string {
	prefix := e.Record
	if e.Field != "" {
		prefix += "." + e.Field
	}
	if e.Got >= 0 {
		return fmt.Sprintf("record %s received only %d bytes: %s", prefix, e.Got, e.Msg)
	}
	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Msg)
	}
	return e.Msg
}

func newDescriptorError(record, field, format string, args ...any) *DescriptorError {
	return &DescriptorError{Record: record, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func newFramingError(record, field string, format string, args ...any) *FramingError {
	return &FramingError{Record: record, Field: field, Msg: fmt.Sprintf(format, args...), Got: -1}
}

// withFieldContext fills in the Record/Field of a DescriptorError or
// FramingError returned by a field-type-level operation that does not
// itself know its enclosing record or field name.
func withFieldContext(err error, record, field string) error {
	switch e := err.(type) {
	case *DescriptorError:
		if e.Record == "" {
			e.Record = record
		}
		if e.Field == "" {
			e.Field = field
		}
		return e
	case *FramingError:
		if e.Record == "" {
			e.Record = record
		}
		if e.Field == "" {
			e.Field = field
		}
		return e
	default:
		return err
	}
}

func newShortReadError(record, field string, got, want int) *FramingError {
	return &FramingError{
		Record: record,
		Field:  field,
		Msg:    fmt.Sprintf("expected %d bytes", want),
		Got:    got,
	}
}
