package binproto

import "fmt"

// Warning signals a silent-but-lossy situation: overrun truncation, an
// always-mismatch on a non-discriminator field, an unknown field name
// on construction, or float-to-integer precision loss. Warnings never
// stop an operation unless the runtime is in strict mode, in which case
// they are promoted to a FramingError.
type Warning struct {
	Record string
	Field  string
	Msg    string
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("%s.%s: %s", w.Record, w.Field, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Record, w.Msg)
}

// WarningSink collects warnings raised during parse, serialize, and
// record construction. A sink is part of a Runtime (see WithWarnings);
// a RecordDescriptor is given its default Runtime at construction time
// (see WithDescriptorRuntime), and individual operations may override
// it by passing their own Runtime, which is how strict mode is
// exercised in tests without mutating shared state.
type WarningSink interface {
	Warn(w Warning)
}

// WarningSinkFunc adapts a function to a WarningSink.
type WarningSinkFunc func(Warning)

// Warn implements WarningSink.
func (f WarningSinkFunc) Warn(w Warning) { f(w) }

// DiscardWarnings is a WarningSink that drops every warning.
var DiscardWarnings WarningSink = WarningSinkFunc(func(Warning) {})

// CollectingWarnings accumulates every warning it receives, which is
// convenient in tests that assert on the exact set of warnings raised.
type CollectingWarnings struct {
	Warnings []Warning
}

// Warn implements WarningSink.
func (c *CollectingWarnings) Warn(w Warning) {
	c.Warnings = append(c.Warnings, w)
}
