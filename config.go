package binproto

import "fmt"

const (
	// DefaultPeekBufferSize is the default peek-buffer capacity hint a
	// Dispatcher records. Dispatcher.Read does not consult it: its peek
	// buffer grows only to the length of the discriminator being tested.
	DefaultPeekBufferSize = 64
)

// Runtime carries the cross-cutting policy knobs threaded through
// parse, serialize, and record construction: the warning sink, the
// event sink, and the strict-mode toggle (§7's "only control knob").
//
// A RecordDescriptor is given a default Runtime at construction time
// (see WithDescriptorRuntime); individual Parse/Serialize calls may
// override it (see the rt parameter on those methods), which is how
// strict mode is exercised per-operation without mutating the shared
// descriptor — the pattern the design notes call for.
type Runtime struct {
	// Strict promotes warnings to errors (FramingError).
	Strict bool
	// Warnings collects non-fatal Warning values. Defaults to
	// DiscardWarnings.
	Warnings WarningSink
	// Events receives the six emitted-event kinds of §6. Defaults to
	// DiscardEvents.
	Events EventSink
}

// DefaultRuntime returns the library's zero-cost default: non-strict,
// warnings discarded, events discarded.
func DefaultRuntime() *Runtime {
	return &Runtime{
		Strict:   false,
		Warnings: DiscardWarnings,
		Events:   DiscardEvents,
	}
}

// orDefault returns a Runtime that is always safe to call methods on,
// filling in any nil collaborator with the library default.
func (rt *Runtime) orDefault() *Runtime {
	if rt == nil {
		return DefaultRuntime()
	}
	out := *rt
	if out.Warnings == nil {
		out.Warnings = DiscardWarnings
	}
	if out.Events == nil {
		out.Events = DiscardEvents
	}
	return &out
}

// warn routes a Warning to the configured sink, or promotes it to a
// FramingError when the runtime is in strict mode.
func (rt *Runtime) warn(record, field, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if rt.Strict {
		return &FramingError{Record: record, Field: field, Msg: "strict mode: " + msg, Got: -1}
	}
	rt.Warnings.Warn(Warning{Record: record, Field: field, Msg: msg})
	return nil
}

// RuntimeOption configures a Runtime built by NewRuntime.
type RuntimeOption func(*Runtime)

// WithStrict toggles strict mode.
func WithStrict(strict bool) RuntimeOption {
	return func(rt *Runtime) { rt.Strict = strict }
}

// WithWarnings sets the warning sink.
func WithWarnings(sink WarningSink) RuntimeOption {
	return func(rt *Runtime) { rt.Warnings = sink }
}

// WithEvents sets the event sink.
func WithEvents(sink EventSink) RuntimeOption {
	return func(rt *Runtime) { rt.Events = sink }
}

// NewRuntime builds a Runtime from the given options, starting from
// DefaultRuntime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := DefaultRuntime()
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// DescriptorOption configures a RecordDescriptor built by NewRecord or
// WithOverride.
type DescriptorOption func(*RecordDescriptor)

// WithDescriptorRuntime sets the Runtime a RecordDescriptor falls back
// to when Parse/Serialize are called with a nil Runtime.
func WithDescriptorRuntime(rt *Runtime) DescriptorOption {
	return func(d *RecordDescriptor) { d.runtime = rt }
}

// PeekBufferSize sets the dispatcher's peek-buffer capacity hint. The
// hint is stored only; Dispatcher.Read does not use it.
func PeekBufferSize(n int) DispatcherOption {
	return func(d *Dispatcher) { d.peekHint = n }
}
