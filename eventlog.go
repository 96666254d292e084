package binproto

import (
	"os"

	"github.com/rs/zerolog"
)

// EventSink receives the six event kinds the core emits per §6 of the
// specification. The sink itself is an external collaborator: this
// library only defines what gets emitted and when, never where it ends
// up or how it is rotated/persisted. NewZerologSink always writes to
// os.Stderr; any other destination (e.g. a rotating file) takes an
// EventSink implementation of its own.
type EventSink interface {
	// RawReceived logs bytes the dispatcher could not match to any
	// known discriminator.
	RawReceived(b []byte)
	// RawSent logs raw bytes written back by a handler.
	RawSent(b []byte)
	// StructReceived logs a successfully decoded record.
	StructReceived(rv *RecordValue)
	// StructSent logs a record about to be serialized and written.
	StructSent(rv *RecordValue)
	// Error logs a framing/dispatch error with a human message.
	Error(msg string, err error)
	// Stack logs a recovered panic's trace from within a handler.
	Stack(msg string, trace []byte)
}

// zerologSink is the EventSink built by NewZerologSink (DefaultRuntime
// uses DiscardEvents, not this sink). It writes structured log lines
// via rs/zerolog, the logger already used elsewhere in this codebase's
// pack for application logging.
type zerologSink struct {
	log zerolog.Logger
}

// NewZerologSink builds an EventSink backed by rs/zerolog that writes
// console-formatted, timestamped lines to os.Stderr. The destination is
// not configurable.
func NewZerologSink() EventSink {
	return &zerologSink{
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger(),
	}
}

func (s *zerologSink) RawReceived(b []byte) {
	s.log.Debug().Hex("data", b).Msg("raw-received")
}

func (s *zerologSink) RawSent(b []byte) {
	s.log.Debug().Hex("data", b).Msg("raw-sent")
}

func (s *zerologSink) StructReceived(rv *RecordValue) {
	s.log.Debug().Str("record", rv.desc.name).Interface("fields", rv.snapshot()).Msg("struct-received")
}

func (s *zerologSink) StructSent(rv *RecordValue) {
	s.log.Debug().Str("record", rv.desc.name).Interface("fields", rv.snapshot()).Msg("struct-sent")
}

func (s *zerologSink) Error(msg string, err error) {
	s.log.Error().Err(err).Msg(msg)
}

func (s *zerologSink) Stack(msg string, trace []byte) {
	s.log.Error().Bytes("stack", trace).Msg(msg)
}

// discardSink is an EventSink that drops every event; useful in tests
// and as a safe zero value.
type discardSink struct{}

func (discardSink) RawReceived([]byte)             {}
func (discardSink) RawSent([]byte)                 {}
func (discardSink) StructReceived(*RecordValue)    {}
func (discardSink) StructSent(*RecordValue)        {}
func (discardSink) Error(string, error)            {}
func (discardSink) Stack(string, []byte)           {}

// DiscardEvents is the zero-cost EventSink.
var DiscardEvents EventSink = discardSink{}
