package binproto

import (
	"io"
	"strings"
	"testing"
)

func buildABDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	a, err := NewRecord("A", []Field{
		{Name: "code", Type: NewScalar(U8, Always(uint8(0x01)))},
		{Name: "payload", Type: NewScalar(U8)},
	})
	if err != nil {
		t.Fatalf("NewRecord A: %v", err)
	}
	b, err := NewRecord("B", []Field{
		{Name: "code", Type: NewByteString(Fixed(2), false, Always([]byte{0x02, 0x03}))},
		{Name: "payload", Type: NewScalar(U8)},
	})
	if err != nil {
		t.Fatalf("NewRecord B: %v", err)
	}
	d, err := NewDispatcher([]*RecordDescriptor{a, b})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

// TestDiscriminatorFraming exercises §8's discriminator framing
// property against a parser configured with {A (prefix 0x01), B
// (prefix 0x02 0x03)}.
func TestDiscriminatorFraming(t *testing.T) {
	d := buildABDispatcher(t)

	t.Run("matches B", func(t *testing.T) {
		r := byteReader([]byte{0x02, 0x03, 0x42})
		result, err := d.Read(r, nil)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if result.Record == nil || result.Record.Descriptor().Name() != "B" {
			t.Fatalf("got %+v, want a B record", result)
		}
	})

	t.Run("matches A", func(t *testing.T) {
		r := byteReader([]byte{0x01, 0x42})
		result, err := d.Read(r, nil)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if result.Record == nil || result.Record.Descriptor().Name() != "A" {
			t.Fatalf("got %+v, want an A record", result)
		}
	})

	t.Run("unknown discriminator returns raw bytes", func(t *testing.T) {
		r := byteReader([]byte{0x99, 0x42})
		result, err := d.Read(r, nil)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if result.Raw == nil || !strings.Contains(string(result.Raw), string([]byte{0x99, 0x42})) {
			t.Fatalf("got %+v, want raw bytes containing 0x99 0x42", result)
		}
	})
}

// TestDispatcherShortRead exercises §8's sixth scenario: a known
// discriminator followed by too few bytes is a logged error, not a
// returned record.
func TestDispatcherShortRead(t *testing.T) {
	point, err := NewRecord("NamedPoint", []Field{
		{Name: "code", Type: NewScalar(U16, Always(uint16(0x1234)))},
		{Name: "x", Type: NewScalar(I32)},
		{Name: "y", Type: NewScalar(I32)},
		{Name: "name", Type: NewByteString(Fixed(15), false, Default("unnamed"))},
	})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	d, err := NewDispatcher([]*RecordDescriptor{point})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	var gotMsg string
	events := &stubEventSink{onError: func(msg string, err error) { gotMsg = msg }}
	rt := NewRuntime(WithEvents(events))

	r := byteReader([]byte{0x12, 0x34, 0x00})
	result, err := d.Read(r, rt)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if result.Record != nil {
		t.Fatalf("expected no record, got %+v", result.Record)
	}
	if !strings.Contains(gotMsg, "received only") {
		t.Errorf("error message %q does not contain %q", gotMsg, "received only")
	}
}

func TestDispatcherNeedsAtLeastOneDiscriminator(t *testing.T) {
	d, err := NewRecord("NoDiscriminator", []Field{
		{Name: "x", Type: NewScalar(I32)},
	})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if _, err := NewDispatcher([]*RecordDescriptor{d}); err == nil {
		t.Fatal("expected dispatcher construction to fail with no discriminator")
	}
}

func TestDispatcherAmbiguousPrefixWarns(t *testing.T) {
	short, err := NewRecord("Short", []Field{
		{Name: "code", Type: NewScalar(U8, Always(uint8(0x01)))},
	})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	long, err := NewRecord("Long", []Field{
		{Name: "code", Type: NewByteString(Fixed(2), false, Always([]byte{0x01, 0x02}))},
	})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}

	var collected CollectingWarnings
	rt := NewRuntime(WithWarnings(&collected))
	if _, err := NewDispatcher([]*RecordDescriptor{short, long}, WithDispatcherRuntime(rt)); err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	if len(collected.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(collected.Warnings))
	}
}

func TestDispatcherReadReturnsEOFOnEmptyStream(t *testing.T) {
	d := buildABDispatcher(t)
	_, err := d.Read(byteReader(nil), nil)
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

type stubEventSink struct {
	onError func(msg string, err error)
}

func (s *stubEventSink) RawReceived([]byte)          {}
func (s *stubEventSink) RawSent([]byte)              {}
func (s *stubEventSink) StructReceived(*RecordValue) {}
func (s *stubEventSink) StructSent(*RecordValue)     {}
func (s *stubEventSink) Error(msg string, err error) {
	if s.onError != nil {
		s.onError(msg, err)
	}
}
func (s *stubEventSink) Stack(string, []byte) {}
