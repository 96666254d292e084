package binproto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// dispatchCandidate pairs a RecordDescriptor with the serialized bytes
// of its first field's always value — the discriminator prefix that
// identifies it on the wire (§4.4).
type dispatchCandidate struct {
	desc   *RecordDescriptor
	prefix []byte
}

// Dispatcher identifies incoming records by a leading constant prefix
// and decodes them, per §4.4. Build one with NewDispatcher.
type Dispatcher struct {
	candidates []dispatchCandidate
	peekHint   int
	runtime    *Runtime
}

// DispatcherOption configures a Dispatcher built by NewDispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherRuntime sets the Runtime the dispatcher falls back to
// when Read is called with a nil Runtime.
func WithDispatcherRuntime(rt *Runtime) DispatcherOption {
	return func(d *Dispatcher) { d.runtime = rt }
}

// NewDispatcher builds a Dispatcher over candidates; a candidate's
// discriminator is its always-valued first field, and candidates
// without one are skipped. Candidates are sorted
// shortest-discriminator-first (§4.4). Construction fails if no
// candidate has a discriminator; a warning is raised (not an error) if
// one candidate's discriminator is a byte-for-byte prefix of another's,
// since that only makes framing ambiguous, it does not make it
// impossible (the shorter one always wins, per the read algorithm's
// length ordering).
func NewDispatcher(candidates []*RecordDescriptor, opts ...DispatcherOption) (*Dispatcher, error) {
	d := &Dispatcher{peekHint: DefaultPeekBufferSize}
	for _, opt := range opts {
		opt(d)
	}
	rt := d.runtime.orDefault()

	for _, desc := range candidates {
		fields := desc.Fields()
		if len(fields) == 0 {
			continue
		}
		always, ok := fields[0].Type.HasAlways()
		if !ok {
			continue
		}
		prefix, err := fields[0].Type.Serialize(always, nil, rt)
		if err != nil {
			return nil, newDescriptorError(desc.Name(), fields[0].Name, "cannot compute discriminator: %v", err)
		}
		d.candidates = append(d.candidates, dispatchCandidate{desc: desc, prefix: prefix})
	}
	if len(d.candidates) == 0 {
		return nil, newDescriptorError("", "", "dispatcher needs at least one candidate record with a discriminator")
	}

	sort.SliceStable(d.candidates, func(i, j int) bool {
		return len(d.candidates[i].prefix) < len(d.candidates[j].prefix)
	})

	for i, a := range d.candidates {
		for _, b := range d.candidates[i+1:] {
			if bytes.HasPrefix(b.prefix, a.prefix) {
				if err := rt.warn("", "", "discriminator of %s (% x) is a prefix of %s's (% x): ambiguous framing", a.desc.Name(), a.prefix, b.desc.Name(), b.prefix); err != nil {
					return nil, err
				}
			}
		}
	}

	return d, nil
}

// DispatchResult is the outcome of one Dispatcher.Read call: at most
// one of Record or Raw is non-nil. Both are nil when a matched
// discriminator's record failed to parse with a framing error (the
// "no record" outcome); when the stream ended with nothing read at all,
// Read returns a nil DispatchResult and io.EOF instead.
type DispatchResult struct {
	Record *RecordValue
	Raw    []byte
}

// Read implements §4.4's algorithm: grow a peek buffer candidate by
// candidate (shortest discriminator first), and on a match hand a
// chained reader — which replays the peeked bytes before continuing
// from r — to that candidate's Parse. A framing error against a
// matched discriminator is logged via rt.Events.Error, with the number
// of bytes the record consumed, and reported as "no record" (a
// DispatchResult with both fields nil) rather than returned, since the
// bytes were already consumed and the stream may continue; any other
// error is returned. If no discriminator matches, the remainder of the
// stream is drained and returned as raw bytes. Read returns io.EOF only
// when the stream ended before any byte at all was read.
func (d *Dispatcher) Read(r io.Reader, rt *Runtime) (*DispatchResult, error) {
	rt = firstRuntime(rt, d.runtime).orDefault()

	var buf []byte
	for _, c := range d.candidates {
		filled, eof, err := fillTo(r, &buf, len(c.prefix))
		if err != nil {
			return nil, err
		}
		if !filled {
			if len(buf) == 0 && eof {
				return nil, io.EOF
			}
			break
		}
		if !bytes.Equal(buf[:len(c.prefix)], c.prefix) {
			continue
		}

		var consumed bytes.Buffer
		cr := newChainReader(buf, io.TeeReader(r, &consumed))
		rv, err := c.desc.Parse(cr, rt)
		if err != nil {
			var fe *FramingError
			if errors.As(err, &fe) {
				rt.Events.Error(fmt.Sprintf("record %s received only %d bytes", c.desc.Name(), len(buf)+consumed.Len()), err)
				return &DispatchResult{}, nil
			}
			return nil, err
		}
		return &DispatchResult{Record: rv}, nil
	}

	rest, _ := io.ReadAll(r)
	raw := append(buf, rest...)
	if len(raw) == 0 {
		return nil, io.EOF
	}
	rt.Events.RawReceived(raw)
	return &DispatchResult{Raw: raw}, nil
}

// fillTo grows *buf (by reading from r) until it has at least n bytes
// or r runs out. filled reports whether n bytes were reached; eof
// reports whether r returned EOF while trying.
func fillTo(r io.Reader, buf *[]byte, n int) (filled bool, eof bool, err error) {
	for len(*buf) < n {
		chunk := make([]byte, n-len(*buf))
		got, rerr := r.Read(chunk)
		if got > 0 {
			*buf = append(*buf, chunk[:got]...)
		}
		if rerr != nil {
			if rerr == io.EOF {
				return len(*buf) >= n, true, nil
			}
			return false, false, rerr
		}
		if got == 0 {
			return len(*buf) >= n, true, nil
		}
	}
	return true, false, nil
}

func firstRuntime(a, b *Runtime) *Runtime {
	if a != nil {
		return a
	}
	return b
}
