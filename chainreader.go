package binproto

import "io"

// chainReader lets the dispatcher peek at a discriminator prefix, pick
// a matching RecordDescriptor, then replay exactly those peeked bytes
// followed by the rest of the underlying stream to that descriptor's
// Parse — so the bytes a discriminator match consumed are never lost
// (§4.4's "a chained reader preserves consumed bytes").
type chainReader struct {
	peeked []byte
	pos    int
	under  io.Reader
}

func newChainReader(peeked []byte, under io.Reader) *chainReader {
	return &chainReader{peeked: peeked, under: under}
}

func (c *chainReader) Read(p []byte) (int, error) {
	if c.pos < len(c.peeked) {
		n := copy(p, c.peeked[c.pos:])
		c.pos += n
		return n, nil
	}
	return c.under.Read(p)
}

