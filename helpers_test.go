package binproto

import (
	"bytes"
	"io"
)

// byteReader wraps a byte slice as an io.Reader, for tests that only
// need a one-shot, rewindable source of wire bytes.
func byteReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// readAll drains the remainder of r, for tests asserting on what a
// parse left unread.
func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
