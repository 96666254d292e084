package binproto

import (
	"bytes"
	"io"
	"testing"
)

func TestChainReaderReplaysPeekedBytesThenUnderlying(t *testing.T) {
	under := bytes.NewReader([]byte("world"))
	cr := newChainReader([]byte("hello"), under)

	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "helloworld" {
		t.Errorf("got %q, want %q", got, "helloworld")
	}
}

func TestChainReaderReplaysShortPeekedPrefix(t *testing.T) {
	under := bytes.NewReader([]byte("cd"))
	cr := newChainReader([]byte("ab"), under)

	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}
