package binproto

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestArrayDefaulting exercises §8's array defaulting property: for a
// fixed array of length N with an inner default d, serialize([]) equals
// serialize([d]*N).
func TestArrayDefaulting(t *testing.T) {
	elem := NewScalar(U8, Default(uint8(7)))
	arr := NewArray(Fixed(3), elem)
	rt := DefaultRuntime()

	got, err := arr.Serialize([]any{}, nil, rt)
	if err != nil {
		t.Fatalf("serialize empty: %v", err)
	}
	want, err := arr.Serialize([]any{uint8(7), uint8(7), uint8(7)}, nil, rt)
	if err != nil {
		t.Fatalf("serialize filled: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("array defaulting mismatch (-want +got):\n%s", diff)
	}
}

func TestArraySerializeTooShortWithoutDefaultErrors(t *testing.T) {
	arr := NewArray(Fixed(3), NewScalar(U8))
	_, err := arr.Serialize([]any{uint8(1)}, nil, DefaultRuntime())
	if err == nil {
		t.Fatal("expected an error for a short array with no default")
	}
}

func TestArraySerializeTooLongWarnsAndTruncates(t *testing.T) {
	var collected CollectingWarnings
	rt := NewRuntime(WithWarnings(&collected))
	arr := NewArray(Fixed(2), NewScalar(U8))

	got, err := arr.Serialize([]any{uint8(1), uint8(2), uint8(3)}, nil, rt)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2}, got); diff != "" {
		t.Errorf("truncated array mismatch (-want +got):\n%s", diff)
	}
	if len(collected.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(collected.Warnings))
	}
}

func TestArrayParseRoundTrip(t *testing.T) {
	arr := NewArray(Fixed(4), NewScalar(I16))
	rt := DefaultRuntime()
	vals := []any{int16(1), int16(-2), int16(3), int16(-4)}

	b, err := arr.Serialize(vals, nil, rt)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := arr.Parse(byteReader(b), nil, rt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(vals, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAutosizedArrayRejected(t *testing.T) {
	arr := NewArray(Autosized, NewScalar(U8))
	if _, err := arr.Sizeof(nil); err == nil {
		t.Fatal("expected AUTOSIZED array to be rejected")
	}
}
