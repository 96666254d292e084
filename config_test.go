package binproto

import "testing"

func TestStrictModePromotesWarningToError(t *testing.T) {
	rt := NewRuntime(WithStrict(true))
	err := rt.warn("Rec", "field", "overran")
	if err == nil {
		t.Fatal("expected strict mode to promote the warning to an error")
	}
	if _, ok := err.(*FramingError); !ok {
		t.Errorf("got %T, want *FramingError", err)
	}
}

func TestNonStrictModeCollectsWarning(t *testing.T) {
	var collected CollectingWarnings
	rt := NewRuntime(WithWarnings(&collected))
	if err := rt.warn("Rec", "field", "overran"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(collected.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(collected.Warnings))
	}
}

func TestDescriptorFallsBackToItsConfiguredRuntime(t *testing.T) {
	var collected CollectingWarnings
	rt := NewRuntime(WithStrict(true), WithWarnings(&collected))

	d, err := NewRecord("Rec", []Field{
		{Name: "x", Type: NewScalar(U8, Always(uint8(2)))},
	}, WithDescriptorRuntime(rt))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}

	rv := newRecordValue(d)
	rv.unsafeBind("x", uint8(1))
	// Serializing with a nil per-call Runtime should still pick up the
	// descriptor's own strict-mode Runtime, so the always mismatch on x
	// is promoted to an error instead of being collected as a warning.
	_, err = d.Serialize(rv, nil)
	if err == nil {
		t.Fatalf("expected the descriptor's strict-mode runtime to reject the always mismatch; %d warnings collected", len(collected.Warnings))
	}
}
