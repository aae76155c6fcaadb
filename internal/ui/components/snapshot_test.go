package components_test

import (
	"testing"

	"studydesk/internal/ui/components"
)

func TestWriteThroughCoalescesEditsWhileInFlight(t *testing.T) {
	t.Parallel()
	var w components.WriteThrough
	if !w.Changed("1") {
		t.Fatalf("first edit should be written")
	}
	if w.Changed("12") || w.Changed("123") {
		t.Fatalf("edits during a write must wait")
	}
	if !w.Done("123") {
		t.Fatalf("latest value should be written after the first finishes")
	}
	if w.Done("123") {
		t.Fatalf("nothing left to write")
	}
	if !w.Changed("1234") {
		t.Fatalf("idle field should write immediately")
	}
}
