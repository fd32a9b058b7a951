package lang

import "testing"

func TestStatistics_Sub(t *testing.T) {
	before := Stats()
	ParseString("$(A)")
	ParseString("b")
	delta := Stats().Sub(before)
	if delta.ParsedStrings < 2 {
		t.Errorf("expected at least 2 parsed strings, got %d", delta.ParsedStrings)
	}
	if delta.ParsedLists < 0 || delta.Evaluations < 0 {
		t.Errorf("expected non-negative deltas, got %+v", delta)
	}
}
