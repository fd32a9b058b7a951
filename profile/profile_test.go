package profile

import (
	"slices"
	"testing"
)

func TestModes(t *testing.T) {
	modes := slices.Collect(Modes())

	if !slices.IsSorted(modes) {
		t.Errorf("expected sorted modes, got %q", modes)
	}

	if slices.Contains(modes, "") {
		t.Error("expected no empty mode")
	}
}

func TestConfig_Start(t *testing.T) {
	tests := []Config{
		{},
		{Mode: "bogus", Path: t.TempDir(), Quiet: true},
	}

	for _, cfg := range tests {
		stop := cfg.Start()
		if stop == nil {
			t.Fatalf("%+v: expected a Stopper", cfg)
		}

		if _, ok := stop.(ignore); !ok {
			t.Errorf("%+v: expected a no-op Stopper, got %T", cfg, stop)
		}

		stop.Stop()
	}
}
