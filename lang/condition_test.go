package lang

import "testing"

func TestFnmatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"", "", true},
		{"", "a", false},
		{"*", "", true},
		{"*", "anything/at/all", true},
		{"iphoneos*", "iphoneos17.0", true},
		{"iphoneos*", "iphonesimulator", false},
		{"*os", "macos", true},
		{"*os*", "iphoneos17", true},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "axxbyy", false},
		{"?", "a", true},
		{"?", "", false},
		{"a?c", "abc", true},
		{"[abc]", "b", true},
		{"[abc]", "d", false},
		{"[a-c]x", "bx", true},
		{"[!a-c]", "d", true},
		{"[^a-c]", "b", false},
		{"[]]", "]", true},
		{"[", "[", true},
		{`\*`, "*", true},
		{`\*`, "a", false},
		{"x86_64", "x86_64", true},
		{"arm64*", "arm64e", true},
		{"a/*", "a/b/c", true},
	}

	for _, tt := range tests {
		if got := Fnmatch(tt.pattern, tt.input); got != tt.match {
			t.Errorf("Fnmatch(%q, %q): expected %t, got %t", tt.pattern, tt.input, tt.match, got)
		}
	}
}

func TestConditionSet(t *testing.T) {
	ns := NewNamespace(nil, "test")
	sdk := ns.DeclareParameter("sdk")
	arch := ns.DeclareParameter("arch")

	set := NewConditionSet(
		Condition{Parameter: sdk, Pattern: "macosx*"},
		Condition{Parameter: arch, Pattern: "arm64"},
	)

	if got := set.String(); got != "[sdk=macosx*][arch=arm64]" {
		t.Errorf("expected %q, got %q", "[sdk=macosx*][arch=arm64]", got)
	}

	if !set.Evaluate(map[*Parameter][]string{sdk: {"macosx14"}, arch: {"arm64"}}) {
		t.Error("expected set to match")
	}

	if set.Evaluate(map[*Parameter][]string{sdk: {"macosx14"}}) {
		t.Error("expected set not to match with arch unbound")
	}

	if c, ok := set.Get(arch); !ok || c.Pattern != "arm64" {
		t.Errorf("expected arch condition, got %v (found=%t)", c, ok)
	}

	rest := set.Without(arch)
	if !rest.Equal(NewConditionSet(Condition{Parameter: sdk, Pattern: "macosx*"})) {
		t.Errorf("expected only the sdk condition, got %v", rest)
	}

	if got := rest.Without(sdk); got != nil {
		t.Errorf("expected nil set, got %v", got)
	}

	if NewConditionSet() != nil {
		t.Error("expected empty condition set to be nil")
	}

	var empty ConditionSet
	if !empty.Evaluate(nil) {
		t.Error("expected empty set to match")
	}
}

func TestCondition_Match(t *testing.T) {
	ns := NewNamespace(nil, "test")
	p := ns.DeclareParameter("config")

	wild := Condition{Parameter: p, Pattern: "*"}
	debug := Condition{Parameter: p, Pattern: "Debug"}

	if !wild.Match(nil) {
		t.Error("expected * to match an unbound parameter")
	}

	if debug.Match(nil) {
		t.Error("expected Debug not to match an unbound parameter")
	}

	if wild.Match(map[*Parameter][]string{p: {}}) {
		t.Error("expected * not to match a parameter bound to no values")
	}

	if !debug.Match(map[*Parameter][]string{p: {"Release", "Debug"}}) {
		t.Error("expected Debug to match any bound value")
	}
}
