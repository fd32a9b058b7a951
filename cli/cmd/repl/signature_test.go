package repl

import (
	"strings"
	"testing"
)

func TestDetectOperator(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		cursor      int
		wantName    string
		wantOperand bool
		wantOK      bool
	}{
		{"no reference", "NAME", 4, "", false, false},
		{"reference without operator", "$(NAME", 6, "", false, false},
		{"empty operator", "$(NAME:", 7, "", false, true},
		{"partial operator", "$(NAME:up", 9, "up", false, true},
		{"operand", "$(NAME:suffix=.o", 16, "suffix", true, true},
		{"second operator", "$(NAME:upper:def", 16, "def", false, true},
		{"braced", "${NAME:lower", 12, "lower", false, true},
		{"closed reference", "$(NAME:upper) ", 14, "", false, false},
		{"nested reference in operand", "$(A:default=$(B:lo", 18, "lo", false, true},
		{"back in outer operand", "$(A:default=$(B) x", 18, "default", true, true},
		{"cursor before operator", "$(NAME:upper", 3, "", false, false},
		{"equals in operand", "$(A:default=a=b", 15, "default", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectOperator(tt.input, tt.cursor)
			if got.ok != tt.wantOK || got.name != tt.wantName || got.operand != tt.wantOperand {
				t.Errorf("detectOperator(%q, %d) = %+v, want {name:%s operand:%t ok:%t}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantOperand, tt.wantOK)
			}
		})
	}
}

func TestOperatorSignatures(t *testing.T) {
	for _, name := range operatorNames {
		sig, ok := operatorSignatures[name]
		if !ok {
			t.Errorf("missing description for operator %q", name)

			continue
		}

		if sig.replacement != "" && sig.operand == "" {
			t.Errorf("operator %q: replacement form without operand placeholder", name)
		}
	}
}

func TestRenderOperatorHint(t *testing.T) {
	if hint := renderOperatorHint(operatorAt{name: "bogus", ok: true}); hint != "" {
		t.Errorf("expected no hint for an unknown operator, got %q", hint)
	}

	hint := renderOperatorHint(operatorAt{name: "suffix", ok: true})
	if !strings.Contains(hint, "suffix of the last path component") ||
		!strings.Contains(hint, "replace the suffix") {
		t.Errorf("expected both forms, got %q", hint)
	}

	hint = renderOperatorHint(operatorAt{name: "suffix", operand: true, ok: true})
	if strings.Contains(hint, "suffix of the last path component") {
		t.Errorf("expected only the replacement form past '=', got %q", hint)
	}

	if hint := renderOperatorHint(operatorAt{name: "upper", operand: true, ok: true}); hint != "" {
		t.Errorf("expected no hint for an operand of a retrieval-only operator, got %q", hint)
	}
}
