package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// operatorSignature describes the forms an operator name takes in a macro
// reference.
type operatorSignature struct {
	retrieval   string // description of $(X:name), if it exists
	replacement string // description of $(X:name=operand), if it exists
	operand     string // operand placeholder
}

var operatorSignatures = map[string]operatorSignature{
	"quote":             {retrieval: "quote each item for a shell"},
	"upper":             {retrieval: "convert to upper case"},
	"lower":             {retrieval: "convert to lower case"},
	"identifier":        {retrieval: "mangle to a C identifier"},
	"rfc1034identifier": {retrieval: "mangle to an RFC 1034 host label"},
	"c99extidentifier":  {retrieval: "mangle to a C99 extended identifier"},
	"__md5":             {retrieval: "hex MD5 digest"},
	"__stripslash":      {retrieval: "remove trailing slashes"},
	"standardizepath":   {retrieval: "normalize an absolute path"},
	"not":               {retrieval: "negate a boolean (YES or NO)"},
	"dir": {
		retrieval:   "directory part of a path",
		replacement: "replace the directory part",
		operand:     "dir",
	},
	"file": {
		retrieval:   "last path component",
		replacement: "replace the last path component",
		operand:     "file",
	},
	"base": {
		retrieval:   "last path component without its suffix",
		replacement: "replace the base name, keeping the suffix",
		operand:     "base",
	},
	"suffix": {
		retrieval:   "suffix of the last path component",
		replacement: "replace the suffix",
		operand:     ".ext",
	},
	"default": {
		replacement: "use the operand when the value is empty",
		operand:     "value",
	},
	"relativeto": {
		replacement: "path of the operand relative to the value",
		operand:     "path",
	},
	"isancestor": {
		replacement: "YES if the operand is an ancestor of the value",
		operand:     "path",
	},
}

// Styles for operator hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// operatorAt represents the operator under the cursor.
type operatorAt struct {
	name    string // operator name typed so far
	operand bool   // cursor is past the '='
	ok      bool   // cursor is inside an operator of a macro reference
}

// detectOperator reports the operator of the innermost unclosed macro
// reference containing the cursor.
func detectOperator(input string, cursor int) operatorAt {
	cursor = min(cursor, len(input))

	type frame struct {
		closer     byte
		colon, equ int
	}

	var stack []frame

	for i := 0; i < cursor; i++ {
		c := input[i]

		switch {
		case c == '$' && i+1 < cursor && strings.IndexByte("({[", input[i+1]) >= 0:
			stack = append(stack, frame{closer: closerOf(input[i+1]), colon: -1, equ: -1})
			i++

		case len(stack) == 0:

		case c == stack[len(stack)-1].closer:
			stack = stack[:len(stack)-1]

		case c == ':':
			stack[len(stack)-1].colon, stack[len(stack)-1].equ = i, -1

		case c == '=' && stack[len(stack)-1].colon >= 0 && stack[len(stack)-1].equ < 0:
			stack[len(stack)-1].equ = i
		}
	}

	if len(stack) == 0 || stack[len(stack)-1].colon < 0 {
		return operatorAt{}
	}

	top := stack[len(stack)-1]

	end := cursor
	if top.equ >= 0 {
		end = top.equ
	}

	return operatorAt{
		name:    input[top.colon+1 : end],
		operand: top.equ >= 0,
		ok:      true,
	}
}

func closerOf(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '{':
		return '}'
	default:
		return ']'
	}
}

// renderOperatorHint renders the forms of the named operator, highlighting
// the operand when the cursor is past the '='. It returns "" for unknown
// operators.
func renderOperatorHint(op operatorAt) string {
	sig, ok := operatorSignatures[op.name]
	if !ok {
		return ""
	}

	var forms []string

	if sig.retrieval != "" && !op.operand {
		forms = append(forms, signatureNameStyle.Render(op.name)+
			signatureStyle.Render("  "+sig.retrieval))
	}

	if sig.replacement != "" {
		operand := signatureStyle.Render("<" + sig.operand + ">")
		if op.operand {
			operand = currentParamStyle.Render("<" + sig.operand + ">")
		}

		forms = append(forms, signatureNameStyle.Render(op.name)+
			signatureStyle.Render("=")+operand+
			signatureStyle.Render("  "+sig.replacement))
	}

	return strings.Join(forms, signatureStyle.Render("  |  "))
}
