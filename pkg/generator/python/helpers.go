package python

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/typegen/pkg/utils"
)

var pyKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true, "assert": true,
	"async": true, "await": true, "break": true, "class": true, "continue": true,
	"def": true, "del": true, "elif": true, "else": true, "except": true,
	"finally": true, "for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true, "nonlocal": true,
	"not": true, "or": true, "pass": true, "raise": true, "return": true,
	"try": true, "while": true, "with": true, "yield": true,
}

// typingNames are the names the module imports from typing; definitions may
// not shadow them.
var typingNames = map[string]bool{
	"Any": true, "Dict": true, "List": true, "Literal": true, "NotRequired": true,
	"Optional": true, "TypeAlias": true, "TypedDict": true, "Union": true,
}

// pyIdentifier maps a definition name onto a Python class or alias name.
func pyIdentifier(name string) string {
	id := utils.SanitizeIdentifier(name)
	if pyKeywords[id] || typingNames[id] {
		return id + "_"
	}
	return id
}

// isPyName reports whether key can be a TypedDict field in class syntax.
func isPyName(key string) bool {
	return utils.IsIdentifier(key) && !pyKeywords[key]
}

// pyLiteral renders a normalized scalar as a Python expression.
func pyLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return pyString(x)
	}
	return "None"
}

// pyString renders s as a double-quoted Python string. JSON string escapes
// are a subset of Python's.
func pyString(s string) string {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// formatDocstring renders s as a docstring at the given indent
func formatDocstring(s, indent string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"""`, `\"\"\"`)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) == 1 {
		return indent + `"""` + strings.TrimSpace(lines[0]) + `"""` + "\n"
	}
	var b strings.Builder
	b.WriteString(indent + `"""` + "\n")
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			b.WriteString(indent + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + `"""` + "\n")
	return b.String()
}

// formatPythonComment formats a string as a Python raw string docstring for property descriptions
func formatPythonComment(s string) string {
	if s == "" {
		return ""
	}

	// Escape any existing triple quotes to prevent breaking the docstring
	escaped := strings.ReplaceAll(s, `"""`, `\"\"\"`)
	// a raw string cannot end in a backslash
	if strings.HasSuffix(escaped, `\`) {
		escaped += " "
	}
	return "r\"\"\"" + escaped + "\"\"\""
}

// formatComment renders s as `#` comment lines at the given indent.
func formatComment(s, indent string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if line = strings.TrimSpace(line); line == "" {
			b.WriteString(indent + "#\n")
		} else {
			b.WriteString(indent + "# " + line + "\n")
		}
	}
	return b.String()
}
