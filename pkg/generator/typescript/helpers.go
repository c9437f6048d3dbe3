package typescript

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

// reservedTypeNames cannot name an interface or a type alias.
var reservedTypeNames = map[string]struct{}{
	"any": {}, "bigint": {}, "boolean": {}, "never": {}, "null": {}, "number": {},
	"object": {}, "string": {}, "symbol": {}, "undefined": {}, "unknown": {}, "void": {},
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "return": {},
	"super": {}, "switch": {}, "this": {}, "throw": {}, "true": {}, "try": {},
	"typeof": {}, "var": {}, "while": {}, "with": {},
}

// tsIdentifier maps a definition name onto a TypeScript type name.
func tsIdentifier(name string) string {
	id := utils.SanitizeIdentifier(name)
	if _, reserved := reservedTypeNames[id]; reserved {
		return id + "_"
	}
	return id
}

// quoteTSPropertyName quotes TypeScript property names that contain special characters
func quoteTSPropertyName(name string) string {
	needsQuoting := name == ""
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_' || char == '$') {
			needsQuoting = true
			break
		}
	}
	// Also quote if the name starts with a number
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		needsQuoting = true
	}
	if needsQuoting {
		return stringLiteral(name)
	}
	return name
}

// literalType renders a normalized scalar as a TS literal type.
func literalType(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return stringLiteral(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "unknown"
}

// stringLiteral quotes s with JSON escaping, which TS string literals accept.
func stringLiteral(s string) string {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// jsonValue renders a default or example value for a doc comment.
func jsonValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}

// jsDoc renders a documentation comment from metadata, or nothing when there
// is nothing to say. Every line is prefixed with indent.
func jsDoc(meta *ir.IRMetadata, indent string) string {
	if meta.IsZero() {
		return ""
	}
	var lines []string
	if meta.Title != "" {
		lines = append(lines, meta.Title)
	}
	if meta.Description != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(strings.TrimRight(meta.Description, "\n"), "\n")...)
	}
	if meta.Deprecated {
		lines = append(lines, "@deprecated")
	}
	if meta.HasDefault {
		lines = append(lines, "@default "+jsonValue(meta.Default))
	}
	for _, ex := range meta.Examples {
		lines = append(lines, "@example "+jsonValue(ex))
	}
	if len(lines) == 0 {
		// only readOnly/writeOnly were set
		return ""
	}
	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, l := range lines {
		l = strings.ReplaceAll(l, "*/", "*\\/")
		if l == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + l + "\n")
	}
	b.WriteString(indent + " */\n")
	return b.String()
}
