package golang

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/blimu-dev/typegen/pkg/ir"
	"github.com/blimu-dev/typegen/pkg/utils"
)

var toPascalCase = utils.ToPascalCase

var invalidPackageChars = regexp.MustCompile(`[^a-z0-9_]`)

// goTypeName maps a definition name onto an exported Go identifier.
func goTypeName(name string) string {
	id := toPascalCase(name)
	if id == "" {
		return "Type" + utils.SanitizeIdentifier(name)
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "T" + id
	}
	return id
}

// goFieldName maps a JSON property name onto an exported field name.
func goFieldName(name string) string {
	id := toPascalCase(name)
	if id == "" {
		return "Field"
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "F" + id
	}
	return id
}

// formatGoComment formats a string as a proper Go comment, handling multiline descriptions
func formatGoComment(s string) string {
	if s == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			result = append(result, "//")
		} else {
			result = append(result, "// "+line)
		}
	}
	return strings.Join(result, "\n")
}

// docComment renders the comment placed above a declaration or field, or
// nothing. Every line starts with indent.
func docComment(meta *ir.IRMetadata, extra []string, indent string) string {
	var parts []string
	if meta != nil {
		if meta.Title != "" {
			parts = append(parts, meta.Title)
		}
		if meta.Description != "" {
			parts = append(parts, meta.Description)
		}
	}
	parts = append(parts, extra...)
	if meta != nil && meta.Deprecated {
		parts = append(parts, "Deprecated: do not use.")
	}
	if len(parts) == 0 {
		return ""
	}
	text := formatGoComment(strings.Join(parts, "\n\n"))
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(indent + line + "\n")
	}
	return b.String()
}

// goLiteral renders a normalized scalar as Go source.
func goLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "nil"
}

// sanitizePackageName ensures the package name is valid for Go
func sanitizePackageName(name string) string {
	// Extract the last part of the package name if it looks like a module path
	parts := strings.Split(name, "/")
	if len(parts) > 0 {
		name = parts[len(parts)-1]
	}

	name = strings.ToLower(utils.RemoveAccents(name))
	name = invalidPackageChars.ReplaceAllString(name, "")

	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "pkg" + name
	}
	if name == "" {
		name = "types"
	}
	return name
}
