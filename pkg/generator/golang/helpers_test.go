package golang

import (
	"testing"
)

func TestGoTypeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pet", "Pet"},
		{"pet_store", "PetStore"},
		{"pet-store", "PetStore"},
		{"XMLHttpRequest", "XmlHttpRequest"},
		{"2fa", "T2fa"},
		{"cobrança", "Cobranca"},
		{"--", "Type__"},
	}

	for _, test := range tests {
		result := goTypeName(test.input)
		if result != test.expected {
			t.Errorf("goTypeName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestGoFieldName(t *testing.T) {
	tests := map[string]string{
		"id":         "Id",
		"created_at": "CreatedAt",
		"x-rate":     "XRate",
		"2fa":        "F2fa",
		"$":          "Field",
	}
	for in, want := range tests {
		if got := goFieldName(in); got != want {
			t.Errorf("goFieldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizePackageName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "types"},
		{"github.com/acme/petstore", "petstore"},
		{"Pet-Store", "petstore"},
		{"9lives", "pkg9lives"},
		{"ação", "acao"},
	}
	for _, test := range tests {
		if got := sanitizePackageName(test.input); got != test.expected {
			t.Errorf("sanitizePackageName(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestFormatGoComment(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"A pet.", "// A pet."},
		{"First line.\n\n  Second line.  \n", "// First line.\n//\n// Second line."},
	}
	for _, test := range tests {
		if got := formatGoComment(test.input); got != test.expected {
			t.Errorf("formatGoComment(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestGoLiteral(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{"a\"b", `"a\"b"`},
		{true, "true"},
		{int64(-3), "-3"},
		{1.5, "1.5"},
		{nil, "nil"},
	}
	for _, test := range tests {
		if got := goLiteral(test.input); got != test.expected {
			t.Errorf("goLiteral(%v) = %s, expected %s", test.input, got, test.expected)
		}
	}
}
