package stack

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxProjectNameLen = 64

// SlugifyProjectName converts a project name into a lowercase hyphen slug
// suitable as a directory and package name.
//   - input is NFC-normalized first so composed and decomposed spellings
//     of the same name produce the same slug
//   - allowed: [a-z0-9-]; whitespace/underscore => hyphen; other runes drop
//   - hyphens collapsed and trimmed, length capped
//
// Returns "my-app" for names that reduce to nothing.
func SlugifyProjectName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			b.WriteRune('-')
		}
	}

	slug := collapseHyphens(b.String())
	slug = strings.Trim(slug, "-")
	if len(slug) > maxProjectNameLen {
		slug = strings.Trim(collapseHyphens(slug[:maxProjectNameLen]), "-")
	}
	if slug == "" {
		return "my-app"
	}
	return slug
}

// ValidateProjectName rejects names that would slug to something other
// than themselves, so generated directories always match what the user
// typed.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	if slug := SlugifyProjectName(name); slug != name {
		return fmt.Errorf("invalid project name %q (did you mean %q?)", name, slug)
	}
	return nil
}

func collapseHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
