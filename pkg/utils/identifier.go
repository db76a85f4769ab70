package utils

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// QuoteIdentifier quotes every dot-separated part of name with q. Parts that are
// already wrapped in q are left as they are, so the function is idempotent.
//
// Example:
//
//	QuoteIdentifier("users", '"')          // "users"
//	QuoteIdentifier("app.users", '`')      // `app`.`users`
//	QuoteIdentifier(`"app".users`, '"')    // "app"."users"
func QuoteIdentifier(name string, q byte) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if IsQuoted(part, q) {
			continue
		}
		parts[i] = string(q) + part + string(q)
	}

	return strings.Join(parts, ".")
}

// BacktickIdentifier quotes name for MySQL and ClickHouse.
func BacktickIdentifier(name string) string {
	return QuoteIdentifier(name, '`')
}

// IsQuoted reports whether s is a single identifier wrapped in q.
func IsQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q && !strings.ContainsRune(s[1:len(s)-1], rune(q))
}

// StripQuotes removes every occurrence of q from s.
func StripQuotes(s string, q byte) string {
	return strings.ReplaceAll(s, string(q), "")
}

// ValidIdentifier reports whether name is a plain identifier, optionally
// qualified by a single schema or database name. Quoted names, whitespace and
// punctuation are rejected.
//
// Example:
//
//	ValidIdentifier("schema_changelog")        // true
//	ValidIdentifier("public.schema_changelog") // true
//	ValidIdentifier("log; DROP TABLE users")   // false
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
