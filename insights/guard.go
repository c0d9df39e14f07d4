package insights

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnsafeSQL marks a statement the runner refuses to execute.
var ErrUnsafeSQL = errors.New("only a single read-only SELECT statement is allowed")

var (
	leadingKeyword = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	writeKeyword   = regexp.MustCompile(`(?i)\b(insert|update|delete|merge|drop|alter|create|truncate|grant|revoke|copy|call|do|lock|vacuum|analyze|reindex|cluster|refresh|listen|notify|set|reset|into|pg_sleep|pg_read_file|pg_terminate_backend|dblink)\b`)
)

// CheckReadOnly normalizes a model-produced statement and rejects anything
// other than one SELECT (or WITH ... SELECT). The read-only transaction the
// runner opens is the real enforcement; this catches obvious mistakes early.
func CheckReadOnly(stmt string) (string, error) {
	s := strings.TrimSpace(stmt)
	s = strings.TrimSpace(strings.TrimRight(s, "; \n\t"))
	if s == "" {
		return "", ErrUnsafeSQL
	}
	if strings.Contains(s, ";") || strings.Contains(s, "--") || strings.Contains(s, "/*") {
		return "", ErrUnsafeSQL
	}
	if !leadingKeyword.MatchString(s) {
		return "", ErrUnsafeSQL
	}
	if writeKeyword.MatchString(stripLiterals(s)) {
		return "", ErrUnsafeSQL
	}
	return s, nil
}

// stripLiterals blanks out quoted strings so values like 'Update party'
// do not trip the keyword check.
func stripLiterals(s string) string {
	var b strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(' ')
		case inQuote:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
