package scoring

import "strings"

// Normalize lowercases text and collapses every whitespace run (spaces,
// tabs, newlines) into a single space, trimming the ends. Pattern matching
// downstream assumes text in this form. Normalizing already-normalized text
// is a no-op.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
