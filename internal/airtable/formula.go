package airtable

import (
	"fmt"
	"strings"
)

// Helpers for the small filterByFormula grammar this service emits:
// field equality, membership in a linked-record list, and AND/OR of those.

// FieldEquals builds {Field}='value'.
func FieldEquals(field, value string) string {
	return fmt.Sprintf("{%s}=%s", field, quote(value))
}

// ListContains builds SEARCH('value', ARRAYJOIN({Field})), the reverse-lookup
// idiom for "this linked-record list contains the given record ID".
func ListContains(field, value string) string {
	return fmt.Sprintf("SEARCH(%s, ARRAYJOIN({%s}))", quote(value), field)
}

func And(clauses ...string) string {
	return fmt.Sprintf("AND(%s)", strings.Join(clauses, ", "))
}

func Or(clauses ...string) string {
	return fmt.Sprintf("OR(%s)", strings.Join(clauses, ", "))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
