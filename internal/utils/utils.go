package utils

import "strings"

func ToPtr[T any](t T) *T {
	return &t
}

func FromPtr[T any](t *T) T {
	var zero T
	if t == nil {
		return zero
	}
	return *t
}

// NilIfBlank trims s and returns nil when nothing is left. Optional text columns store NULL
// rather than an empty string.
func NilIfBlank(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// TrimPtr is NilIfBlank for a value that may be absent.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return NilIfBlank(*s)
}
