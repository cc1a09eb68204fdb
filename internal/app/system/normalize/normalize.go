// Package normalize provides helper functions for consistent string
// normalization across the application. Use these helpers instead of
// scattered strings.ToLower and strings.TrimSpace calls to ensure
// consistent behavior.
package normalize

import "strings"

// Email normalizes an email address by trimming whitespace and
// converting to lowercase. This is the canonical way to normalize
// teacher emails before storage or comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FolderName normalizes a folder name by trimming whitespace only.
// Folder names stay case-sensitive: "Unit 1" and "unit 1" are
// different folders.
func FolderName(s string) string {
	return strings.TrimSpace(s)
}

// Role normalizes a share role value by trimming whitespace and
// converting to lowercase.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Kind normalizes an asset kind value by trimming whitespace and
// converting to lowercase.
func Kind(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
