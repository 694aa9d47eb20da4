// Package userdir derives per-user storage paths from free-form user
// identifiers such as email addresses.
package userdir

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultUserID is used when the identifier sanitizes to nothing.
const DefaultUserID = "default"

var (
	invalidChars       = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	invalidStrictChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	underscoreRuns     = regexp.MustCompile(`_+`)
)

// SanitizeUserID makes a user identifier safe for file paths. Invalid
// characters become underscores, runs collapse, and leading or trailing
// underscores are trimmed. An identifier with nothing left falls back
// to DefaultUserID.
func SanitizeUserID(id string) string {
	sanitized := invalidChars.ReplaceAllString(id, "_")
	sanitized = underscoreRuns.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		return DefaultUserID
	}
	return sanitized
}

// UsersRoot returns the directory holding all per-user data directories.
func UsersRoot(base string) string {
	return filepath.Join(base, "users")
}

// DataDir returns the per-user data directory under base.
func DataDir(base, userID string) string {
	return filepath.Join(UsersRoot(base), SanitizeUserID(userID))
}

// VectorStoreDir returns the per-user directory for a named vector
// store collection.
func VectorStoreDir(base, userID, collection string) string {
	return filepath.Join(DataDir(base, userID), "vector_store_"+SanitizeUserID(collection))
}

// CollectionName returns a per-user collection name for remote vector
// stores. Remote backends are stricter than the filesystem, so hyphens
// are replaced as well.
func CollectionName(base, userID string) string {
	sanitized := invalidStrictChars.ReplaceAllString(SanitizeUserID(userID), "_")
	sanitized = underscoreRuns.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = DefaultUserID
	}
	return base + "_" + sanitized
}
