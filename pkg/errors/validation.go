package errors

import (
	"strings"
	"unicode"
)

const (
	maxIDLength   = 256
	maxNameLength = 64
	maxPathLength = 500
)

// ValidateItemID validates a node or edge identifier from a scene file.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "item id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidScene, "item id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "item id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateName validates a feature or style name: a short identifier made of
// letters, digits, '.', '_' and '-'.
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s name too long (max %d characters)", kind, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			continue
		}
		return New(ErrCodeInvalidInput, "%s name %q contains invalid character %q", kind, name, r)
	}
	return nil
}

// ValidatePath validates an output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	if strings.ContainsFunc(path, func(r rune) bool { return r == '\x00' || unicode.IsControl(r) }) {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	return nil
}
