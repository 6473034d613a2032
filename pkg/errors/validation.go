package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds snapshot keys so they stay usable as file names,
// Redis keys and Mongo _id values.
const maxKeyLength = 128

// ValidateKey validates a snapshot key for safety.
// Keys become file names in the file store, so the rules are conservative:
//   - Key cannot be empty
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidKey, "key contains invalid characters")
		}
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidKey, "key cannot contain path separators")
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "key cannot contain path traversal sequences (..)")
	}
	if strings.HasPrefix(key, ".") {
		return New(ErrCodeInvalidKey, "key cannot start with a dot")
	}

	return nil
}
