package errors

import (
	"strings"
	"unicode"
)

// maxPackageNameLen bounds names accepted from the command line and the HTTP API.
const maxPackageNameLen = 256

// ValidatePackageName validates a package name supplied by a caller before it
// is used as a catalog key.
//
// Cygwin package names are plain tokens (letters, digits, and punctuation such
// as "-", "_", ".", "+"), so anything with whitespace, control characters, or
// path separators cannot name a package.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > maxPackageNameLen {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLen)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains whitespace or control characters")
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidPackage, "package name contains path separators: %q", name)
	}

	return nil
}
