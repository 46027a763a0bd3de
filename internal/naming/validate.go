package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest canonical name accepted, counted in characters.
const MaxNameLength = 255

var (
	ErrEmptyName        = errors.New("file name is empty")
	ErrIllegalCharacter = errors.New("file name contains an illegal character")
	ErrNameTooLong      = errors.New("file name is too long")
	ErrExtension        = errors.New("file name has an unsupported extension")
)

const illegalChars = `<>:"|?*/\`

// ValidateName checks that name is safe to create in the target folder: no
// reserved or control characters, no path separators, at most MaxNameLength
// characters, and a .pdf or .csv extension.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: invalid UTF-8", ErrIllegalCharacter)
	}
	for _, r := range name {
		if strings.ContainsRune(illegalChars, r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q", ErrIllegalCharacter, r)
		}
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrNameTooLong, n, MaxNameLength)
	}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case extPDF, extCSV:
	default:
		return fmt.Errorf("%w: %q", ErrExtension, ext)
	}
	return nil
}
