package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename
// fragment. Slashes, backslashes, colons, and asterisks become dashes; other
// unsafe characters are removed. Whitespace of any width is dropped so the
// fragment can sit between underscores of a canonical name.
func SanitizeFileName(name string) string {
	name = StripSpace(name)
	if name == "" {
		return ""
	}
	return fileNameReplacer.Replace(name)
}
