package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameLength caps stored file names, in characters.
const MaxFileNameLength = 255

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps only the final path element of a client-supplied name (browsers
// may send "C:\fakepath\cv.pdf"), drops control characters and caps the length while
// preserving the extension.
func SanitizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(name) > MaxFileNameLength {
		ext := filepath.Ext(name)
		if utf8.RuneCountInString(ext) >= MaxFileNameLength {
			return "", ErrInvalidFileName
		}
		stem := []rune(strings.TrimSuffix(name, ext))
		name = string(stem[:MaxFileNameLength-utf8.RuneCountInString(ext)]) + ext
	}
	return name, nil
}
