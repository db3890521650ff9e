package failreport

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// toUTF8 returns s unchanged when it is valid UTF-8 and otherwise decodes it
// as Windows-1252. Text that is already UTF-8 is never converted twice.
func toUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return out
}

// xmlText prepares s for embedding in an XML document: UTF-8, with
// characters XML 1.0 cannot carry replaced by U+FFFD.
func xmlText(s string) string {
	s = toUTF8(s)
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return '\uFFFD'
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// baseName is filepath.Base without the "." result for empty paths.
func baseName(file string) string {
	if file == "" {
		return ""
	}
	return filepath.Base(file)
}

func dirName(file string) string {
	if file == "" {
		return ""
	}
	return filepath.Dir(file)
}
