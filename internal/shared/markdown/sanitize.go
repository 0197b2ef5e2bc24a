// Package markdown prepares user text for Telegram's legacy Markdown parse mode.
package markdown

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// CaptionLimit is the maximum caption length Telegram accepts for media,
	// in UTF-16 code units.
	CaptionLimit = 1024
	// TextLimit is the maximum length of a Telegram text message.
	TextLimit = 4096
)

// Sanitizer defuses unpaired occurrences of a single paired delimiter.
type Sanitizer struct {
	Delimiter rune
	Escape    rune
}

// Bold is the sanitizer for Telegram legacy Markdown bold markers.
var Bold = Sanitizer{Delimiter: '*', Escape: '\\'}

// Sanitize runs the Bold sanitizer over text.
func Sanitize(text string) string {
	return Bold.Sanitize(text)
}

// Sanitize scans text left to right. A delimiter that is followed later by a
// second delimiter with a non-empty interior is copied verbatim together with
// its partner; any other delimiter is prefixed with the escape rune. The output
// never contains an unpaired delimiter.
func (s Sanitizer) Sanitize(text string) string {
	if !strings.ContainsRune(text, s.Delimiter) {
		return text
	}

	delim := string(s.Delimiter)
	size := len(delim)

	var b strings.Builder
	b.Grow(len(text) + 8)

	for i := 0; i < len(text); {
		r, n := utf8.DecodeRuneInString(text[i:])
		if r != s.Delimiter {
			b.WriteString(text[i : i+n])
			i += n
			continue
		}

		// The next delimiter is the only candidate partner, so an interior
		// can never contain a nested delimiter.
		if j := strings.Index(text[i+size:], delim); j > 0 {
			end := i + size + j + size
			b.WriteString(text[i:end])
			i = end
			continue
		}

		b.WriteRune(s.Escape)
		b.WriteRune(r)
		i += size
	}

	return b.String()
}

// Truncate cuts text to at most limit UTF-16 code units, the unit Telegram
// counts message and caption length in. A rune is never split.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return text[:i]
		}
		units += n
	}
	return text
}

// Caption prepares text for use as a media caption.
func Caption(text string) string {
	return Sanitize(Truncate(text, CaptionLimit))
}

// Message prepares text for use as a text message body.
func Message(text string) string {
	return Sanitize(Truncate(text, TextLimit))
}
