package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

func EscapeV2(input string) string {
	charsToEscape := 0

	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Split packs body lines into messages of at most limit bytes.
// The first message starts with header, the following ones with contHeader.
// Lines longer than the available space are cut on rune boundaries, never inside an escape.
func Split(header string, contHeader string, body string, limit int) []string {
	var messages []string
	var current strings.Builder

	current.WriteString(header)
	headerLength := current.Len()

	flush := func() {
		messages = append(messages, strings.TrimRight(current.String(), "\n"))
		current.Reset()
		current.WriteString(contHeader)
		headerLength = current.Len()
	}

	for _, line := range strings.Split(body, "\n") {
		piece := line + "\n"

		if current.Len()+len(piece) > limit && current.Len() > headerLength {
			flush()
		}

		for current.Len()+len(piece) > limit {
			room := limit - current.Len()
			cut := cutPoint(piece, room)
			if cut == 0 {
				// The header alone fills the message; nothing can be placed.
				return messages
			}

			current.WriteString(piece[:cut])
			piece = piece[cut:]
			flush()
		}

		current.WriteString(piece)
	}

	if current.Len() > headerLength {
		messages = append(messages, strings.TrimRight(current.String(), "\n"))
	}

	return messages
}

// cutPoint returns the largest prefix length of s that fits in room bytes,
// ends on a rune boundary and does not split a backslash escape.
func cutPoint(s string, room int) int {
	if room <= 0 {
		return 0
	}
	if room >= len(s) {
		return len(s)
	}

	cut := room
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	backslashes := 0
	for i := cut - 1; i >= 0 && s[i] == '\\'; i-- {
		backslashes++
	}
	if backslashes%2 == 1 {
		cut--
	}

	return cut
}
