package normalization

import (
	"strings"
	"unicode"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// StripPunctuation keeps letters, digits and spaces only.
func StripPunctuation(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func TitleCase(input string) string {
	words := strings.Fields(input)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
