package room

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Title turns a room id such as "late-night_debate" into "Late Night Debate".
func Title(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
