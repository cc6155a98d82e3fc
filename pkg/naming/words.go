package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitWords breaks an identifier into its underscore-delimited segments and
// camel-case humps. Concatenating the result of a name without underscores
// yields the name again.
func splitWords(name string) []string {
	var words []string

	for part := range strings.SplitSeq(name, "_") {
		if part == "" {
			continue
		}

		words = append(words, splitHumps(part)...)
	}

	return words
}

func splitHumps(part string) []string {
	runes := []rune(part)

	var (
		words []string
		start int
	)

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]

		lowerToUpper := (unicode.IsLower(prev) || unicode.IsDigit(prev)) && unicode.IsUpper(cur)
		acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(cur) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1])

		if lowerToUpper || acronymEnd {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}

	return append(words, string(runes[start:]))
}

// normalizeWord lower-cases all-capital words longer than one letter so
// "CGC" and "cgc" compose the same way.
func normalizeWord(w string) string {
	if utf8.RuneCountInString(w) < 2 {
		return w
	}

	for _, r := range w {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return w
		}
	}

	return strings.ToLower(w)
}

func upperFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return w
	}

	return string(unicode.ToUpper(r)) + w[size:]
}

func lowerFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return w
	}

	return string(unicode.ToLower(r)) + w[size:]
}

// pascalWords upper-cases the first letter of every word.
func pascalWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = upperFirst(normalizeWord(w))
	}

	return out
}

// camelWords lower-cases the first word and capitalizes the rest.
func camelWords(words []string) []string {
	out := pascalWords(words)
	if len(out) > 0 {
		out[0] = lowerFirst(normalizeWord(words[0]))
	}

	return out
}

// matchCase shapes replacement after the case of the word it replaces.
func matchCase(original, replacement string) string {
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsLower(r) {
		return lowerFirst(replacement)
	}

	return upperFirst(replacement)
}
