package provider

import "strings"

// preprocessText collapses every whitespace run (including newlines) to a
// single space, trims the result and truncates it to at most budget
// characters. Documentation text arrives with the formatting of its source
// file; the model only needs the words.
func preprocessText(text string, budget int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if budget <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= budget {
		return collapsed
	}
	return string(runes[:budget])
}
