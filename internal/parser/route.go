package parser

import (
	"regexp"
	"strings"
)

// maxSingleWords is the token count above which a message is treated as a
// likely multi-expense message.
const maxSingleWords = 8

// conjunctions separate expenses in one message ("then", "and", "after that").
var (
	conjunctionWord  = regexp.MustCompile(`(?i)\b(setelah itu|trus|terus|lalu|kemudian|dan|sambil|juga)\b`)
	conjunctionSplit = regexp.MustCompile(`(?i)\s+(?:setelah itu|trus|terus|lalu|kemudian|dan|sambil|juga)\s+`)
)

// ShouldTryMultiple reports whether text should go through multi-expense
// parsing first.
func ShouldTryMultiple(text string) bool {
	return conjunctionWord.MatchString(text) || len(strings.Fields(text)) > maxSingleWords
}

func splitConjunctions(text string) []string {
	var parts []string
	for _, p := range conjunctionSplit.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
