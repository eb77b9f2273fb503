package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFence     = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	doubleComma   = regexp.MustCompile(`,\s*,`)
	adjacentObjs  = regexp.MustCompile(`}\s*{`)
)

// cleanModelJSON strips markdown code fences and surrounding whitespace.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = codeFence.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstObject returns the first balanced top-level {...} in s, skipping
// braces inside JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairObjectList inserts the commas models tend to drop between objects.
func repairObjectList(s string) string {
	return adjacentObjs.ReplaceAllString(s, "},{")
}

// decode removes trailing and doubled commas before unmarshalling.
func decode(s string, v any) error {
	s = doubleComma.ReplaceAllString(s, ",")
	s = trailingComma.ReplaceAllString(s, "$1")
	return json.Unmarshal([]byte(s), v)
}
