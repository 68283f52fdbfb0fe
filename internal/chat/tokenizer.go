// Package chat turns chat payloads into command word lists.
package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var quoteReplacer = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201C", `"`,
	"\u201D", `"`,
	"\u201E", `"`,
	"\u00AB", `"`,
	"\u00BB", `"`,
)

var lineReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
	"\u0085", "\n",
	"\v", "\n",
)

// Normalize rewrites stylized quotes to straight quotes and every line
// separator variant to "\n".
func Normalize(s string) string {
	return quoteReplacer.Replace(NormalizeLineBreaks(s))
}

// NormalizeLineBreaks rewrites line separator variants to "\n" and leaves
// everything else untouched.
func NormalizeLineBreaks(s string) string {
	return lineReplacer.Replace(s)
}

// Lines splits a payload into its non-empty lines, trimmed of surrounding
// whitespace. Quotes are not rewritten so callers can detect lines that
// must be passed through verbatim.
func Lines(payload string) []string {
	parts := strings.Split(NormalizeLineBreaks(payload), "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// Words splits s on whitespace, keeping a double-quoted span together as one
// word and removing one layer of surrounding quotes from it. Embedded quotes
// cannot be escaped. A quote without a partner is dropped. Empty input
// yields an empty slice.
func Words(s string) []string {
	s = Normalize(s)
	words := make([]string, 0)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				i++
				continue
			}
			words = append(words, unquote(s[i:i+end+2]))
			i += end + 2
		default:
			start := i
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if unicode.IsSpace(r) || r == '"' {
					break
				}
				i += size
			}
			words = append(words, s[start:i])
		}
	}
	return words
}

// Join is the inverse of Words for non-empty words without embedded quotes:
// words containing whitespace are wrapped in double quotes.
func Join(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if strings.IndexFunc(w, unicode.IsSpace) >= 0 {
			quoted[i] = `"` + w + `"`
			continue
		}
		quoted[i] = w
	}
	return strings.Join(quoted, " ")
}

func unquote(token string) string {
	if len(token) > 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) {
		return token[1 : len(token)-1]
	}
	return token
}
