package dispatch

import "strings"

// Tokenize splits a command line into argument tokens with shell-like
// rules: whitespace separates tokens, double quotes preserve whitespace,
// and backslash escapes the next character (inside or outside quotes).
//
// Malformed input is treated leniently, the way interactive shells do:
// an unterminated quote runs to the end of the line and a trailing
// backslash is kept literally.
func Tokenize(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quoted  bool
		started bool
	)

	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\':
			if i+1 < len(line) {
				i++
				cur.WriteByte(line[i])
			} else {
				cur.WriteByte(c)
			}
			started = true
		case c == '"':
			quoted = !quoted
			// An empty quoted pair still produces a token.
			started = true
		case !quoted && (c == ' ' || c == '\t' || c == '\r' || c == '\n'):
			flush()
		default:
			cur.WriteByte(c)
			started = true
		}
	}
	flush()
	return tokens
}
