package nameutil

import (
	"fmt"
	"strings"
)

// SplitCommand splits a shell-style command line into arguments.
//
// Single quotes are literal, double quotes allow \" \\ and \$ escapes, and a
// backslash outside quotes escapes the next character. No expansion happens.
func SplitCommand(input string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		started bool // current arg exists, even if empty ("")
		quote   rune // 0, '\'' or '"'
	)

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case quote == '\'':
			if ch == '\'' {
				quote = 0
				continue
			}
			cur.WriteRune(ch)

		case quote == '"':
			if ch == '"' {
				quote = 0
				continue
			}
			if ch == '\\' && i+1 < len(runes) && strings.ContainsRune(`"\$`, runes[i+1]) {
				i++
				cur.WriteRune(runes[i])
				continue
			}
			cur.WriteRune(ch)

		case ch == '\'' || ch == '"':
			quote = ch
			started = true

		case ch == '\\':
			started = true
			if i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
			} else {
				cur.WriteRune(ch)
			}

		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}

		default:
			cur.WriteRune(ch)
			started = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command string")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
