package utils

import (
	"strings"
	"unicode"
)

// ParseInput splits a slash command into its action and arguments.
// Arguments may be quoted to contain spaces, e.g. `/movievote create "Movie 1" "Movie 2"`.
func ParseInput(input, trigger string) (string, []string) {
	// Transform curly quotes to straight quotes
	input = strings.Map(func(in rune) rune {
		switch in {
		case '“', '”':
			return '"'
		}

		return in
	}, input)

	// Remove Trigger prefix and spaces
	input = strings.TrimSpace(strings.TrimPrefix(input, "/"+trigger))

	var fields []string

	escaped := false
	quoted := false
	tainted := false // a tainted word was quoted and is kept even if empty
	var word string

	addField := func() {
		if !tainted {
			word = strings.TrimSpace(word)
			if len(word) == 0 {
				return
			}
		}
		fields = append(fields, word)
		word = ""
		tainted = false
	}

	for _, c := range input {
		switch {
		case c == '"':
			if escaped {
				word += string(c)
			} else {
				quoted = !quoted
			}
			tainted = true
		case c == '\\':
			if escaped {
				word += `\`
			}
		case unicode.IsSpace(c) && !quoted && !escaped:
			addField() // End of word
		default:
			word += string(c)
		}
		escaped = c == '\\' && !escaped
	}
	if len(word) > 0 || tainted {
		addField() // Add last field
	}

	if len(fields) == 0 {
		return "", []string{}
	}
	return strings.ToLower(fields[0]), fields[1:]
}
