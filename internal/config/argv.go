package config

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgv splits a command string into argv form with shell-like quoting.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv     []string
		token    strings.Builder
		haveTok  bool
		quote    rune
		escaping bool
	)

	emit := func() {
		if !haveTok {
			return
		}
		argv = append(argv, token.String())
		token.Reset()
		haveTok = false
	}

	for _, r := range input {
		switch {
		case escaping:
			token.WriteRune(r)
			haveTok = true
			escaping = false
		case r == '\\':
			escaping = true
			haveTok = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			token.WriteRune(r)
			haveTok = true
		case r == '\'' || r == '"':
			quote = r
			haveTok = true
		case unicode.IsSpace(r):
			emit()
		default:
			token.WriteRune(r)
			haveTok = true
		}
	}

	if escaping {
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}

	emit()
	return argv, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
