// Package sandbox decides whether a shell command requested from chat may run.
//
// The checks are static heuristics over the raw command string: a lenient
// tokenizer, a path-candidate extractor, lexical root containment, a chained
// cd validator, a regex command filter and an output sanitizer. None of them
// touch the filesystem or resolve symlinks.
package sandbox

import (
	"strings"
	"unicode"
)

// Token is one whitespace-separated fragment of a command.
type Token struct {
	// Raw is the source text of the token, quotes included.
	Raw string
	// Value is the token with its quote characters removed.
	Value string
}

// Tokenize splits a command into shell-like tokens.
//
// Single and double quotes suppress whitespace splitting and are dropped from
// the token value. Quotes do not nest: a quote of the other kind inside a
// quoted run is literal. Escapes are not interpreted and an unterminated
// quote closes at end of input.
func Tokenize(command string) []Token {
	var (
		tokens  []Token
		current strings.Builder
		quote   rune
		start   = -1
	)

	flush := func(end int) {
		if current.Len() > 0 {
			tokens = append(tokens, Token{Raw: command[start:end], Value: current.String()})
		}
		current.Reset()
		start = -1
	}

	for i, r := range command {
		switch {
		case (r == '"' || r == '\'') && (quote == 0 || quote == r):
			if start < 0 {
				start = i
			}
			if quote == 0 {
				quote = r
			} else {
				quote = 0
			}
		case quote == 0 && unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
			current.WriteRune(r)
		}
	}
	flush(len(command))

	return tokens
}

// TokenValues returns the quote-stripped values of Tokenize(command).
func TokenValues(command string) []string {
	tokens := Tokenize(command)
	values := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	return values
}

// StripQuotes removes one leading and one trailing quote character.
func StripQuotes(text string) string {
	if text != "" && (text[0] == '"' || text[0] == '\'') {
		text = text[1:]
	}
	if n := len(text); n > 0 && (text[n-1] == '"' || text[n-1] == '\'') {
		text = text[:n-1]
	}
	return text
}
