package token

import (
	"fmt"
)

const (
	EOF = -(iota + 1)
	Error
	Identifier
	Reserved
	String
	Integer
	Float

	AmpAmp
	BarBar
	PlusPlus
	LessEqual
	LessGreater
	GreaterEqual
	EqualEqual
	BangEqual
)

const (
	Comma    = ','
	Dot      = '.'
	Colon    = ':'
	LParen   = '('
	RParen   = ')'
	LBracket = '['
	RBracket = ']'
	LBrace   = '{'
	RBrace   = '}'
)

const (
	Minus   = '-'
	Plus    = '+'
	Star    = '*'
	Slash   = '/'
	Percent = '%'
	Caret   = '^'
	Tilde   = '~'
	Equal   = '='
	Less    = '<'
	Greater = '>'
	Bang    = '!'
)

var operators = map[rune]string{
	AmpAmp:       "&&",
	BarBar:       "||",
	PlusPlus:     "++",
	LessEqual:    "<=",
	LessGreater:  "<>",
	GreaterEqual: ">=",
	EqualEqual:   "==",
	BangEqual:    "!=",
}

var (
	opRunes = map[rune]bool{
		'-': true, '+': true, '*': true, '/': true, '%': true, '^': true, '~': true, '=': true,
		'<': true, '>': true, '&': true, '|': true, '!': true,
	}
	Operators = map[string]rune{}
)

func IsOpRune(r rune) bool {
	_, ok := opRunes[r]
	return ok
}

func Format(r rune) string {
	if r > 0 {
		return fmt.Sprintf("rune %c", r)
	}
	if s, ok := operators[r]; ok {
		return s
	}
	return fmt.Sprintf("token %d", r)
}

func init() {
	for r, s := range operators {
		Operators[s] = r
	}
}
