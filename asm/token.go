// Package asm turns broas source text into an instruction table.
//
// A source file holds one instruction or label per line. Words are split on
// blanks, a word starting with ";" comments out the rest of the line, and
// labels are written "@name".
package asm

import "fmt"

// Kind is the syntactic class of a token.
type Kind int

const (
	KindLabel Kind = iota
	KindOpcode
	KindVariable
	KindImmediate
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "LABEL"
	case KindOpcode:
		return "OPCODE"
	case KindVariable:
		return "VARIABLE"
	case KindImmediate:
		return "IMMEDIATE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LabelSigil marks a word as a label.
const LabelSigil = '@'

// Token is one classified word of the source.
type Token struct {
	Kind Kind   `cbor:"1,keyasint"`
	Text string `cbor:"2,keyasint"` // as written, labels keep their sigil

	// Value is the decoded value of an immediate. Zero for other kinds.
	Value int64 `cbor:"3,keyasint,omitempty"`

	Line int `cbor:"4,keyasint,omitempty"` // 1-based source line
	Pos  int `cbor:"5,keyasint,omitempty"` // 1-based position in the token stream
}

// Name returns the symbol the token refers to. For labels the sigil is
// stripped, so "@loop" names the label "loop".
func (t Token) Name() string {
	if t.Kind == KindLabel && len(t.Text) > 0 && t.Text[0] == LabelSigil {
		return t.Text[1:]
	}
	return t.Text
}

func (t Token) String() string {
	return t.Text
}

// Classify returns the kind of a word. Classification depends only on the
// spelling, never on where the word appears.
func Classify(word string) Kind {
	if _, ok := LookupOpcode(word); ok {
		return KindOpcode
	}

	if word == "" {
		return KindVariable
	}

	switch c := word[0]; {
	case c == LabelSigil:
		return KindLabel
	case c >= '0' && c <= '9', c == '-', c == '\'':
		return KindImmediate
	default:
		return KindVariable
	}
}

// ImmediateValue decodes the value of an immediate word.
//
// Numbers are read like C's atoi: an optional minus sign followed by the
// longest run of decimal digits, ignoring anything after it. Character
// literals are a quote followed by a byte, or by a backslash and an escape
// letter.
func ImmediateValue(word string) int64 {
	if word == "" {
		return 0
	}
	if word[0] == '\'' {
		return charValue(word)
	}
	return atoi(word)
}

func atoi(s string) int64 {
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}

	var n int64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
	}

	if neg {
		return -n
	}
	return n
}

func charValue(word string) int64 {
	if len(word) < 2 {
		return 0
	}
	if word[1] != '\\' {
		return int64(word[1])
	}
	if len(word) < 3 {
		return 0
	}

	switch word[2] {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case 's':
		// Spaces split words, so a literal space needs its own escape.
		return ' '
	case '0':
		return 0
	}
	return int64(word[2])
}
