package asm

import (
	"bufio"
	"io"

	"github.com/sarchlab/broas/errs"
)

// Default lexer capacities.
const (
	DefaultMaxLineLength = 4096
	DefaultMaxTokens     = 65536
)

// Lexer turns a byte stream into tokens, one line at a time. It cannot be
// restarted once the stream is consumed.
type Lexer struct {
	r *bufio.Reader

	maxLineLength int
	maxTokens     int

	line    int
	emitted int
	pending []Token
	eof     bool
}

// NewLexer creates a lexer that reads from r with the default capacities.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		r:             bufio.NewReader(r),
		maxLineLength: DefaultMaxLineLength,
		maxTokens:     DefaultMaxTokens,
	}
}

// WithMaxLineLength sets the longest accepted line in bytes, excluding the
// terminator. Zero or less removes the limit.
func (l *Lexer) WithMaxLineLength(n int) *Lexer {
	l.maxLineLength = n
	return l
}

// WithMaxTokens sets the largest accepted number of tokens. Zero or less
// removes the limit.
func (l *Lexer) WithMaxTokens(n int) *Lexer {
	l.maxTokens = n
	return l
}

// Next returns the next token. It returns io.EOF once the input is
// exhausted.
func (l *Lexer) Next() (Token, error) {
	for len(l.pending) == 0 {
		if l.eof {
			return Token{}, io.EOF
		}
		if err := l.readLine(); err != nil {
			return Token{}, err
		}
	}

	t := l.pending[0]
	l.pending = l.pending[1:]
	return t, nil
}

// All drains the lexer.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		t, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
}

func (l *Lexer) readLine() error {
	text, err := l.r.ReadString('\n')
	if err == io.EOF {
		l.eof = true
		if text == "" {
			return nil
		}
	} else if err != nil {
		return errs.HostFault.Wrap(err, "read line %d", l.line+1)
	}

	l.line++
	if n := len(text); n > 0 && text[n-1] == '\n' {
		text = text[:n-1]
	}
	if l.maxLineLength > 0 && len(text) > l.maxLineLength {
		return errs.LexicalLimit.New(
			"line %d is %d bytes long, the limit is %d",
			l.line, len(text), l.maxLineLength)
	}

	for _, word := range splitWords(text) {
		if word[0] == ';' {
			break
		}

		if l.maxTokens > 0 && l.emitted >= l.maxTokens {
			return errs.LexicalLimit.New(
				"more than %d tokens (line %d)", l.maxTokens, l.line)
		}
		l.emitted++

		t := Token{
			Kind: Classify(word),
			Text: word,
			Line: l.line,
			Pos:  l.emitted,
		}
		if t.Kind == KindImmediate {
			t.Value = ImmediateValue(word)
		}
		l.pending = append(l.pending, t)
	}

	return nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func splitWords(line string) []string {
	var words []string
	for i := 0; i < len(line); {
		for i < len(line) && isBlank(line[i]) {
			i++
		}
		start := i
		for i < len(line) && !isBlank(line[i]) {
			i++
		}
		if i > start {
			words = append(words, line[start:i])
		}
	}
	return words
}
