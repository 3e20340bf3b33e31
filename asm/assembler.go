package asm

import (
	"io"
	"log/slog"

	"github.com/sarchlab/broas/errs"
)

// DefaultMaxInstructions is the default capacity of the instruction table.
const DefaultMaxInstructions = 4096

// Options carries the capacities used while loading a program.
type Options struct {
	MaxLineLength   int
	MaxTokens       int
	MaxInstructions int
}

// DefaultOptions returns the default capacities.
func DefaultOptions() Options {
	return Options{
		MaxLineLength:   DefaultMaxLineLength,
		MaxTokens:       DefaultMaxTokens,
		MaxInstructions: DefaultMaxInstructions,
	}
}

// Assembler groups tokens into instructions.
type Assembler struct {
	// MaxInstructions bounds the instruction table. Zero or less means no
	// bound.
	MaxInstructions int
}

// Assemble runs a single forward pass over tokens. Labels are bound to the
// index of the next instruction, so every label is known before the program
// runs and branches may refer to labels defined further down.
func (a Assembler) Assemble(tokens []Token) (*Program, error) {
	prog := &Program{}

	for i := 0; i < len(tokens); {
		t := tokens[i]
		i++

		switch t.Kind {
		case KindOpcode:
			op, ok := LookupOpcode(t.Text)
			if !ok {
				return nil, errs.Assembly.New("Unknown operation %s", t.Text)
			}

			n := op.Arity()
			if i+n > len(tokens) {
				return nil, errs.Assembly.New(
					"%s at line %d expects %d operands, found %d",
					t.Text, t.Line, n, len(tokens)-i)
			}

			if a.MaxInstructions > 0 && len(prog.Instructions) >= a.MaxInstructions {
				return nil, errs.Assembly.New(
					"more than %d instructions (line %d)",
					a.MaxInstructions, t.Line)
			}

			operands := make([]Token, n)
			copy(operands, tokens[i:i+n])
			i += n

			prog.Instructions = append(prog.Instructions, Instruction{
				Op:       op,
				Operands: operands,
				Line:     t.Line,
			})

		case KindLabel:
			prog.Labels.Define(t.Name(), len(prog.Instructions))

		default:
			pos := t.Pos
			if pos == 0 {
				pos = i
			}
			return nil, errs.Assembly.New(
				"Unexpected token %s in place of opcode or label, "+
					"(encountered at %dth token position)",
				t.Text, pos)
		}
	}

	slog.Debug("Assembled",
		"Instructions", len(prog.Instructions),
		"Labels", prog.Labels.Len())

	return prog, nil
}

// Load tokenizes and assembles a program read from r.
func Load(r io.Reader, opts Options) (*Program, error) {
	tokens, err := NewLexer(r).
		WithMaxLineLength(opts.MaxLineLength).
		WithMaxTokens(opts.MaxTokens).
		All()
	if err != nil {
		return nil, err
	}

	return Assembler{MaxInstructions: opts.MaxInstructions}.Assemble(tokens)
}
