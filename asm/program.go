package asm

import (
	"fmt"
	"strings"
)

// Instruction is an opcode with its operands in slot order.
type Instruction struct {
	Op       Opcode  `cbor:"1,keyasint"`
	Operands []Token `cbor:"2,keyasint"`

	// Line is the source line of the opcode, 0 if unknown.
	Line int `cbor:"3,keyasint,omitempty"`
}

func (i Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(string(i.Op))
	for _, o := range i.Operands {
		sb.WriteByte(' ')
		sb.WriteString(o.Text)
	}
	return sb.String()
}

// Label binds a name to the index of the instruction that follows its
// definition.
type Label struct {
	Name  string `cbor:"1,keyasint"`
	Index int    `cbor:"2,keyasint"`
}

// Labels is an append-only table searched front to back.
type Labels []Label

// Define appends a binding. A name that is already bound keeps its first
// binding for lookups.
func (l *Labels) Define(name string, index int) {
	*l = append(*l, Label{Name: name, Index: index})
}

// Lookup returns the instruction index bound to name.
func (l Labels) Lookup(name string) (int, bool) {
	for _, e := range l {
		if e.Name == name {
			return e.Index, true
		}
	}
	return 0, false
}

// Len returns the number of bindings, duplicates included.
func (l Labels) Len() int {
	return len(l)
}

// Each calls fn for every binding in definition order.
func (l Labels) Each(fn func(Label)) {
	for _, e := range l {
		fn(e)
	}
}

// Program is an assembled instruction table with its labels.
type Program struct {
	Instructions []Instruction `cbor:"1,keyasint"`
	Labels       Labels        `cbor:"2,keyasint"`
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// String disassembles the program, one instruction or label per line.
func (p *Program) String() string {
	var sb strings.Builder

	writeLabels := func(index int) {
		for _, l := range p.Labels {
			if l.Index == index {
				fmt.Fprintf(&sb, "%c%s\n", LabelSigil, l.Name)
			}
		}
	}

	for i, inst := range p.Instructions {
		writeLabels(i)
		fmt.Fprintf(&sb, "\t%s\n", inst)
	}
	writeLabels(len(p.Instructions))

	return sb.String()
}
