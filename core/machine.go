package core

import (
	"context"

	"github.com/joomcode/errorx"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

// Machine executes an assembled program.
type Machine struct {
	state    coreState
	emu      instEmulator
	maxSteps uint64
	halted   bool
	exitCode Word
}

// Step executes one instruction. It returns false once the machine has
// halted, either by falling off the end or through exit.
func (m *Machine) Step() (bool, error) {
	if m.halted {
		return false, nil
	}

	if m.state.PC >= len(m.state.Code) {
		return false, m.halt(0)
	}

	if m.maxSteps > 0 && m.state.Steps >= m.maxSteps {
		return false, errs.HostFault.New("step budget of %d exhausted", m.maxSteps)
	}

	inst := m.state.Code[m.state.PC]
	Trace("Inst", "PC", m.state.PC, "Inst", inst.String())

	sig, err := m.emu.RunInst(inst, &m.state)
	if err != nil {
		return false, errorx.Decorate(err, "line %d: %s", inst.Line, inst)
	}
	m.state.Steps++

	switch sig.kind {
	case jump:
		m.state.PC = int(sig.value)
	case halt:
		return false, m.halt(sig.value)
	default:
		m.state.PC++
	}

	if m.state.PC >= len(m.state.Code) {
		return false, m.halt(0)
	}

	return true, nil
}

// Run steps until the machine halts, an instruction fails, or ctx is done.
func (m *Machine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		more, err := m.Step()
		if err != nil || !more {
			return err
		}
	}
}

func (m *Machine) halt(code Word) error {
	m.halted = true
	m.exitCode = code

	if f, ok := m.state.Console.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Halted reports whether the program has finished.
func (m *Machine) Halted() bool {
	return m.halted
}

// ExitCode returns the exit status of a halted machine.
func (m *Machine) ExitCode() int {
	return int(m.exitCode)
}

// Steps returns the number of executed instructions.
func (m *Machine) Steps() uint64 {
	return m.state.Steps
}

// PC returns the index of the next instruction.
func (m *Machine) PC() int {
	return m.state.PC
}

// Variables returns the variable table.
func (m *Machine) Variables() *Variables {
	return &m.state.Variables
}

// Memory returns the machine memory.
func (m *Machine) Memory() *Memory {
	return m.state.Memory
}

// Program returns the instructions the machine runs.
func (m *Machine) Program() []asm.Instruction {
	return m.state.Code
}
