package core

import (
	"context"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosInstRetired marks when the core finishes an instruction. The hook
// item is the asm.Instruction.
var HookPosInstRetired = &sim.HookPos{Name: "Inst Retired"}

// Core runs a machine in simulated time, one instruction per tick.
type Core struct {
	*sim.TickingComponent

	machine *Machine
	ctx     context.Context
	err     error
}

// SetContext makes the core stop at the next tick once ctx is done. The
// context error is then reported by Err.
func (c *Core) SetContext(ctx context.Context) {
	c.ctx = ctx
}

// Machine returns the machine driven by the core.
func (c *Core) Machine() *Machine {
	return c.machine
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.err != nil || c.machine.Halted() {
		return false
	}

	if c.ctx != nil && c.ctx.Err() != nil {
		c.err = c.ctx.Err()
		return false
	}

	pc := c.machine.PC()
	more, err := c.machine.Step()
	if err != nil {
		c.err = err
		Trace("Core",
			"Behavior", "Fault",
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"Error", err.Error(),
		)
		return false
	}

	if pc < len(c.machine.Program()) {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosInstRetired,
			Item:   c.machine.Program()[pc],
		})
	}

	return more
}
