package core

import (
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/broas/asm"
)

// Builder can create new machines and cores.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	memorySize int
	maxSteps   uint64
	args       []string
	console    Console
	syscaller  Syscaller
}

// NewBuilder returns a builder with the default memory size, the process
// standard streams as console, and the host syscaller.
func NewBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		memorySize: DefaultMemorySize,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemorySize sets the number of memory words.
func (b Builder) WithMemorySize(words int) Builder {
	b.memorySize = words
	return b
}

// WithMaxSteps bounds the number of executed instructions. Zero means no
// bound.
func (b Builder) WithMaxSteps(n uint64) Builder {
	b.maxSteps = n
	return b
}

// WithArgs sets the arguments seeded into memory.
func (b Builder) WithArgs(args []string) Builder {
	b.args = args
	return b
}

// WithConsole sets the console used by print and scan. The default reads
// standard input and writes standard output.
func (b Builder) WithConsole(c Console) Builder {
	b.console = c
	return b
}

// WithSyscaller sets the host for the syscall opcode. The default issues
// real system calls.
func (b Builder) WithSyscaller(s Syscaller) Builder {
	b.syscaller = s
	return b
}

// Build creates a machine ready to run prog.
func (b Builder) Build(prog *asm.Program) (*Machine, error) {
	mem, err := NewMemory(b.memorySize, b.args)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		emu:      newInstEmulator(),
		maxSteps: b.maxSteps,
	}
	m.state = coreState{
		Code:      prog.Instructions,
		Labels:    prog.Labels,
		Memory:    mem,
		Console:   b.console,
		Syscaller: b.syscaller,
	}

	if m.state.Console == nil {
		m.state.Console = NewStdConsole(os.Stdin, os.Stdout)
	}
	if m.state.Syscaller == nil {
		m.state.Syscaller = NewHostSyscaller(mem)
	}

	return m, nil
}

// BuildCore creates a ticking component that runs prog one instruction per
// cycle.
func (b Builder) BuildCore(name string, prog *asm.Program) (*Core, error) {
	m, err := b.Build(prog)
	if err != nil {
		return nil, err
	}

	c := &Core{machine: m}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c, nil
}
