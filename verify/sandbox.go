package verify

import (
	"bytes"
	"context"
	"strings"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/core"
)

const enosys = 38

// refusingSyscaller fails every system call without reaching the host.
type refusingSyscaller struct {
	calls int
}

func (s *refusingSyscaller) Syscall(number core.Word, _ [5]core.Word) (core.Word, error) {
	s.calls++
	core.Trace("Sandbox", "Behavior", "SyscallRefused", "Number", number)
	return -enosys, nil
}

// SandboxResult is the outcome of a sandbox run.
type SandboxResult struct {
	Output   []byte
	ExitCode int
	Steps    uint64
	Syscalls int
	Halted   bool
	Err      error
}

// RunSandbox executes prog on a machine made by b with no input, captured
// output, and refused system calls. The console, the syscaller and the step
// bound set on b are replaced. maxSteps bounds the run; zero means no bound.
func RunSandbox(ctx context.Context, b core.Builder, prog *asm.Program, maxSteps uint64) SandboxResult {
	var out bytes.Buffer
	sys := &refusingSyscaller{}
	console := core.NewStdConsole(strings.NewReader(""), &out)

	m, err := b.
		WithMaxSteps(maxSteps).
		WithConsole(console).
		WithSyscaller(sys).
		Build(prog)
	if err != nil {
		return SandboxResult{Err: err}
	}

	err = m.Run(ctx)
	if ferr := console.Flush(); err == nil {
		err = ferr
	}

	return SandboxResult{
		Output:   out.Bytes(),
		ExitCode: m.ExitCode(),
		Steps:    m.Steps(),
		Syscalls: sys.calls,
		Halted:   m.Halted(),
		Err:      err,
	}
}
