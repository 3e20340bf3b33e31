//go:build !unix

package core

import "github.com/sarchlab/broas/errs"

// HostSyscaller reports every call as unsupported on this platform.
type HostSyscaller struct {
	mem *Memory
}

// NewHostSyscaller creates a syscaller for mem.
func NewHostSyscaller(mem *Memory) *HostSyscaller {
	return &HostSyscaller{mem: mem}
}

// Syscall always fails.
func (h *HostSyscaller) Syscall(number Word, _ [5]Word) (Word, error) {
	return 0, errs.HostFault.New("syscall %d: not supported on this platform", number)
}
