//go:build unix

package core

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// HostSyscaller issues real system calls. Arguments that are handles into
// the machine memory are passed as pointers into the backing store.
type HostSyscaller struct {
	mem *Memory
}

// NewHostSyscaller creates a syscaller that translates handles of mem.
func NewHostSyscaller(mem *Memory) *HostSyscaller {
	return &HostSyscaller{mem: mem}
}

// Syscall runs the call and returns its result, or -errno.
func (h *HostSyscaller) Syscall(number Word, args [5]Word) (Word, error) {
	// The store stays pinned until the call returns, so the addresses held
	// as plain integers in raw remain valid.
	var pinner runtime.Pinner
	defer pinner.Unpin()

	var raw [5]uintptr
	for i, a := range args {
		if p, ok := h.mem.Pointer(a); ok {
			pinner.Pin(p)
			raw[i] = uintptr(p)
			continue
		}
		raw[i] = uintptr(a)
	}

	r, _, errno := unix.Syscall6(uintptr(number),
		raw[0], raw[1], raw[2], raw[3], raw[4], 0)

	Trace("Syscall", "Number", number, "Result", int64(r), "Errno", int(errno))

	if errno != 0 {
		return -Word(errno), nil
	}
	return Word(r), nil
}
