package core

import (
	"bufio"
	"io"

	"github.com/sarchlab/broas/errs"
)

// Console is the byte stream the print and scan opcodes talk to.
type Console interface {
	Print(b byte) error
	// Scan returns io.EOF when the input is exhausted.
	Scan() (byte, error)
}

// Syscaller forwards a system call to the host. The return value is the
// raw result, or the negated errno on failure.
type Syscaller interface {
	Syscall(number Word, args [5]Word) (Word, error)
}

// StdConsole is a buffered Console over a reader and a writer.
type StdConsole struct {
	in  *bufio.Reader
	out *bufio.Writer
}

// NewStdConsole creates a console reading from in and writing to out.
func NewStdConsole(in io.Reader, out io.Writer) *StdConsole {
	return &StdConsole{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
	}
}

// Print buffers one byte.
func (c *StdConsole) Print(b byte) error {
	if err := c.out.WriteByte(b); err != nil {
		return errs.HostFault.Wrap(err, "print")
	}
	return nil
}

// Scan flushes pending output, then reads one byte.
func (c *StdConsole) Scan() (byte, error) {
	if err := c.Flush(); err != nil {
		return 0, err
	}

	b, err := c.in.ReadByte()
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, errs.HostFault.Wrap(err, "scan")
	}
	return b, nil
}

// Flush writes buffered output.
func (c *StdConsole) Flush() error {
	if err := c.out.Flush(); err != nil {
		return errs.HostFault.Wrap(err, "flush")
	}
	return nil
}

type flusher interface {
	Flush() error
}
