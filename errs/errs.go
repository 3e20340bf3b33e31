// Package errs defines the error types shared by the assembler, the machine
// and the command line tool.
//
// Every error is fatal to the run that produced it. The types only exist so
// that callers and tests can tell the categories apart.
package errs

import "github.com/joomcode/errorx"

var (
	// Namespace groups all broas errors.
	Namespace = errorx.NewNamespace("broas")

	// LexicalLimit is raised when the source exceeds a configured line or
	// token capacity.
	LexicalLimit = Namespace.NewType("lexical_limit")

	// Assembly is raised for unknown opcodes, tokens found where an opcode or
	// label was expected, and programs that do not fit the instruction table.
	Assembly = Namespace.NewType("assembly")

	// Undefined is raised when a variable or label is read before it exists.
	Undefined = Namespace.NewType("undefined")

	// Misuse is raised when a token is used in a slot it cannot occupy.
	Misuse = Namespace.NewType("misuse")

	// HostFault covers division by zero, out of range memory accesses and
	// failures of the console or syscall host.
	HostFault = Namespace.NewType("host_fault")

	// Config is raised for unreadable or invalid configuration files.
	Config = Namespace.NewType("config")

	// Image is raised for malformed program images.
	Image = Namespace.NewType("image")
)
