// Package verify provides checking tools for broas programs.
//
// This package implements two complementary stages:
//
// 1. Static Lint (lint.go): checks on the assembled program, without running it
//   - UNDEFINED: a label operand with no definition
//   - DEST: a destination slot holding something other than a variable
//   - TARGET: an immediate branch or jump target outside [0, N]
//   - DUPLICATE: a label defined more than once (the first one wins)
//   - UNSET: a variable that is read but never written anywhere
//
// 2. Sandbox run (sandbox.go): executes the program on a private machine
//   - standard input is empty, so scan reads -1
//   - output is captured instead of written to the terminal
//   - system calls are refused with -ENOSYS
//   - a step budget stops programs that do not terminate
//
// # Usage Example
//
//	prog, err := asm.Load(f, asm.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	report := verify.GenerateReport(prog, core.NewBuilder(), 100000)
//	report.WriteReport(os.Stdout)
//	if !report.OK() {
//	    os.Exit(1)
//	}
//
// # Limitations
//
// - Lint does not track values, so computed targets and indirect memory
// accesses are only checked by the sandbox run.
// - UNSET is flow insensitive: a write anywhere in the program counts, even
// after the read.
package verify

import "github.com/sarchlab/broas/asm"

// IssueType categorizes lint issues
type IssueType string

const (
	IssueUndefined IssueType = "UNDEFINED" // Label operand without a definition
	IssueDest      IssueType = "DEST"      // Destination is not a variable
	IssueTarget    IssueType = "TARGET"    // Immediate target out of range
	IssueDuplicate IssueType = "DUPLICATE" // Label defined again
	IssueUnset     IssueType = "UNSET"     // Variable read but never written
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType
	Index   int // Instruction index, -1 for label issues
	Line    int // Source line, 0 if unknown
	Message string
	Details map[string]interface{}
}

// readSlots returns the operand positions an instruction reads.
func readSlots(inst asm.Instruction) []int {
	start := 0
	if inst.Op.WritesDest() {
		start = 1
	}

	slots := make([]int, 0, len(inst.Operands))
	for i := start; i < len(inst.Operands); i++ {
		slots = append(slots, i)
	}
	return slots
}

// targetSlot returns the position of the control transfer target, or -1.
func targetSlot(op asm.Opcode) int {
	switch {
	case op == asm.OpJmp:
		return 0
	case op.IsBranch():
		return 2
	default:
		return -1
	}
}
