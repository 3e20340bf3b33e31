package asm

// Opcode is an instruction mnemonic.
type Opcode string

const (
	OpAdd     Opcode = "add"
	OpSub     Opcode = "sub"
	OpLw      Opcode = "lw"
	OpSw      Opcode = "sw"
	OpMult    Opcode = "mult"
	OpDiv     Opcode = "div"
	OpBeq     Opcode = "beq"
	OpBneq    Opcode = "bneq"
	OpMod     Opcode = "mod"
	OpXor     Opcode = "xor"
	OpOr      Opcode = "or"
	OpAnd     Opcode = "and"
	OpNot     Opcode = "not"
	OpSl      Opcode = "sl"
	OpSr      Opcode = "sr"
	OpBlt     Opcode = "blt"
	OpBgt     Opcode = "bgt"
	OpBle     Opcode = "ble"
	OpBge     Opcode = "bge"
	OpJmp     Opcode = "jmp"
	OpRef     Opcode = "ref"
	OpDeref   Opcode = "deref"
	OpPrint   Opcode = "print"
	OpScan    Opcode = "scan"
	OpSyscall Opcode = "syscall"
	OpExit    Opcode = "exit"
)

// opcodeTable lists every mnemonic with its operand count, in the order the
// instruction set is documented.
var opcodeTable = []struct {
	op    Opcode
	arity int
}{
	{OpAdd, 3},
	{OpSub, 3},
	{OpLw, 2},
	{OpSw, 2},
	{OpMult, 3},
	{OpDiv, 3},
	{OpBeq, 3},
	{OpBneq, 3},
	{OpMod, 3},
	{OpXor, 3},
	{OpOr, 3},
	{OpAnd, 3},
	{OpNot, 2},
	{OpSl, 3},
	{OpSr, 3},
	{OpBlt, 3},
	{OpBgt, 3},
	{OpBle, 3},
	{OpBge, 3},
	{OpJmp, 1},
	{OpRef, 2},
	{OpDeref, 3},
	{OpPrint, 1},
	{OpScan, 1},
	{OpSyscall, 3},
	{OpExit, 1},
}

var arities = func() map[Opcode]int {
	m := make(map[Opcode]int, len(opcodeTable))
	for _, e := range opcodeTable {
		m[e.op] = e.arity
	}
	return m
}()

// LookupOpcode returns the opcode spelled by word. Mnemonics are case
// sensitive.
func LookupOpcode(word string) (Opcode, bool) {
	op := Opcode(word)
	_, ok := arities[op]
	return op, ok
}

// Arity returns the number of operands the opcode takes, or -1 for an
// unknown opcode.
func (o Opcode) Arity() int {
	if n, ok := arities[o]; ok {
		return n
	}
	return -1
}

// IsBranch reports whether the opcode transfers control through its last
// operand.
func (o Opcode) IsBranch() bool {
	switch o {
	case OpBeq, OpBneq, OpBlt, OpBgt, OpBle, OpBge, OpJmp:
		return true
	}
	return false
}

// WritesDest reports whether the first operand is a destination variable.
func (o Opcode) WritesDest() bool {
	switch o {
	case OpSw, OpBeq, OpBneq, OpBlt, OpBgt, OpBle, OpBge, OpJmp, OpPrint,
		OpExit:
		return false
	}
	return o.Arity() > 0
}

// Opcodes returns all mnemonics in documentation order.
func Opcodes() []Opcode {
	ops := make([]Opcode, len(opcodeTable))
	for i, e := range opcodeTable {
		ops[i] = e.op
	}
	return ops
}
