package core

import (
	"io"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

type signalKind int

const (
	advance signalKind = iota
	jump
	halt
)

// signal tells the driver what to do with the program counter after an
// instruction.
type signal struct {
	kind  signalKind
	value Word
}

type coreState struct {
	PC        int
	Code      []asm.Instruction
	Labels    asm.Labels
	Variables Variables
	Memory    *Memory
	Console   Console
	Syscaller Syscaller
	Steps     uint64
}

func (s *coreState) getValue(t asm.Token) (Word, error) {
	switch t.Kind {
	case asm.KindImmediate:
		return Word(t.Value), nil
	case asm.KindVariable:
		v, ok := s.Variables.Lookup(t.Text)
		if !ok {
			return 0, errs.Undefined.New("%s not defined", t.Text)
		}
		return v, nil
	case asm.KindLabel:
		index, ok := s.Labels.Lookup(t.Name())
		if !ok {
			return 0, errs.Undefined.New("%s not defined", t.Text)
		}
		return Word(index), nil
	default:
		return 0, errs.Misuse.New(
			"Cannot get value of %s, (can only access value of a variable or immediate or label)",
			t.Text)
	}
}

func (s *coreState) setValue(t asm.Token, v Word) error {
	if t.Kind != asm.KindVariable {
		return errs.Misuse.New("Can only set value of a variable")
	}
	s.Variables.Set(t.Text, v)
	return nil
}

// values evaluates the given operands in order.
func (s *coreState) values(ops ...asm.Token) ([]Word, error) {
	out := make([]Word, len(ops))
	for i, t := range ops {
		v, err := s.getValue(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type handler func(ops []asm.Token, state *coreState) (signal, error)

type instEmulator struct {
	handlers map[asm.Opcode]handler
}

func newInstEmulator() instEmulator {
	i := instEmulator{}
	i.handlers = map[asm.Opcode]handler{
		asm.OpAdd:     i.alu(func(x, y Word) (Word, error) { return x + y, nil }),
		asm.OpSub:     i.alu(func(x, y Word) (Word, error) { return x - y, nil }),
		asm.OpMult:    i.alu(func(x, y Word) (Word, error) { return x * y, nil }),
		asm.OpDiv:     i.alu(divide),
		asm.OpMod:     i.alu(modulo),
		asm.OpXor:     i.alu(func(x, y Word) (Word, error) { return x ^ y, nil }),
		asm.OpOr:      i.alu(func(x, y Word) (Word, error) { return x | y, nil }),
		asm.OpAnd:     i.alu(func(x, y Word) (Word, error) { return x & y, nil }),
		asm.OpSl:      i.alu(func(x, y Word) (Word, error) { return x << uint64(y), nil }),
		asm.OpSr:      i.alu(func(x, y Word) (Word, error) { return x >> uint64(y), nil }),
		asm.OpNot:     i.runNot,
		asm.OpLw:      i.runLw,
		asm.OpSw:      i.runSw,
		asm.OpRef:     i.runRef,
		asm.OpDeref:   i.runDeref,
		asm.OpBeq:     i.branch(func(x, y Word) bool { return x == y }),
		asm.OpBneq:    i.branch(func(x, y Word) bool { return x != y }),
		asm.OpBlt:     i.branch(func(x, y Word) bool { return x < y }),
		asm.OpBgt:     i.branch(func(x, y Word) bool { return x > y }),
		asm.OpBle:     i.branch(func(x, y Word) bool { return x <= y }),
		asm.OpBge:     i.branch(func(x, y Word) bool { return x >= y }),
		asm.OpJmp:     i.runJmp,
		asm.OpPrint:   i.runPrint,
		asm.OpScan:    i.runScan,
		asm.OpSyscall: i.runSyscall,
		asm.OpExit:    i.runExit,
	}
	return i
}

// RunInst executes one instruction against the state.
func (i instEmulator) RunInst(inst asm.Instruction, state *coreState) (signal, error) {
	h, ok := i.handlers[inst.Op]
	if !ok {
		return signal{}, errs.Assembly.New("Unknown operation %s", inst.Op)
	}

	if len(inst.Operands) != inst.Op.Arity() {
		return signal{}, errs.Assembly.New("%s at line %d expects %d operands, found %d",
			inst.Op, inst.Line, inst.Op.Arity(), len(inst.Operands))
	}

	return h(inst.Operands, state)
}

func divide(x, y Word) (Word, error) {
	if y == 0 {
		return 0, errs.HostFault.New("division by zero")
	}
	return x / y, nil
}

func modulo(x, y Word) (Word, error) {
	if y == 0 {
		return 0, errs.HostFault.New("modulo by zero")
	}
	return x % y, nil
}

func (i instEmulator) alu(op func(x, y Word) (Word, error)) handler {
	return func(ops []asm.Token, state *coreState) (signal, error) {
		v, err := state.values(ops[1], ops[2])
		if err != nil {
			return signal{}, err
		}

		r, err := op(v[0], v[1])
		if err != nil {
			return signal{}, err
		}

		return signal{}, state.setValue(ops[0], r)
	}
}

func (i instEmulator) runNot(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.getValue(ops[1])
	if err != nil {
		return signal{}, err
	}
	return signal{}, state.setValue(ops[0], ^v)
}

func (i instEmulator) runLw(ops []asm.Token, state *coreState) (signal, error) {
	addr, err := state.getValue(ops[1])
	if err != nil {
		return signal{}, err
	}

	v, err := state.Memory.Load(addr)
	if err != nil {
		return signal{}, err
	}

	return signal{}, state.setValue(ops[0], v)
}

func (i instEmulator) runSw(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.values(ops[0], ops[1])
	if err != nil {
		return signal{}, err
	}
	return signal{}, state.Memory.Store(v[1], v[0])
}

func (i instEmulator) runRef(ops []asm.Token, state *coreState) (signal, error) {
	addr, err := state.getValue(ops[1])
	if err != nil {
		return signal{}, err
	}

	h, err := state.Memory.Ref(addr)
	if err != nil {
		return signal{}, err
	}

	return signal{}, state.setValue(ops[0], h)
}

func (i instEmulator) runDeref(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.values(ops[1], ops[2])
	if err != nil {
		return signal{}, err
	}

	r, err := state.Memory.Deref(v[0], v[1])
	if err != nil {
		return signal{}, err
	}

	return signal{}, state.setValue(ops[0], r)
}

func (i instEmulator) target(t asm.Token, state *coreState) (signal, error) {
	dst, err := state.getValue(t)
	if err != nil {
		return signal{}, err
	}

	if dst < 0 || dst > Word(len(state.Code)) {
		return signal{}, errs.HostFault.New(
			"jump target %d out of range [0, %d]", dst, len(state.Code))
	}

	return signal{kind: jump, value: dst}, nil
}

func (i instEmulator) branch(cond func(x, y Word) bool) handler {
	return func(ops []asm.Token, state *coreState) (signal, error) {
		v, err := state.values(ops[0], ops[1])
		if err != nil {
			return signal{}, err
		}

		if !cond(v[0], v[1]) {
			return signal{}, nil
		}

		return i.target(ops[2], state)
	}
}

func (i instEmulator) runJmp(ops []asm.Token, state *coreState) (signal, error) {
	return i.target(ops[0], state)
}

func (i instEmulator) runPrint(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.getValue(ops[0])
	if err != nil {
		return signal{}, err
	}
	return signal{}, state.Console.Print(byte(v))
}

func (i instEmulator) runScan(ops []asm.Token, state *coreState) (signal, error) {
	v := Word(-1)

	b, err := state.Console.Scan()
	switch {
	case err == io.EOF:
	case err != nil:
		return signal{}, err
	default:
		v = Word(b)
	}

	return signal{}, state.setValue(ops[0], v)
}

func (i instEmulator) runSyscall(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.values(ops[1], ops[2])
	if err != nil {
		return signal{}, err
	}

	var args [5]Word
	for k := range args {
		args[k], err = state.Memory.Load(v[1] + Word(k))
		if err != nil {
			return signal{}, errs.HostFault.Wrap(err, "syscall argument block at %d", v[1])
		}
	}

	r, err := state.Syscaller.Syscall(v[0], args)
	if err != nil {
		return signal{}, err
	}

	return signal{}, state.setValue(ops[0], r)
}

func (i instEmulator) runExit(ops []asm.Token, state *coreState) (signal, error) {
	v, err := state.getValue(ops[0])
	if err != nil {
		return signal{}, err
	}
	return signal{kind: halt, value: v}, nil
}
