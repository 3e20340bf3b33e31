package core

import (
	"math"
	"strings"

	"github.com/joomcode/errorx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

func mustInst(src string) asm.Instruction {
	prog, err := asm.Load(strings.NewReader(src), asm.DefaultOptions())
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, prog.Instructions).To(HaveLen(1))
	return prog.Instructions[0]
}

var _ = Describe("InstEmulator", func() {
	var (
		ie instEmulator
		s  coreState
	)

	run := func(src string) (signal, error) {
		return ie.RunInst(mustInst(src), &s)
	}

	value := func(name string) Word {
		v, ok := s.Variables.Lookup(name)
		ExpectWithOffset(1, ok).To(BeTrue(), "variable %s", name)
		return v
	}

	BeforeEach(func() {
		ie = newInstEmulator()
		mem, err := NewMemory(16, nil)
		Expect(err).NotTo(HaveOccurred())
		s = coreState{
			Code:   make([]asm.Instruction, 4),
			Memory: mem,
		}
		s.Variables.Set("x", 12)
		s.Variables.Set("y", 5)
	})

	Context("Arithmetic Instructions", func() {
		DescribeTable("binary operations",
			func(op string, want Word) {
				sig, err := run(op + " z x y")

				Expect(err).NotTo(HaveOccurred())
				Expect(sig.kind).To(Equal(advance))
				Expect(value("z")).To(Equal(want))
			},
			Entry("add", "add", Word(17)),
			Entry("sub", "sub", Word(7)),
			Entry("mult", "mult", Word(60)),
			Entry("div", "div", Word(2)),
			Entry("mod", "mod", Word(2)),
			Entry("xor", "xor", Word(12^5)),
			Entry("or", "or", Word(12|5)),
			Entry("and", "and", Word(12&5)),
			Entry("sl", "sl", Word(12<<5)),
			Entry("sr", "sr", Word(0)),
		)

		It("should complement with not", func() {
			_, err := run("not z x")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(^12)))
		})

		It("should create one variable per distinct name", func() {
			Expect(s.Variables.Len()).To(Equal(2))

			_, err := run("add z x y")
			Expect(err).NotTo(HaveOccurred())
			_, err = run("sub z z 1")
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Variables.Len()).To(Equal(3))
			Expect(value("z")).To(Equal(Word(16)))
		})

		It("should wrap on overflow", func() {
			s.Variables.Set("big", math.MaxInt64)

			_, err := run("add z big 1")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(math.MinInt64)))
		})

		It("should shift right arithmetically", func() {
			_, err := run("sr z -16 2")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(-4)))
		})

		It("should truncate division toward zero", func() {
			_, err := run("div z -7 2")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(-3)))

			_, err = run("mod z -7 2")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(-1)))
		})

		It("should fault on division by zero", func() {
			_, err := run("div z x 0")

			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
			_, ok := s.Variables.Lookup("z")
			Expect(ok).To(BeFalse())
		})

		It("should fault on modulo by zero", func() {
			_, err := run("mod z x 0")

			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
		})
	})

	Context("Operands", func() {
		It("should report undefined variables", func() {
			_, err := run("add z nope 1")

			Expect(errorx.IsOfType(err, errs.Undefined)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("nope not defined"))
		})

		It("should report undefined labels", func() {
			_, err := run("jmp @nowhere")

			Expect(errorx.IsOfType(err, errs.Undefined)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("@nowhere not defined"))
		})

		It("should refuse to read an opcode", func() {
			_, err := run("add z print 1")

			Expect(errorx.IsOfType(err, errs.Misuse)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Cannot get value of print"))
		})

		It("should refuse to write anything but a variable", func() {
			_, err := run("add 3 x y")

			Expect(errorx.IsOfType(err, errs.Misuse)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Can only set value of a variable"))
		})

		It("should evaluate labels to instruction indices", func() {
			s.Labels.Define("two", 2)

			_, err := run("add z @two 0")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(2)))
		})
	})

	Context("Memory Instructions", func() {
		It("should store and load words", func() {
			_, err := run("sw x 3")
			Expect(err).NotTo(HaveOccurred())

			_, err = run("lw z 3")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(12)))
		})

		It("should fault on an index out of range", func() {
			_, err := run("lw z 16")
			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())

			_, err = run("sw x -1")
			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
		})

		It("should take word handles with ref", func() {
			_, err := run("ref p 2")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("p")).To(Equal(AddressBase + 16))
		})

		It("should read the bytes behind a handle with deref", func() {
			Expect(s.Memory.Store(1, 0x0102030405060708)).To(Succeed())
			s.Variables.Set("p", AddressBase+8)

			_, err := run("deref z p 8")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(0x0102030405060708)))

			_, err = run("deref z p 2")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(0x0708)))

			_, err = run("deref z p 0")
			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(0)))
		})

		It("should read bytes as unsigned", func() {
			Expect(s.Memory.Store(0, 0xff)).To(Succeed())
			s.Variables.Set("p", AddressBase)

			_, err := run("deref z p 1")

			Expect(err).NotTo(HaveOccurred())
			Expect(value("z")).To(Equal(Word(255)))
		})

		It("should fault on a bad deref width", func() {
			s.Variables.Set("p", AddressBase)

			_, err := run("deref z p 9")

			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
		})

		It("should fault on a deref outside of memory", func() {
			_, err := run("deref z 12 1")

			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
		})
	})

	Context("Control Instructions", func() {
		DescribeTable("branches",
			func(op string, a, b Word, taken bool) {
				s.Variables.Set("a", a)
				s.Variables.Set("b", b)

				sig, err := run(op + " a b 3")

				Expect(err).NotTo(HaveOccurred())
				if taken {
					Expect(sig).To(Equal(signal{kind: jump, value: 3}))
				} else {
					Expect(sig.kind).To(Equal(advance))
				}
			},
			Entry("beq taken", "beq", Word(1), Word(1), true),
			Entry("beq not taken", "beq", Word(1), Word(2), false),
			Entry("bneq taken", "bneq", Word(1), Word(2), true),
			Entry("bneq not taken", "bneq", Word(2), Word(2), false),
			Entry("blt taken", "blt", Word(-1), Word(0), true),
			Entry("blt not taken", "blt", Word(0), Word(0), false),
			Entry("bgt taken", "bgt", Word(1), Word(0), true),
			Entry("bgt not taken", "bgt", Word(0), Word(0), false),
			Entry("ble taken", "ble", Word(0), Word(0), true),
			Entry("ble not taken", "ble", Word(1), Word(0), false),
			Entry("bge taken", "bge", Word(0), Word(0), true),
			Entry("bge not taken", "bge", Word(-1), Word(0), false),
		)

		It("should jump unconditionally", func() {
			sig, err := run("jmp 4")

			Expect(err).NotTo(HaveOccurred())
			Expect(sig).To(Equal(signal{kind: jump, value: 4}))
		})

		It("should fault on a target out of range", func() {
			_, err := run("jmp 5")
			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())

			_, err = run("beq 0 0 -1")
			Expect(errorx.IsOfType(err, errs.HostFault)).To(BeTrue())
		})

		It("should not evaluate the target of a branch not taken", func() {
			_, err := run("beq 0 1 @missing")

			Expect(err).NotTo(HaveOccurred())
		})

		It("should halt with the exit code", func() {
			sig, err := run("exit y")

			Expect(err).NotTo(HaveOccurred())
			Expect(sig).To(Equal(signal{kind: halt, value: 5}))
		})
	})

	It("should reject an instruction with the wrong operand count", func() {
		inst := asm.Instruction{Op: asm.OpAdd}

		_, err := ie.RunInst(inst, &s)

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
	})
})
