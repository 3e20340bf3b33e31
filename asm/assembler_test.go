package asm_test

import (
	"strings"

	"github.com/joomcode/errorx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

func load(src string) (*asm.Program, error) {
	return asm.Load(strings.NewReader(src), asm.DefaultOptions())
}

func labelIndex(prog *asm.Program, name string) int {
	index, ok := prog.Labels.Lookup(name)
	ExpectWithOffset(1, ok).To(BeTrue(), "label %s", name)
	return index
}

var _ = Describe("Assembler", func() {
	It("should group operands by arity", func() {
		prog, err := load("add z x y\nnot a b\njmp @end\n@end\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Len()).To(Equal(3))
		Expect(prog.Instructions[0].Op).To(Equal(asm.OpAdd))
		Expect(prog.Instructions[0].Operands).To(HaveLen(3))
		Expect(prog.Instructions[1].Operands).To(HaveLen(2))
		Expect(prog.Instructions[2].Operands).To(HaveLen(1))
	})

	It("should not reorder operands", func() {
		prog, err := load("sub d a b\n")

		Expect(err).NotTo(HaveOccurred())
		ops := prog.Instructions[0].Operands
		Expect([]string{ops[0].Text, ops[1].Text, ops[2].Text}).
			To(Equal([]string{"d", "a", "b"}))
	})

	It("should not validate operand kinds", func() {
		prog, err := load("add 1 @x print\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Instructions[0].Operands[2].Kind).To(Equal(asm.KindOpcode))
	})

	It("should bind labels to the next instruction index", func() {
		prog, err := load("@start\nadd x x 1\n@middle\nprint x\n@end\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(labelIndex(prog, "start")).To(Equal(0))
		Expect(labelIndex(prog, "middle")).To(Equal(1))
		Expect(labelIndex(prog, "end")).To(Equal(2))
	})

	It("should resolve labels defined after their use", func() {
		prog, err := load("jmp @later\nprint 1\nprint 2\n@later\nexit 0\n")

		Expect(err).NotTo(HaveOccurred())
		index, ok := prog.Labels.Lookup("later")
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(3))
	})

	It("should keep the first binding of a duplicated label", func() {
		prog, err := load("@a\nprint 1\n@a\nprint 2\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Labels.Len()).To(Equal(2))
		Expect(labelIndex(prog, "a")).To(Equal(0))
	})

	It("should reject a token in place of an opcode", func() {
		_, err := load("print 1\nx 5\n")

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(
			"Unexpected token x in place of opcode or label, (encountered at 3th token position)"))
	})

	It("should reject a misspelled opcode", func() {
		_, err := load("mul z x y\n")

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("Unexpected token mul"))
	})

	It("should reject an opcode token that is not in the table", func() {
		tokens := []asm.Token{{Kind: asm.KindOpcode, Text: "halt"}}

		_, err := asm.Assembler{}.Assemble(tokens)

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("Unknown operation halt"))
	})

	It("should reject an instruction cut short by the end of input", func() {
		_, err := load("add z x\n")

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("expects 3 operands, found 2"))
	})

	It("should enforce the instruction capacity", func() {
		opts := asm.DefaultOptions()
		opts.MaxInstructions = 2

		_, err := asm.Load(strings.NewReader("print 1\nprint 2\nprint 3\n"), opts)

		Expect(errorx.IsOfType(err, errs.Assembly)).To(BeTrue())
	})

	It("should disassemble with labels in place", func() {
		prog, err := load("@top\nsub n n 1\nbgt n 0 @top\n@done\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.String()).To(Equal(
			"@top\n\tsub n n 1\n\tbgt n 0 @top\n@done\n"))
	})
})
