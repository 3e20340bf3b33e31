package asm_test

import (
	"bytes"
	"strings"

	"github.com/joomcode/errorx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/broas/asm"
	"github.com/sarchlab/broas/errs"
)

var _ = Describe("Image", func() {
	var prog *asm.Program

	BeforeEach(func() {
		var err error
		prog, err = load("@loop\nsub n n 1\nprint '\\n\nbgt n 0 @loop\nexit -1\n")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reproduce the assembled program", func() {
		var buf bytes.Buffer
		Expect(asm.EncodeImage(&buf, prog)).To(Succeed())
		Expect(asm.IsImage(buf.Bytes())).To(BeTrue())

		decoded, err := asm.DecodeImage(&buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(prog))
	})

	It("should be accepted by LoadAny", func() {
		var buf bytes.Buffer
		Expect(asm.EncodeImage(&buf, prog)).To(Succeed())

		decoded, err := asm.LoadAny(&buf, asm.DefaultOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.String()).To(Equal(prog.String()))
	})

	It("should let LoadAny fall back to source", func() {
		decoded, err := asm.LoadAny(strings.NewReader("exit 0\n"), asm.DefaultOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Len()).To(Equal(1))
	})

	It("should reject data without the header", func() {
		_, err := asm.DecodeImage(strings.NewReader("exit 0\n"))

		Expect(errorx.IsOfType(err, errs.Image)).To(BeTrue())
	})

	It("should reject instructions with the wrong operand count", func() {
		broken := &asm.Program{Instructions: []asm.Instruction{
			{Op: asm.OpAdd, Operands: []asm.Token{{Kind: asm.KindVariable, Text: "x"}}},
		}}
		var buf bytes.Buffer
		Expect(asm.EncodeImage(&buf, broken)).To(Succeed())

		_, err := asm.DecodeImage(&buf)

		Expect(errorx.IsOfType(err, errs.Image)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("has 1 operands, want 3"))
	})
})
