package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	Describe("Word fields", func() {
		// LW $3, -8($4)
		w := insts.Word(0x8C83FFF8)

		It("should extract register fields", func() {
			Expect(w.Op()).To(Equal(insts.OpcodeLW))
			Expect(w.Rs()).To(Equal(uint8(4)))
			Expect(w.Rt()).To(Equal(uint8(3)))
		})

		It("should sign-extend the immediate", func() {
			Expect(w.Imm()).To(Equal(uint64(0xFFF8)))
			Expect(w.SImm()).To(Equal(int64(-8)))
		})

		It("should round-trip through the encoders", func() {
			Expect(insts.EncodeI(insts.OpcodeLW, 4, 3, 0xFFF8)).To(Equal(w))
			Expect(insts.EncodeR(insts.FunctADDU, 1, 2, 3, 0)).To(Equal(insts.Word(0x00221821)))
			Expect(insts.EncodeJ(insts.OpcodeJAL, 0x40)).To(Equal(insts.Word(0x0C000040)))
		})
	})
})
