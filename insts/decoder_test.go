package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	DescribeTable("operation and class",
		func(word uint32, op insts.Op, class insts.Class) {
			inst := decoder.Decode(insts.Word(word))
			Expect(inst.Op).To(Equal(op))
			Expect(inst.Class).To(Equal(class))
		},
		Entry("nop", uint32(0x00000000), insts.OpSLL, insts.ClassALU),
		Entry("addu $3, $1, $2", uint32(0x00221821), insts.OpADDU, insts.ClassALU),
		Entry("dmultu $4, $5", uint32(0x0085001D), insts.OpDMULTU, insts.ClassMulDiv),
		Entry("addiu $2, $2, 1", uint32(0x24420001), insts.OpADDIU, insts.ClassALUImm),
		Entry("lw $3, 8($4)", uint32(0x8C830008), insts.OpLW, insts.ClassLoad),
		Entry("sw $3, 8($4)", uint32(0xAC830008), insts.OpSW, insts.ClassStore),
		Entry("beq $1, $2, -4", uint32(0x1022FFFF), insts.OpBEQ, insts.ClassBranch),
		Entry("bgezall $3", uint32(0x04730002), insts.OpBGEZALL, insts.ClassBranch),
		Entry("mfc0 $8, $12", uint32(0x40086000), insts.OpMFC0, insts.ClassCop0Read),
		Entry("mtc0 $8, $12", uint32(0x40886000), insts.OpMTC0, insts.ClassCop0Write),
		Entry("eret", uint32(0x42000018), insts.OpERET, insts.ClassCop0Op),
		Entry("bc1t 16", uint32(0x45010004), insts.OpBC1T, insts.ClassCop1),
		Entry("lwc1 $f2, 0($4)", uint32(0xC4820000), insts.OpLWC1, insts.ClassCop1),
		Entry("cache", uint32(0xBC800000), insts.OpCACHE, insts.ClassCache),
		Entry("teq $0, $0", uint32(0x00000034), insts.OpTEQ, insts.ClassSystem),
		Entry("reserved opcode", uint32(0x7C000000), insts.OpUnknown, insts.ClassOther),
	)

	Describe("branch flags", func() {
		It("should mark likely branches", func() {
			inst := decoder.Decode(0x5022FFFF) // beql $1, $2, -4
			Expect(inst.Likely).To(BeTrue())
			Expect(inst.Link).To(BeFalse())
			Expect(inst.IsBranch()).To(BeTrue())
		})

		It("should mark linking jumps", func() {
			inst := decoder.Decode(0x0C000040) // jal 0x100
			Expect(inst.Format).To(Equal(insts.FormatJ))
			Expect(inst.Link).To(BeTrue())
			Expect(inst.Target).To(Equal(uint32(0x40)))
		})
	})

	Describe("Dest", func() {
		It("should report rd for register ALU ops", func() {
			dest, ok := decoder.Decode(0x00221821).Dest()
			Expect(ok).To(BeTrue())
			Expect(dest).To(Equal(uint8(3)))
		})

		It("should report rt for loads", func() {
			dest, ok := decoder.Decode(0x8C830008).Dest()
			Expect(ok).To(BeTrue())
			Expect(dest).To(Equal(uint8(3)))
		})

		It("should report no GPR for multiply/divide", func() {
			_, ok := decoder.Decode(0x0085001D).Dest()
			Expect(ok).To(BeFalse())
		})

		It("should report no GPR for plain stores", func() {
			_, ok := decoder.Decode(0xAC830008).Dest()
			Expect(ok).To(BeFalse())
		})

		It("should report r31 for linking branches", func() {
			dest, ok := decoder.Decode(0x04730002).Dest()
			Expect(ok).To(BeTrue())
			Expect(dest).To(Equal(uint8(31)))
		})
	})

	Describe("String", func() {
		It("should disassemble common forms", func() {
			Expect(decoder.Decode(0x00000000).String()).To(Equal("nop"))
			Expect(decoder.Decode(0x24420001).String()).To(Equal("addiu $2, $2, 1"))
			Expect(decoder.Decode(0x8C830008).String()).To(Equal("lw $3, 8($4)"))
			Expect(decoder.Decode(0x1022FFFF).String()).To(Equal("beq $1, $2, -4"))
			Expect(decoder.Decode(0x7C000000).String()).To(Equal(".word 0x7c000000"))
		})
	})
})
