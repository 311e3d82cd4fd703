package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/insts"
)

var _ = Describe("Idle loop optimizer", func() {
	var (
		e     *emu.Emulator
		cop0  *fakeCop0
		timer *fakeTimer
	)

	selfBranch := insts.EncodeI(insts.OpcodeBEQ, 1, 2, offset(-1))

	BeforeEach(func() {
		cop0 = &fakeCop0{safeIdle: 1}
		timer = &fakeTimer{next: 500}
		e = emu.NewEmulator(emu.WithCop0(cop0), emu.WithTimer(timer))
		e.RegFile().WriteReg(1, 5)
		e.RegFile().WriteReg(2, 5)
	})

	It("should skip to the next timer event behind BEQ r1,r2,-4 with a NOP", func() {
		loadWords(e, 0x1000, selfBranch, insts.Nop)

		stepN(e, 1)

		Expect(timer.calls).To(Equal([]string{"clock", "read", "write"}))
		Expect(timer.clocked).To(Equal(uint64(emu.IdleSkipSlack)))
		Expect(timer.next).To(Equal(int32(0)))
		Expect(cop0.written(emu.Cop0RegAdvance)).To(Equal([]uint32{500}))
		Expect(e.SkippedCycles()).To(Equal(uint64(500)))
		Expect(e.BranchState()).To(Equal(emu.BranchJump))

		stepN(e, 1)

		Expect(e.RegFile().PC).To(Equal(uint32(0x1000)))
		Expect(timer.calls).To(Equal([]string{"clock", "read", "write", "clock"}))
	})

	It("should add skipped cycles to the elapsed tick counter", func() {
		loadWords(e, 0x1000, selfBranch, insts.Nop)

		stepN(e, 2)

		Expect(e.Read64(emu.RegTicks)).To(Equal(uint64(502)))
	})

	It("should not advance when no event is pending", func() {
		timer.next = 0
		loadWords(e, 0x1000, selfBranch, insts.Nop)

		stepN(e, 1)

		Expect(timer.calls).To(Equal([]string{"clock", "read"}))
		Expect(cop0.written(emu.Cop0RegAdvance)).To(BeEmpty())
		Expect(e.SkippedCycles()).To(BeZero())
	})

	It("should leave time alone without the safe-idle signal", func() {
		cop0.safeIdle = 0
		loadWords(e, 0x1000, selfBranch, insts.Nop)

		stepN(e, 1)

		Expect(timer.calls).To(BeEmpty())
		Expect(e.SkippedCycles()).To(BeZero())
	})

	It("should stop on the permanent-loop signal", func() {
		cop0.permanentLoop = 1
		loadWords(e, 0x1000, selfBranch, insts.Nop)

		err := e.Run()

		Expect(err).To(MatchError(emu.ErrPermanentLoop))
		Expect(e.InstructionCount()).To(Equal(uint64(1)))
	})

	It("should ignore branches that do not land on themselves", func() {
		loadWords(e, 0x1000, insts.EncodeI(insts.OpcodeBEQ, 1, 2, offset(-2)), insts.Nop)

		stepN(e, 1)

		Expect(timer.calls).To(BeEmpty())
	})

	It("should ignore linking branches", func() {
		loadWords(e, 0x1000, insts.EncodeRegimm(uint8(insts.RegimmBGEZAL), 1, offset(-1)), insts.Nop)

		stepN(e, 1)

		Expect(timer.calls).To(BeEmpty())
	})

	It("should probe self-jumps", func() {
		loadWords(e, 0x1000, insts.EncodeJ(insts.OpcodeJ, 0x400), insts.Nop)

		stepN(e, 1)

		Expect(e.SkippedCycles()).To(Equal(uint64(500)))
	})

	DescribeTable("delay slot classification",
		func(slot insts.Word, safe bool) {
			loadWords(e, 0x1000, selfBranch, slot)

			stepN(e, 1)

			if safe {
				Expect(e.SkippedCycles()).To(Equal(uint64(500)))
			} else {
				Expect(e.SkippedCycles()).To(BeZero())
				Expect(timer.calls).To(BeEmpty())
			}
		},
		Entry("NOP", insts.Nop, true),
		Entry("ALU writing another register", insts.EncodeR(insts.FunctADDU, 1, 2, 3, 0), true),
		Entry("ALU writing rs", insts.EncodeR(insts.FunctADDU, 1, 2, 1, 0), false),
		Entry("ALU writing rt", insts.EncodeR(insts.FunctOR, 0, 0, 2, 0), false),
		Entry("MFHI into a free register", insts.EncodeR(insts.FunctMFHI, 0, 0, 4, 0), true),
		Entry("MTLO", insts.EncodeR(insts.FunctMTLO, 1, 0, 0, 0), true),
		Entry("multiply", insts.EncodeR(insts.FunctMULT, 1, 2, 0, 0), true),
		Entry("divide", insts.EncodeR(insts.FunctDDIVU, 1, 2, 0, 0), true),
		Entry("immediate writing another register", addiu(3, 1, 1), true),
		Entry("immediate writing rs", addiu(1, 1, 1), false),
		Entry("immediate writing r0", addiu(0, 1, 1), true),
		Entry("load into another register", insts.EncodeI(insts.OpcodeLW, 0, 3, 0x100), true),
		Entry("load into rt", insts.EncodeI(insts.OpcodeLBU, 0, 2, 0x100), false),
		Entry("unaligned load into rs", insts.EncodeI(insts.OpcodeLWL, 0, 1, 0x100), false),
		Entry("MFC0 into another register", insts.Word(0x40034800), true),
		Entry("MFC0 into rs", insts.Word(0x40014800), false),
		Entry("MTC0", insts.Word(0x40845800), false),
		Entry("ERET", insts.Word(0x42000018), false),
		Entry("TLBP", insts.Word(0x42000008), false),
		Entry("store", insts.EncodeI(insts.OpcodeSW, 0, 3, 0x100), false),
		Entry("store byte", insts.EncodeI(insts.OpcodeSB, 0, 3, 0x100), false),
		Entry("cache", insts.EncodeI(insts.OpcodeCACHE, 0, 0, 0), false),
		Entry("FPU move", insts.Word(0x44852000), false),
		Entry("FPU load", insts.EncodeI(insts.OpcodeLWC1, 0, 3, 0x100), false),
		Entry("SYNC", insts.EncodeR(insts.FunctSYNC, 0, 0, 0, 0), false),
		Entry("branch", insts.EncodeI(insts.OpcodeBEQ, 0, 0, 0), false),
	)

	It("should keep the architectural state of single-stepping", func() {
		plain := emu.NewEmulator(emu.WithCop0(&fakeCop0{}), emu.WithTimer(&fakeTimer{next: 500}))
		for _, m := range []*emu.Emulator{e, plain} {
			m.RegFile().WriteReg(1, 5)
			m.RegFile().WriteReg(2, 5)
			m.RegFile().WriteReg(7, 3)
			loadWords(m, 0x1000, selfBranch, insts.EncodeR(insts.FunctMULTU, 7, 7, 0, 0))
		}

		stepN(e, 200)
		stepN(plain, 200)

		Expect(e.SkippedCycles()).To(Equal(uint64(500)))
		Expect(plain.SkippedCycles()).To(BeZero())
		Expect(e.RegFile().GPR).To(Equal(plain.RegFile().GPR))
		Expect(e.RegFile().HI).To(Equal(plain.RegFile().HI))
		Expect(e.RegFile().LO).To(Equal(plain.RegFile().LO))
		Expect(e.RegFile().PC).To(Equal(plain.RegFile().PC))
	})

	Describe("probe through the control surface", func() {
		It("should report a safe following instruction", func() {
			cop0.safeIdle = 0
			loadWords(e, 0x1000, insts.Nop, addiu(3, 3, 1))

			Expect(e.Read32(emu.RegIdleProbe)).To(Equal(uint32(1)))
		})

		It("should report an unsafe following instruction", func() {
			loadWords(e, 0x1000, insts.Nop, insts.EncodeI(insts.OpcodeSW, 0, 3, 0x100))

			Expect(e.Read32(emu.RegIdleProbe)).To(Equal(uint32(0)))
			Expect(timer.calls).To(BeEmpty())
		})
	})
})
