package emu_test

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/insts"
)

// stallModel charges fixed stalls and records what it was asked about.
type stallModel struct {
	fetch, data, exec uint32
	fetched           []uint32
	accessed          []uint32
	executed          []insts.Op
}

func (m *stallModel) Fetch(phys uint32) uint32 {
	m.fetched = append(m.fetched, phys)
	return m.fetch
}

func (m *stallModel) Data(phys uint32, _ bool) uint32 {
	m.accessed = append(m.accessed, phys)
	return m.data
}

func (m *stallModel) Execute(inst *insts.Instruction) uint32 {
	m.executed = append(m.executed, inst.Op)
	return m.exec
}

var _ = Describe("Emulator", func() {
	var (
		e      *emu.Emulator
		cop0   *fakeCop0
		logger *logrus.Logger
		hook   *test.Hook
	)

	BeforeEach(func() {
		cop0 = &fakeCop0{}
		logger, hook = test.NewNullLogger()
		e = emu.NewEmulator(emu.WithCop0(cop0), emu.WithLogger(logger))
	})

	Describe("unknown instructions", func() {
		It("should stop with an error naming the word", func() {
			loadWords(e, 0x1000, insts.Nop, insts.Word(0x70000000))

			err := e.Run()

			Expect(err).To(MatchError(emu.ErrUnknownInstruction))
			Expect(err.Error()).To(ContainSubstring("0x70000000"))
			Expect(e.InstructionCount()).To(Equal(uint64(2)))
		})

		It("should log the failure", func() {
			loadWords(e, 0x1000, insts.Word(0x70000000))

			e.Step()

			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Level).To(Equal(logrus.ErrorLevel))
			Expect(hook.LastEntry().Message).To(Equal("unknown instruction"))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("pc", "0x00001000"))
		})

		It("should keep returning the error", func() {
			loadWords(e, 0x1000, insts.Word(0x70000000), insts.Nop)

			first := e.Step().Err
			second := e.Step().Err

			Expect(second).To(Equal(first))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should reject reserved COP0 sub-operations", func() {
			loadWords(e, 0x1000, insts.Word(0x40600000))

			Expect(e.Step().Err).To(MatchError(emu.ErrUnknownInstruction))
		})

		It("should reject reserved REGIMM encodings", func() {
			loadWords(e, 0x1000, insts.EncodeRegimm(0x1F, 0, 0))

			Expect(e.Step().Err).To(MatchError(emu.ErrUnknownInstruction))
		})
	})

	Describe("Run", func() {
		It("should return when stopped by a collaborator", func() {
			cop0.onWrite = func(index, value uint32) {
				if index == emu.Cop0RegException && value == emu.ExcSyscall {
					e.Stop()
				}
			}
			loadWords(e, 0x1000,
				addiu(1, 1, 1),
				insts.EncodeR(insts.FunctSYSCALL, 0, 0, 0, 0),
				addiu(2, 2, 1),
			)

			Expect(e.Run()).To(Succeed())
			Expect(e.InstructionCount()).To(Equal(uint64(2)))
			Expect(e.RegFile().ReadReg(2)).To(BeZero())
		})

		It("should stop at the instruction limit", func() {
			e = emu.NewEmulator(emu.WithMaxInstructions(10))
			loadWords(e, 0x1000, insts.EncodeI(insts.OpcodeBEQ, 0, 0, offset(-1)), addiu(1, 1, 1))

			err := e.Run()

			Expect(err).To(MatchError(emu.ErrMaxInstructions))
			Expect(e.InstructionCount()).To(Equal(uint64(10)))
		})

		It("should take the instruction limit from the config", func() {
			config := emu.DefaultConfig()
			config.MaxInstructions = 3
			e = emu.NewEmulator(emu.WithConfig(config))
			loadWords(e, 0x1000, insts.Nop, insts.Nop, insts.Nop, insts.Nop)

			Expect(e.Run()).To(MatchError(emu.ErrMaxInstructions))
			Expect(e.InstructionCount()).To(Equal(uint64(3)))
		})
	})

	It("should load a program and point the PC at its entry", func() {
		program := []byte{0x24, 0x21, 0x00, 0x05} // addiu $1, $1, 5

		e.LoadProgram(0x80000400, 0x400, program)
		stepN(e, 1)

		Expect(e.RegFile().ReadReg(1)).To(Equal(uint64(5)))
		Expect(e.RegFile().PC).To(Equal(uint32(0x80000404)))
	})

	It("should fault on a misaligned PC and move on", func() {
		loadWords(e, 0x1000, insts.Nop)
		e.RegFile().PC = 0x1002

		Expect(e.Step().Err).NotTo(HaveOccurred())

		Expect(cop0.written(emu.Cop0RegBadVAddr)).To(Equal([]uint32{0x1002}))
		Expect(cop0.written(emu.Cop0RegException)).To(Equal([]uint32{emu.ExcAddressLoad}))
	})

	It("should reset the CPU and keep memory", func() {
		loadWords(e, 0x1000, addiu(1, 1, 1), insts.Word(0x70000000))
		e.Run()

		e.Reset()

		Expect(e.RegFile().ReadReg(1)).To(BeZero())
		Expect(e.RegFile().PC).To(BeZero())
		Expect(e.InstructionCount()).To(BeZero())
		Expect(e.BranchState()).To(Equal(emu.BranchNormal))
		Expect(e.Memory().Read32(0x1000)).To(Equal(uint32(addiu(1, 1, 1))))

		e.RegFile().PC = 0x1000
		stepN(e, 1)
		Expect(e.RegFile().ReadReg(1)).To(Equal(uint64(1)))
	})

	Describe("cycle model", func() {
		It("should add stalls to the elapsed ticks", func() {
			model := &stallModel{fetch: 1, data: 3, exec: 2}
			e = emu.NewEmulator(emu.WithCycleModel(model))
			loadWords(e, 0x1000, addiu(1, 1, 1), insts.EncodeI(insts.OpcodeLW, 0, 2, 0x100))
			e.RegFile().PC = 0x80001000

			stepN(e, 2)

			Expect(model.fetched).To(Equal([]uint32{0x1000, 0x1004}))
			Expect(model.accessed).To(Equal([]uint32{0x100}))
			Expect(model.executed).To(Equal([]insts.Op{insts.OpADDIU, insts.OpLW}))
			Expect(e.Read64(emu.RegTicks)).To(Equal(uint64(2 + 3 + 6)))
		})
	})

	It("should trace executed instructions", func() {
		logger.SetLevel(logrus.TraceLevel)
		e = emu.NewEmulator(emu.WithLogger(logger), emu.WithTrace(true))
		loadWords(e, 0x1000, addiu(1, 1, 1), insts.Nop)

		stepN(e, 2)

		Expect(hook.Entries).To(HaveLen(2))
		Expect(hook.Entries[0].Level).To(Equal(logrus.TraceLevel))
		Expect(hook.Entries[0].Data).To(HaveKeyWithValue("word", "0x24210001"))
		Expect(hook.Entries[1].Message).To(Equal("nop"))
	})
})
