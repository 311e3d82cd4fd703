package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/insts"
)

func load(op uint32, rt, base uint8, off int16) insts.Word {
	return insts.EncodeI(op, base, rt, uint16(off))
}

var _ = Describe("Loads and stores", func() {
	var (
		e    *emu.Emulator
		cop0 *fakeCop0
		mem  *emu.Memory
	)

	BeforeEach(func() {
		cop0 = &fakeCop0{}
		e = emu.NewEmulator(emu.WithCop0(cop0))
		mem = e.Memory()
	})

	Describe("aligned accesses", func() {
		BeforeEach(func() {
			mem.Write64(0x2000, 0x8899AABBCCDDEEFF)
			e.RegFile().WriteReg(5, 0x2000)
		})

		DescribeTable("should extend loaded values",
			func(op uint32, off int16, want uint64) {
				loadWords(e, 0x1000, load(op, 3, 5, off))

				stepN(e, 1)

				Expect(e.RegFile().ReadReg(3)).To(Equal(want))
			},
			Entry("LB", insts.OpcodeLB, int16(0), uint64(0xFFFFFFFFFFFFFF88)),
			Entry("LBU", insts.OpcodeLBU, int16(0), uint64(0x88)),
			Entry("LH", insts.OpcodeLH, int16(2), uint64(0xFFFFFFFFFFFFAABB)),
			Entry("LHU", insts.OpcodeLHU, int16(2), uint64(0xAABB)),
			Entry("LW", insts.OpcodeLW, int16(0), uint64(0xFFFFFFFF8899AABB)),
			Entry("LWU", insts.OpcodeLWU, int16(0), uint64(0x8899AABB)),
			Entry("LD", insts.OpcodeLD, int16(0), uint64(0x8899AABBCCDDEEFF)),
		)

		It("should address through KSEG0", func() {
			e.RegFile().WriteReg32(6, 0x80002000)
			loadWords(e, 0x1000, load(insts.OpcodeLWU, 3, 6, 4))

			stepN(e, 1)

			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0xCCDDEEFF)))
		})

		It("should store each width big-endian", func() {
			e.RegFile().WriteReg(7, 0x0102030405060708)
			e.RegFile().WriteReg(8, 0x3000)
			loadWords(e, 0x1000,
				load(insts.OpcodeSD, 7, 8, 0),
				load(insts.OpcodeSW, 7, 8, 8),
				load(insts.OpcodeSH, 7, 8, 12),
				load(insts.OpcodeSB, 7, 8, 14),
			)

			stepN(e, 4)

			Expect(mem.Read64(0x3000)).To(Equal(uint64(0x0102030405060708)))
			Expect(mem.Read32(0x3008)).To(Equal(uint32(0x05060708)))
			Expect(mem.Read16(0x300C)).To(Equal(uint16(0x0708)))
			Expect(mem.Read8(0x300E)).To(Equal(uint8(0x08)))
		})
	})

	Describe("alignment faults", func() {
		It("should fault an unaligned LW at 0x1002 without touching registers", func() {
			e.RegFile().WriteReg(4, 0x1000)
			e.RegFile().WriteReg(3, 0x55)
			loadWords(e, 0x400, load(insts.OpcodeLW, 3, 4, 2))
			before := e.RegFile().GPR

			stepN(e, 1)

			Expect(cop0.written(emu.Cop0RegBadVAddr)).To(Equal([]uint32{0x1002}))
			Expect(cop0.written(emu.Cop0RegException)).To(Equal([]uint32{emu.ExcAddressLoad}))
			Expect(e.RegFile().GPR).To(Equal(before))
			Expect(e.RegFile().PC).To(Equal(uint32(0x404)))
		})

		It("should fault an unaligned SW and leave memory unchanged", func() {
			mem.Write32(0x2000, 0xAAAAAAAA)
			e.RegFile().WriteReg(4, 0x2000)
			e.RegFile().WriteReg(3, 0x12345678)
			loadWords(e, 0x400, load(insts.OpcodeSW, 3, 4, 1))

			stepN(e, 1)

			Expect(cop0.written(emu.Cop0RegBadVAddr)).To(Equal([]uint32{0x2001}))
			Expect(cop0.written(emu.Cop0RegException)).To(Equal([]uint32{emu.ExcAddressStore}))
			Expect(mem.Read32(0x2000)).To(Equal(uint32(0xAAAAAAAA)))
		})

		DescribeTable("should check natural alignment",
			func(op uint32, off int16, code uint32) {
				e.RegFile().WriteReg(4, 0x2000)
				loadWords(e, 0x400, load(op, 3, 4, off))

				stepN(e, 1)

				Expect(cop0.written(emu.Cop0RegException)).To(Equal([]uint32{code}))
			},
			Entry("LH", insts.OpcodeLH, int16(1), emu.ExcAddressLoad),
			Entry("LHU", insts.OpcodeLHU, int16(3), emu.ExcAddressLoad),
			Entry("LWU", insts.OpcodeLWU, int16(2), emu.ExcAddressLoad),
			Entry("LD", insts.OpcodeLD, int16(4), emu.ExcAddressLoad),
			Entry("LL", insts.OpcodeLL, int16(2), emu.ExcAddressLoad),
			Entry("LLD", insts.OpcodeLLD, int16(4), emu.ExcAddressLoad),
			Entry("SH", insts.OpcodeSH, int16(1), emu.ExcAddressStore),
			Entry("SD", insts.OpcodeSD, int16(4), emu.ExcAddressStore),
			Entry("SC", insts.OpcodeSC, int16(2), emu.ExcAddressStore),
			Entry("SCD", insts.OpcodeSCD, int16(4), emu.ExcAddressStore),
		)

		It("should fault a misaligned PC without executing", func() {
			e.RegFile().PC = 0x1002

			stepN(e, 1)

			Expect(cop0.written(emu.Cop0RegBadVAddr)).To(Equal([]uint32{0x1002}))
			Expect(cop0.written(emu.Cop0RegException)).To(Equal([]uint32{emu.ExcAddressLoad}))
		})
	})

	Describe("unaligned word accesses", func() {
		It("should assemble a word with LWL/LWR", func() {
			mem.Write64(0x2000, 0x1122334455667788)
			e.RegFile().WriteReg(5, 0x2000)
			e.RegFile().WriteReg32(3, 0xAABBCCDD)
			loadWords(e, 0x1000,
				load(insts.OpcodeLWL, 3, 5, 1),
				load(insts.OpcodeLWR, 3, 5, 4),
			)

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0x223344DD)))

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0x22334455)))
		})

		It("should sign-extend LWL results", func() {
			mem.Write32(0x2000, 0x8899AABB)
			e.RegFile().WriteReg(5, 0x2000)
			loadWords(e, 0x1000, load(insts.OpcodeLWL, 3, 5, 0))

			stepN(e, 1)

			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0xFFFFFFFF8899AABB)))
		})

		It("should store a word with SWL/SWR", func() {
			e.RegFile().WriteReg32(6, 0xDEADBEEF)
			e.RegFile().WriteReg(7, 0x3000)
			loadWords(e, 0x1000,
				load(insts.OpcodeSWL, 6, 7, 1),
				load(insts.OpcodeSWR, 6, 7, 4),
			)

			stepN(e, 2)

			Expect(mem.Read32(0x3000)).To(Equal(uint32(0x00DEADBE)))
			Expect(mem.Read32(0x3004)).To(Equal(uint32(0xEF000000)))
		})

		DescribeTable("LWR keeps the upper register bytes",
			func(off int16, want uint32) {
				mem.Write32(0x2000, 0x11223344)
				e.RegFile().WriteReg(5, 0x2000)
				e.RegFile().WriteReg32(3, 0xAABBCCDD)
				loadWords(e, 0x1000, load(insts.OpcodeLWR, 3, 5, off))

				stepN(e, 1)

				Expect(e.RegFile().ReadReg32(3)).To(Equal(want))
			},
			Entry("offset 0", int16(0), uint32(0xAABBCC11)),
			Entry("offset 1", int16(1), uint32(0xAABB1122)),
			Entry("offset 2", int16(2), uint32(0xAA112233)),
			Entry("offset 3", int16(3), uint32(0x11223344)),
		)

		DescribeTable("SWL stores the upper register bytes",
			func(off int16, want uint32) {
				mem.Write32(0x2000, 0x11223344)
				e.RegFile().WriteReg(5, 0x2000)
				e.RegFile().WriteReg32(3, 0xAABBCCDD)
				loadWords(e, 0x1000, load(insts.OpcodeSWL, 3, 5, off))

				stepN(e, 1)

				Expect(mem.Read32(0x2000)).To(Equal(want))
			},
			Entry("offset 0", int16(0), uint32(0xAABBCCDD)),
			Entry("offset 1", int16(1), uint32(0x11AABBCC)),
			Entry("offset 2", int16(2), uint32(0x1122AABB)),
			Entry("offset 3", int16(3), uint32(0x112233AA)),
		)

		DescribeTable("SWR stores the lower register bytes",
			func(off int16, want uint32) {
				mem.Write32(0x2000, 0x11223344)
				e.RegFile().WriteReg(5, 0x2000)
				e.RegFile().WriteReg32(3, 0xAABBCCDD)
				loadWords(e, 0x1000, load(insts.OpcodeSWR, 3, 5, off))

				stepN(e, 1)

				Expect(mem.Read32(0x2000)).To(Equal(want))
			},
			Entry("offset 0", int16(0), uint32(0xDD223344)),
			Entry("offset 1", int16(1), uint32(0xCCDD3344)),
			Entry("offset 2", int16(2), uint32(0xBBCCDD44)),
			Entry("offset 3", int16(3), uint32(0xAABBCCDD)),
		)
	})

	Describe("unaligned doubleword accesses", func() {
		It("should assemble a doubleword with LDL/LDR", func() {
			mem.Write64(0x4000, 0x0001020304050607)
			mem.Write64(0x4008, 0x08090A0B0C0D0E0F)
			e.RegFile().WriteReg(8, 0x4000)
			loadWords(e, 0x1000,
				load(insts.OpcodeLDL, 3, 8, 3),
				load(insts.OpcodeLDR, 3, 8, 10),
			)

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0x0304050607000000)))

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0x030405060708090A)))
		})

		It("should store a doubleword with SDL/SDR", func() {
			e.RegFile().WriteReg(9, 0x0102030405060708)
			e.RegFile().WriteReg(10, 0x5000)
			loadWords(e, 0x1000,
				load(insts.OpcodeSDL, 9, 10, 5),
				load(insts.OpcodeSDR, 9, 10, 12),
			)

			stepN(e, 2)

			Expect(mem.Read64(0x5000)).To(Equal(uint64(0x0000000000010203)))
			Expect(mem.Read64(0x5008)).To(Equal(uint64(0x0405060708000000)))
		})

		It("should treat the boundary offsets as full accesses", func() {
			mem.Write64(0x4000, 0x1111111111111111)
			e.RegFile().WriteReg(9, 0x0102030405060708)
			e.RegFile().WriteReg(10, 0x4000)
			loadWords(e, 0x1000,
				load(insts.OpcodeSDL, 9, 10, 0),
				load(insts.OpcodeLDR, 11, 10, 7),
			)

			stepN(e, 2)

			Expect(mem.Read64(0x4000)).To(Equal(uint64(0x0102030405060708)))
			Expect(e.RegFile().ReadReg(11)).To(Equal(uint64(0x0102030405060708)))
		})
	})

	Describe("load-linked / store-conditional", func() {
		BeforeEach(func() {
			mem.Write32(0x2000, 41)
			e.RegFile().WriteReg(4, 0x2000)
		})

		It("should store when the link is intact", func() {
			loadWords(e, 0x1000,
				load(insts.OpcodeLL, 3, 4, 0),
				addiu(3, 3, 1),
				load(insts.OpcodeSC, 3, 4, 0),
			)

			stepN(e, 3)

			Expect(mem.Read32(0x2000)).To(Equal(uint32(42)))
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(1)))
			Expect(e.RegFile().LLBit).To(BeTrue())
		})

		It("should fail when the link was broken", func() {
			e.RegFile().WriteReg(3, 99)
			loadWords(e, 0x1000, load(insts.OpcodeSC, 3, 4, 0))

			stepN(e, 1)

			Expect(mem.Read32(0x2000)).To(Equal(uint32(41)))
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint64(0)))
		})
	})

	Describe("FPU loads and stores", func() {
		var cop1 *fakeCop1

		BeforeEach(func() {
			cop1 = &fakeCop1{}
			e = emu.NewEmulator(emu.WithCop1(cop1))
			mem = e.Memory()
		})

		It("should move words between memory and FPRs", func() {
			mem.Write32(0x2000, 0x3F800000)
			e.RegFile().WriteReg(4, 0x2000)
			loadWords(e, 0x1000,
				load(insts.OpcodeLWC1, 2, 4, 0),
				load(insts.OpcodeSWC1, 2, 4, 8),
			)

			stepN(e, 2)

			Expect(cop1.regs[2]).To(Equal(uint32(0x3F800000)))
			Expect(mem.Read32(0x2008)).To(Equal(uint32(0x3F800000)))
		})

		It("should move doublewords through the even/odd pair", func() {
			mem.Write64(0x2000, 0x400921FB54442D18)
			e.RegFile().WriteReg(4, 0x2000)
			loadWords(e, 0x1000, load(insts.OpcodeLDC1, 6, 4, 0))

			stepN(e, 1)

			Expect(cop1.regs[6]).To(Equal(uint32(0x54442D18)))
			Expect(cop1.regs[7]).To(Equal(uint32(0x400921FB)))
		})
	})
})
