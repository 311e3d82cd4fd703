package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m64sim/timing/cache"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		// Small cache for testing: 4KB, 4-way, 64B lines
		config := cache.Config{
			Size:             4 * 1024,
			Associativity:    4,
			BlockSize:        64,
			HitLatency:       1,
			MissLatency:      10,
			WritebackLatency: 5,
		}
		c = cache.New(config)
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			result := c.Read(0x1000)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			c.Read(0x1000)

			result := c.Read(0x1000)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should hit on different addresses in same cache line", func() {
			c.Read(0x1000)

			Expect(c.Read(0x1004).Hit).To(BeTrue())
			Expect(c.Read(0x103C).Hit).To(BeTrue())
			Expect(c.Read(0x1040).Hit).To(BeFalse())
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss", func() {
			result := c.Write(0x1000)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))

			Expect(c.Read(0x1000).Hit).To(BeTrue())
		})

		It("should hit on cached data", func() {
			c.Write(0x1000)

			result := c.Write(0x1000)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
		})
	})

	Describe("Eviction", func() {
		// 4KB / (4 * 64B) = 16 sets, so addresses 1 KiB apart share set 0.
		fill := func(write bool) {
			for _, addr := range []uint64{0x0000, 0x0400, 0x0800, 0x0C00} {
				if write {
					c.Write(addr)
				} else {
					c.Read(addr)
				}
			}
		}

		It("should evict the least recently used block when the set is full", func() {
			fill(false)
			c.Read(0x0400)
			c.Read(0x0800)
			c.Read(0x0C00)

			result := c.Read(0x1000)

			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())
			Expect(result.Writeback).To(BeFalse())
			Expect(result.EvictedAddr).To(Equal(uint64(0x0000)))
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(c.Contains(0x0000)).To(BeFalse())
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should charge the writeback of a dirty victim", func() {
			fill(true)
			c.Read(0x0400)
			c.Read(0x0800)
			c.Read(0x0C00)

			result := c.Read(0x1000)

			Expect(result.Writeback).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(15)))
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})
	})

	It("should drop a line on invalidate", func() {
		c.Write(0x2000)

		c.Invalidate(0x2010)

		Expect(c.Contains(0x2000)).To(BeFalse())
		Expect(c.Read(0x2000).Hit).To(BeFalse())
	})

	It("should write back every dirty line on flush", func() {
		c.Write(0x0000)
		c.Write(0x1000)
		c.Read(0x2000)

		Expect(c.Flush()).To(Equal(uint64(10)))
		Expect(c.Stats().Writebacks).To(Equal(uint64(2)))
		Expect(c.Contains(0x2000)).To(BeFalse())
	})

	It("should forget lines and statistics on reset", func() {
		c.Read(0x1000)

		c.Reset()

		Expect(c.Stats()).To(Equal(cache.Statistics{}))
		Expect(c.Contains(0x1000)).To(BeFalse())
	})

	Describe("Default configurations", func() {
		It("should describe the instruction cache", func() {
			config := cache.DefaultICacheConfig()
			Expect(config.Size).To(Equal(16 * 1024))
			Expect(config.Associativity).To(Equal(1))
			Expect(config.BlockSize).To(Equal(32))
		})

		It("should describe the data cache", func() {
			config := cache.DefaultDCacheConfig()
			Expect(config.Size).To(Equal(8 * 1024))
			Expect(config.Associativity).To(Equal(1))
			Expect(config.BlockSize).To(Equal(16))
		})

		It("should map addresses a cache size apart to the same line", func() {
			ic := cache.New(cache.DefaultICacheConfig())
			ic.Read(0x0000)
			ic.Read(0x4000)

			Expect(ic.Contains(0x0000)).To(BeFalse())
			Expect(ic.Contains(0x4000)).To(BeTrue())
		})
	})
})
