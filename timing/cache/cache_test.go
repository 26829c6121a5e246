package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Printf-PedroCardoso/Pipeline-simulator/timing/cache"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		// 32 sets, 2-way, 64B lines, 1-cycle hit, 10-cycle miss penalty
		c = cache.New(cache.Config{
			Sets:          32,
			Associativity: 2,
			BlockSize:     64,
			HitLatency:    1,
			MissPenalty:   10,
		})
	})

	It("should miss on a cold cache with full latency", func() {
		result := c.Read(0x1000)
		Expect(result.Hit).To(BeFalse())
		Expect(result.Latency).To(Equal(uint64(11)))

		stats := c.Stats()
		Expect(stats.Accesses).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(0)))
	})

	It("should hit on a warmed line", func() {
		c.Read(0x1000)

		result := c.Read(0x1000)
		Expect(result.Hit).To(BeTrue())
		Expect(result.Latency).To(Equal(uint64(1)))

		stats := c.Stats()
		Expect(stats.Accesses).To(Equal(uint64(2)))
		Expect(stats.Hits).To(Equal(uint64(1)))
	})

	It("should hit anywhere within the same block", func() {
		c.Read(0x1000)
		result := c.Read(0x103C)
		Expect(result.Hit).To(BeTrue())
	})

	It("should evict the least recently used way", func() {
		// Three block addresses that map to the same set of a
		// 32-set, 64B-block cache (stride = 32*64 = 0x800).
		c.Read(0x0000)
		c.Read(0x0800)
		c.Read(0x0000)  // refresh 0x0000
		c.Read(0x1000)  // evicts 0x0800

		Expect(c.Read(0x0000).Hit).To(BeTrue())
		Expect(c.Read(0x0800).Hit).To(BeFalse())
	})

	It("should keep both ways of a set resident", func() {
		c.Read(0x0000)
		c.Read(0x0800)
		Expect(c.Read(0x0000).Hit).To(BeTrue())
		Expect(c.Read(0x0800).Hit).To(BeTrue())
	})

	It("should count writes as accesses", func() {
		c.Write(0x2000)
		c.Write(0x2000)

		stats := c.Stats()
		Expect(stats.Accesses).To(Equal(uint64(2)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(1)))
	})

	It("should accept a dirty eviction silently", func() {
		c.Write(0x0000)
		c.Read(0x0800)
		c.Read(0x1000) // evicts the dirty 0x0000 line

		Expect(c.Read(0x0000).Hit).To(BeFalse())
	})

	It("should clear state and counters on reset", func() {
		c.Read(0x1000)
		c.Reset()

		Expect(c.Read(0x1000).Hit).To(BeFalse())
		Expect(c.Stats().Accesses).To(Equal(uint64(1)))
	})

	It("should report the hit rate", func() {
		c.Read(0x1000)
		c.Read(0x1000)
		c.Read(0x1000)
		c.Read(0x1000)
		Expect(c.Stats().HitRate()).To(BeNumerically("==", 75))
	})

	It("should expose its configuration", func() {
		Expect(c.Config().Sets).To(Equal(32))
		Expect(c.Config().Associativity).To(Equal(2))
	})
})
