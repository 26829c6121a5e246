// Package cache models the L1 caches of the simulated core.
//
// Tag, valid/dirty state, and LRU bookkeeping are kept in an Akita cache
// directory. The directory's visit-order LRU is driven only by simulated
// accesses, so replacement decisions are deterministic for a given
// program. Data values stay in main memory: the core consults the cache
// for hit/miss accounting and line state only, and does not apply the
// reported latency to its execution timing.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Sets is the number of sets.
	Sets int
	// Associativity is the number of ways per set.
	Associativity int
	// BlockSize is the cache line size in bytes.
	BlockSize int
	// HitLatency is the access latency on a hit, in cycles.
	HitLatency uint64
	// MissPenalty is the extra latency added on a miss, in cycles.
	MissPenalty uint64
}

// DefaultL1IConfig returns the default L1 instruction cache
// configuration: 32 sets, 2-way, 64 B lines, 1-cycle hit.
func DefaultL1IConfig() Config {
	return Config{
		Sets:          32,
		Associativity: 2,
		BlockSize:     64,
		HitLatency:    1,
		MissPenalty:   10,
	}
}

// DefaultL1DConfig returns the default L1 data cache configuration:
// 32 sets, 2-way, 64 B lines, 2-cycle hit.
func DefaultL1DConfig() Config {
	return Config{
		Sets:          32,
		Associativity: 2,
		BlockSize:     64,
		HitLatency:    2,
		MissPenalty:   10,
	}
}

// AccessResult reports the outcome of a cache access.
type AccessResult struct {
	// Hit indicates whether the access hit in the cache.
	Hit bool
	// Latency is the number of cycles the access takes:
	// HitLatency on a hit, HitLatency+MissPenalty on a miss.
	Latency uint64
}

// Statistics holds cache performance counters.
type Statistics struct {
	Accesses uint64
	Hits     uint64
	Misses   uint64
}

// HitRate returns the hit rate as a percentage.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses) * 100
}

// Cache is a set-associative write-back cache model.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a cache with the given configuration.
func New(config Config) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.Sets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns the access counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Access looks up the block containing addr, refreshing LRU state on a
// hit and allocating over the LRU victim on a miss. A write marks the
// line dirty. Dirty evictions are accepted silently: writeback traffic
// is not part of the timing model.
func (c *Cache) Access(addr uint32, isWrite bool) AccessResult {
	c.stats.Accesses++

	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if isWrite {
			block.IsDirty = true
		}
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim != nil {
		victim.Tag = blockAddr
		victim.IsValid = true
		victim.IsDirty = isWrite
		c.directory.Visit(victim)
	}

	return AccessResult{
		Hit:     false,
		Latency: c.config.HitLatency + c.config.MissPenalty,
	}
}

// Read performs a read access.
func (c *Cache) Read(addr uint32) AccessResult {
	return c.Access(addr, false)
}

// Write performs a write access.
func (c *Cache) Write(addr uint32) AccessResult {
	return c.Access(addr, true)
}

// Reset invalidates all lines and clears the counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// blockAddr returns the block-aligned address for addr.
func (c *Cache) blockAddr(addr uint32) uint64 {
	bs := uint64(c.config.BlockSize)
	return uint64(addr) / bs * bs
}
