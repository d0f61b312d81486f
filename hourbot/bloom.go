package hourbot

import (
	"hash/fnv"
	"math"
)

type BloomAddStatus int

const (
	// value was novel and recorded
	BloomAdded BloomAddStatus = iota
	// value was (probably) seen before; false positives occur at the
	// configured error rate
	BloomSeen
	// value was novel and recorded, but the filter has reached its sized
	// capacity and no longer bounds the error rate
	BloomFull
)

// BloomFilter is a fixed-size probabilistic set with one-sided error: it can
// claim a never-seen value was seen (at the configured rate), never the
// reverse. It only grows; bits are never cleared.
//
// Sizing follows the standard construction: m = ceil(-n*ln(p)/ln(2)^2) bits
// and k = ceil((m/n)*ln(2)) indexes per value, for n expected values at
// false-positive rate p.
//
// Not safe for concurrent use.
type BloomFilter struct {
	words     []uint64
	bitCount  uint64
	hashCount int
	size      int
	maxSize   int
}

func NewBloomFilter(maxSize int, errorRate float64) *BloomFilter {
	maxSize = max(maxSize, 1)
	m := uint64(math.Ceil(-float64(maxSize) * math.Log(errorRate) / (math.Ln2 * math.Ln2)))
	m = max(m, 1)
	k := int(math.Ceil(math.Ln2 * float64(m) / float64(maxSize)))
	return &BloomFilter{
		words:     make([]uint64, (m+63)/64),
		bitCount:  m,
		hashCount: max(k, 1),
		maxSize:   maxSize,
	}
}

// Size returns the number of values recorded so far.
func (self *BloomFilter) Size() int {
	return self.size
}

func (self *BloomFilter) MaxSize() int {
	return self.maxSize
}

// Add records value. BloomSeen means every derived bit was already set -
// value is a duplicate or a false positive. Once size reaches maxSize,
// novel values are still recorded but reported as BloomFull; the caller
// decides whether to keep degrading or stop.
func (self *BloomFilter) Add(value string) BloomAddStatus {
	h1, h2 := self.hashes(value)
	novel := false
	for i := 0; i < self.hashCount; i += 1 {
		index := (h1 + uint64(i)*h2) % self.bitCount
		word := index / 64
		bit := uint64(1) << (index % 64)
		if self.words[word]&bit == 0 {
			novel = true
			self.words[word] |= bit
		}
	}
	if !novel {
		return BloomSeen
	}
	self.size += 1
	if self.maxSize < self.size {
		return BloomFull
	}
	return BloomAdded
}

// double hashing, so one pass over the value yields all k indexes
func (self *BloomFilter) hashes(value string) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte(value))
	h1 := h.Sum64()
	h.Write([]byte{0})
	h2 := h.Sum64() | 1
	return h1, h2
}
