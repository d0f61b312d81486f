package hourbot

import (
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestBloomFilterBasic(t *testing.T) {
	bloom := NewBloomFilter(100, 0.01)
	assert.Equal(t, 0, bloom.Size())
	assert.Equal(t, 100, bloom.MaxSize())

	assert.Equal(t, BloomAdded, bloom.Add("a"))
	assert.Equal(t, BloomSeen, bloom.Add("a"))
	assert.Equal(t, BloomAdded, bloom.Add("b"))
	assert.Equal(t, 2, bloom.Size())
}

func TestBloomFilterErrorRate(t *testing.T) {
	n := 1000
	errorRate := 0.01

	bloom := NewBloomFilter(n, errorRate)
	for i := 0; i < n; i += 1 {
		bloom.Add(fmt.Sprintf("member-%d", i))
	}

	// inserted members always report seen
	for i := 0; i < n; i += 1 {
		assert.Equal(t, BloomSeen, bloom.Add(fmt.Sprintf("member-%d", i)))
	}
	assert.Equal(t, n, bloom.Size())

	bloom = NewBloomFilter(n, errorRate)
	for i := 0; i < n; i += 1 {
		bloom.Add(fmt.Sprintf("member-%d", i))
	}
	falsePositives := 0
	for i := 0; i < n; i += 1 {
		if bloom.Add(fmt.Sprintf("probe-%d", i)) == BloomSeen {
			falsePositives += 1
		}
	}
	// designed for 1%, allow slack for hash quality
	assert.Equal(t, true, falsePositives <= n/25)
}

func TestBloomFilterFull(t *testing.T) {
	bloom := NewBloomFilter(2, 1e-9)
	assert.Equal(t, BloomAdded, bloom.Add("a"))
	assert.Equal(t, BloomAdded, bloom.Add("b"))
	assert.Equal(t, BloomFull, bloom.Add("c"))
	// a full filter still records, so repeats stay deduplicated
	assert.Equal(t, BloomSeen, bloom.Add("c"))
}

func TestBloomFilterTinySize(t *testing.T) {
	bloom := NewBloomFilter(0, 0.01)
	assert.Equal(t, 1, bloom.MaxSize())
	assert.Equal(t, BloomAdded, bloom.Add("only"))
}
