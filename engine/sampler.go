package engine

import "hash/fnv"

// Sampler is a deterministic PRNG used for lottery draws. Seeded from the
// rule's persisted lottery seed, the same seed over the same pool always
// yields the same winners, making every draw reproducible for audit.
type Sampler struct {
	state uint64
}

// NewSampler derives the PRNG state from an arbitrary seed string.
func NewSampler(seed string) *Sampler {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &Sampler{state: state}
}

func (s *Sampler) next() uint64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.state = x
	return x
}

// Intn returns a value in [0, n).
func (s *Sampler) Intn(n int) int {
	return int(s.next() % uint64(n))
}

// Sample draws k distinct indices from [0, n) without replacement using a
// partial Fisher-Yates shuffle. When k >= n every index is returned. The
// returned order is the draw order.
func (s *Sampler) Sample(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.Intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices[:k]
}
