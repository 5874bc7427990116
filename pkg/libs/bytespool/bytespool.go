package bytespool

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultClasses are the capacities used by nested message scratch buffers.
var DefaultClasses = []int{64, 256, 1024, 4096, 16384}

type class struct {
	size int
	free [][]byte
}

type BytesPool struct {
	mu          sync.Mutex
	poolSize    int
	classes     []*class
	allocations uint64
	putCalled   uint64
	getCalled   uint64
}

// NewBytesPool creates a pool keeping up to poolSize slices for every
// capacity class. Requests larger than the biggest class are served by plain
// allocations and never pooled.
func NewBytesPool(poolSize int, classes ...int) *BytesPool {
	if poolSize < 1 {
		panic("poolSize should be positive")
	}
	if len(classes) == 0 {
		classes = DefaultClasses
	}
	sorted := make([]int, len(classes))
	copy(sorted, classes)
	sort.Ints(sorted)
	cs := make([]*class, 0, len(sorted))
	for i, size := range sorted {
		if size < 1 {
			panic("class size should be positive")
		}
		if i > 0 && sorted[i-1] == size {
			continue
		}
		cs = append(cs, &class{size: size, free: make([][]byte, 0, poolSize)})
	}
	return &BytesPool{
		poolSize: poolSize,
		classes:  cs,
	}
}

// Get returns an empty slice with capacity of at least n.
// Notice, there is no memory zeroing, the bytes beyond length are as they were.
func (a *BytesPool) Get(n int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.getCalled++
	c := a.classFor(n)
	if c == nil {
		return a.alloc(n)
	}
	if l := len(c.free); l > 0 {
		bts := c.free[l-1]
		c.free[l-1] = nil
		c.free = c.free[:l-1]
		return bts[:0]
	}
	return a.alloc(c.size)
}

// Put returns bytes to the pool. A grown slice is kept in the largest class
// it still covers, slices smaller than every class are dropped.
func (a *BytesPool) Put(bts []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.putCalled++
	c := a.classBelow(cap(bts))
	if c == nil {
		zap.S().Warnf("BytesPool Put unexpected capacity %d", cap(bts))
		return
	}
	if len(c.free) >= a.poolSize {
		return
	}
	c.free = append(c.free, bts[:0:c.size])
}

// classFor returns the smallest class able to hold n bytes. Not thread safe.
func (a *BytesPool) classFor(n int) *class {
	i := sort.Search(len(a.classes), func(i int) bool { return a.classes[i].size >= n })
	if i == len(a.classes) {
		return nil
	}
	return a.classes[i]
}

// classBelow returns the largest class not exceeding the given capacity. Not thread safe.
func (a *BytesPool) classBelow(capacity int) *class {
	i := sort.Search(len(a.classes), func(i int) bool { return a.classes[i].size > capacity })
	if i == 0 {
		return nil
	}
	return a.classes[i-1]
}

// not thread safe
func (a *BytesPool) alloc(size int) []byte {
	a.allocations++
	return make([]byte, 0, size)
}

func (a *BytesPool) Allocations() uint64 {
	a.mu.Lock()
	out := a.allocations
	a.mu.Unlock()
	return out
}

func (a *BytesPool) Stat() (allocations, puts, gets uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocations, a.putCalled, a.getCalled
}
