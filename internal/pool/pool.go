// Package pool provides bucketed sync.Pool instances for the float32
// scratch rows used by the separable filters. Buffers are organized by
// size class to minimize waste in hot per-row loops.
package pool

import "sync"

// Size classes for bucketed pools, in float32 elements.
const (
	Size256  = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
)

// bucketIndex returns the pool index for a given element count.
func bucketIndex(n int) int {
	switch {
	case n <= Size256:
		return 0
	case n <= Size1K:
		return 1
	case n <= Size4K:
		return 2
	case n <= Size16K:
		return 3
	case n <= Size64K:
		return 4
	default:
		return 5
	}
}

var sizes = [6]int{Size256, Size1K, Size4K, Size16K, Size64K, Size256K}

var pools [6]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]float32, sz)
				return &b
			},
		}
	}
}

// Get returns a float32 slice of at least n elements from the pool. The
// returned slice has length n and may have a larger capacity. The caller
// must call Put when done.
func Get(n int) []float32 {
	bp := pools[bucketIndex(n)].Get().(*[]float32)
	b := *bp
	if cap(b) < n {
		b = make([]float32, n)
		*bp = b
		return b
	}
	return b[:n]
}

// Put returns a slice to the pool. The slice must have been obtained from
// Get. Slices smaller than Size256 are not pooled.
func Put(b []float32) {
	c := cap(b)
	if c < Size256 {
		return
	}
	b = b[:c]
	pools[bucketIndex(c)].Put(&b)
}
