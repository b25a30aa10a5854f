// Package pools provides the byte-buffer pooling behind the engine's read
// buffers and response serialization.
package pools

import "sync"

// BytePool is a multi-tiered byte slice pool for different size classes.
type BytePool struct {
	pools []*sync.Pool
	sizes []int
}

// Tiers sized for typical HTTP header blocks and small bodies.
var defaultSizes = []int{512, 2048, 8192, 32768}

// NewBytePool creates a byte pool with the standard size tiers.
func NewBytePool() *BytePool {
	bp := &BytePool{
		pools: make([]*sync.Pool, len(defaultSizes)),
		sizes: defaultSizes,
	}
	for i, size := range defaultSizes {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, sz)
				return &buf
			},
		}
	}
	return bp
}

// Get returns a byte slice of exactly the requested length, drawn from the
// smallest tier that fits. Oversized requests allocate directly.
func (bp *BytePool) Get(size int) []byte {
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			buf := *bp.pools[i].Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a slice to its tier. Slices whose capacity matches no tier
// (including buffers grown past their tier by append) are left to the GC.
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)
	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			buf = buf[:capacity]
			bp.pools[i].Put(&buf)
			return
		}
	}
}

var globalBytePool = NewBytePool()

// GetBytes draws from the process-wide pool.
func GetBytes(size int) []byte {
	return globalBytePool.Get(size)
}

// PutBytes returns bytes to the process-wide pool.
func PutBytes(buf []byte) {
	globalBytePool.Put(buf)
}
