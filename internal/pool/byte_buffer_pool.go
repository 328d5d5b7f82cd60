// Package pool provides pooled byte buffers for line re-assembly.
//
// Decompression allocates one output line per satellite per epoch; the pool
// keeps those transient buffers off the garbage collector on long streams.
package pool

import "sync"

const (
	// LineBufferDefaultSize covers a full 80-column RINEX line plus wrapped
	// continuations for busy epochs.
	LineBufferDefaultSize = 512

	// LineBufferMaxThreshold bounds what the pool retains; oversized buffers
	// (pathological satellite counts) are dropped instead of cached.
	LineBufferMaxThreshold = 16 * 1024
)

// ByteBuffer is a reusable byte slice with append-style helpers.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Reset empties the buffer while retaining its allocation.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the current length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// String returns the buffer content as a freshly allocated string.
func (bb *ByteBuffer) String() string {
	return string(bb.B)
}

// WriteString appends s to the buffer.
func (bb *ByteBuffer) WriteString(s string) {
	bb.B = append(bb.B, s...)
}

// MustWriteByte appends a single byte to the buffer.
func (bb *ByteBuffer) MustWriteByte(c byte) {
	bb.B = append(bb.B, c)
}

// PadTo appends spaces until the buffer holds at least n bytes.
func (bb *ByteBuffer) PadTo(n int) {
	for len(bb.B) < n {
		bb.B = append(bb.B, ' ')
	}
}

// ByteBufferPool is a sync.Pool of ByteBuffers with a retention threshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given default
// size. Buffers whose capacity grew beyond maxThreshold are not retained.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var lineDefaultPool = NewByteBufferPool(LineBufferDefaultSize, LineBufferMaxThreshold)

// GetLineBuffer retrieves a ByteBuffer from the default line pool.
func GetLineBuffer() *ByteBuffer {
	return lineDefaultPool.Get()
}

// PutLineBuffer returns a ByteBuffer to the default line pool.
func PutLineBuffer(bb *ByteBuffer) {
	lineDefaultPool.Put(bb)
}
