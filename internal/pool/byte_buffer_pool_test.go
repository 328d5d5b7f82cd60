package pool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndString(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.WriteString("G01")
	bb.MustWriteByte(' ')
	bb.WriteString("L1")

	require.Equal(t, "G01 L1", bb.String())
	require.Equal(t, 6, bb.Len())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Empty(t, bb.String())
}

func TestByteBuffer_PadTo(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.WriteString("abc")
	bb.PadTo(6)

	require.Equal(t, "abc   ", bb.String())

	// Padding never shrinks.
	bb.PadTo(2)
	require.Equal(t, "abc   ", bb.String())
}

func TestByteBufferPool_Reuse(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.WriteString("payload")
	p.Put(bb)

	got := p.Get()
	require.NotNil(t, got)
	require.Equal(t, 0, got.Len())
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	bb := p.Get()
	bb.WriteString(strings.Repeat("x", 128))
	p.Put(bb) // above threshold, silently dropped

	got := p.Get()
	require.LessOrEqual(t, cap(got.B), 128)
	require.Equal(t, 0, got.Len())
}

func TestGetLineBuffer_Defaults(t *testing.T) {
	bb := GetLineBuffer()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	PutLineBuffer(bb)
	PutLineBuffer(nil) // must not panic
}
