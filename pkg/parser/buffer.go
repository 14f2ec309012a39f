package parser

import (
	"errors"
	"fmt"
)

// MinGrowth is the capacity of a Buffer's first allocation, matching the size of a single socket read.
const MinGrowth = 4096

var ErrBufferLimit = errors.New("response buffer limit exceeded")

// Buffer is an owned, growable byte sequence that responses are read into.
// Capacity doubles on growth (or jumps straight to what the pending append needs, if that's more),
// so a response of n bytes costs O(log n) reallocations.
// A Buffer is not safe for concurrent use; it belongs to exactly one in-flight fetch.
type Buffer struct {
	buf   []byte
	limit int
	grows int
}

// NewBuffer returns an empty Buffer. A positive limit caps the total number of bytes it will accept.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Append copies p onto the end of the buffer, growing it if needed.
// The buffer is left untouched if accepting p would exceed the limit.
func (b *Buffer) Append(p []byte) error {
	need := len(b.buf) + len(p)
	if b.limit > 0 && need > b.limit {
		return fmt.Errorf("%w: need %d bytes, limit is %d", ErrBufferLimit, need, b.limit)
	}
	if need > cap(b.buf) {
		b.grow(need)
	}
	b.buf = append(b.buf, p...)
	return nil
}

// Write implements io.Writer over Append.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (b *Buffer) grow(need int) {
	newCap := 2 * cap(b.buf)
	if newCap == 0 {
		newCap = MinGrowth
	}
	if newCap < need {
		newCap = need
	}
	if b.limit > 0 && newCap > b.limit {
		newCap = b.limit // need <= limit is checked by the caller
	}

	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
	b.grows++
}

// Bytes is a view of the contents. It's only valid until the next Append, Detach or Reset.
func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Len() int { return len(b.buf) }
func (b *Buffer) Cap() int { return cap(b.buf) }

// Grows counts the reallocations performed so far.
func (b *Buffer) Grows() int { return b.grows }

// Detach hands ownership of the contents to the caller and leaves the buffer empty.
func (b *Buffer) Detach() []byte {
	p := b.buf
	b.buf = nil
	return p
}

// Reset discards the contents and releases the backing array.
func (b *Buffer) Reset() {
	b.buf = nil
	b.grows = 0
}
