package wire

import (
	"encoding/binary"
	"fmt"
)

// body reads little-endian fields from one message body. The first short
// read sticks, later reads return zero.
type body struct {
	buf []byte
	off int
	err error
}

func newBody(buf []byte) *body {
	return &body{buf: buf}
}

func (b *body) take(n int) []byte {
	if b.err != nil {
		return nil
	}
	if len(b.buf)-b.off < n {
		b.err = fmt.Errorf("need %d bytes at offset %d of %d: %w", n, b.off, len(b.buf), ErrShortBody)
		return nil
	}
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p
}

func (b *body) u32() uint32 {
	p := b.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (b *body) u64() uint64 {
	p := b.take(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

// u64s reads n values into a fresh slice.
func (b *body) u64s(n uint32) []uint64 {
	p := b.take(int(n) * 8)
	if p == nil {
		return nil
	}
	vs := make([]uint64, n)
	for i := range vs {
		vs[i] = binary.LittleEndian.Uint64(p[i*8:])
	}
	return vs
}

// count reads a u32 element count and checks that at least count*size bytes
// remain, so a corrupt count cannot trigger a huge allocation.
func (b *body) count(size int) uint32 {
	n := b.u32()
	if b.err == nil && uint64(n)*uint64(size) > uint64(len(b.buf)-b.off) {
		b.err = fmt.Errorf("count %d of %d-byte items at offset %d of %d: %w",
			n, size, b.off, len(b.buf), ErrShortBody)
		return 0
	}
	return n
}

func (b *body) finish() error {
	if b.err != nil {
		return b.err
	}
	if b.off != len(b.buf) {
		return fmt.Errorf("%d of %d bytes unread: %w", len(b.buf)-b.off, len(b.buf), ErrTrailingBytes)
	}
	return nil
}
