// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import (
	"encoding/binary"
	"fmt"
)

// byteReader provides bounds-checked fixed-width little-endian reads at
// arbitrary offsets over an immutable in-memory buffer. Any read past the
// buffer end is ErrTruncatedArchive, never silently zero-filled.
type byteReader struct {
	data []byte
}

// size returns the total buffer length in bytes.
func (b byteReader) size() int64 {
	return int64(len(b.data))
}

// u16 reads an unsigned 16-bit little-endian value at off.
func (b byteReader) u16(off int64) (uint16, error) {
	if off < 0 || off+2 > b.size() {
		return 0, fmt.Errorf("%w: 2 bytes at offset %d of %d", ErrTruncatedArchive, off, b.size())
	}

	return binary.LittleEndian.Uint16(b.data[off:]), nil
}

// u32 reads an unsigned 32-bit little-endian value at off.
func (b byteReader) u32(off int64) (uint32, error) {
	if off < 0 || off+4 > b.size() {
		return 0, fmt.Errorf("%w: 4 bytes at offset %d of %d", ErrTruncatedArchive, off, b.size())
	}

	return binary.LittleEndian.Uint32(b.data[off:]), nil
}

// slice returns n bytes starting at off without copying.
func (b byteReader) slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > b.size() || off+n < off {
		return nil, fmt.Errorf("%w: %d bytes at offset %d of %d", ErrTruncatedArchive, n, off, b.size())
	}

	return b.data[off : off+n], nil
}
