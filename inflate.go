// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// InflateRaw decompresses one raw DEFLATE stream (RFC 1951, no zlib or gzip
// envelope). It is the default inflate primitive; embedders with their own
// decompressor inject a replacement through ReaderOptions.Inflate.
func InflateRaw(compressed []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer func() { _ = fr.Close() }()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	return out, nil
}

// decodeEntryData decompresses one entry payload and verifies the declared
// uncompressed size and CRC-32. A mismatch is corruption, not something to
// repair.
func decodeEntryData(desc *EntryDescriptor, compressed []byte, inflate InflateFunc) ([]byte, error) {
	var data []byte
	switch desc.Method {
	case MethodStored:
		// Returned bytes are owned by the caller; never alias the archive buffer.
		data = append([]byte(nil), compressed...)
	case MethodDeflate:
		out, err := inflate(compressed)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %w", ErrCorruptEntry, desc.Name, err)
		}

		data = out
	default:
		return nil, fmt.Errorf("%w: %s in entry %s", ErrUnsupportedCompression, desc.Method, desc.Name)
	}

	if uint64(len(data)) != uint64(desc.UncompressedSize) {
		return nil, fmt.Errorf("%w: entry %s decompressed to %d bytes, declared %d",
			ErrCorruptEntry, desc.Name, len(data), desc.UncompressedSize)
	}

	if sum := crc32.ChecksumIEEE(data); sum != desc.CRC32 {
		return nil, fmt.Errorf("%w: entry %s CRC-32 0x%08X, declared 0x%08X",
			ErrCorruptEntry, desc.Name, sum, desc.CRC32)
	}

	return data, nil
}
