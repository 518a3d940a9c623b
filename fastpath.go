// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import (
	"fmt"
	"hash/crc32"
)

// ExtractSingleStoredEntry reads the sole member of a backup archive without
// scanning the EOCD record or central directory.
//
// It exploits a closed-world assumption: backup archives are only ever
// produced by this package's Builder, with exactly one stored entry and no
// data descriptor. The local header at offset 0 is read directly and its
// declared sizes are trusted. Stored is the only accepted method; anything
// else is rejected with ErrUnsupportedCompression rather than mis-parsed,
// because this is explicitly not a general-purpose reader. Foreign archives
// of unknown provenance belong in NewReader.
func ExtractSingleStoredEntry(data []byte) (Entry, error) {
	br := byteReader{data: data}

	sig, err := br.u32(0)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %d bytes is shorter than a local header", ErrMalformedArchive, len(data))
	}

	if sig != sigLocalHeader {
		return Entry{}, fmt.Errorf("%w: local header has signature 0x%08X", ErrMalformedArchive, sig)
	}

	method, err := br.u16(8)
	if err != nil {
		return Entry{}, err
	}

	if Method(method) != MethodStored {
		return Entry{}, fmt.Errorf("%w: %s; the single-entry fast path reads stored entries only",
			ErrUnsupportedCompression, Method(method))
	}

	crc, err := br.u32(14)
	if err != nil {
		return Entry{}, err
	}

	compressedSize, err := br.u32(18)
	if err != nil {
		return Entry{}, err
	}

	uncompressedSize, err := br.u32(22)
	if err != nil {
		return Entry{}, err
	}

	if compressedSize != uncompressedSize {
		return Entry{}, fmt.Errorf("%w: stored entry sizes differ (%d compressed, %d uncompressed)",
			ErrCorruptEntry, compressedSize, uncompressedSize)
	}

	nameLen, err := br.u16(26)
	if err != nil {
		return Entry{}, err
	}

	extraLen, err := br.u16(28)
	if err != nil {
		return Entry{}, err
	}

	name, err := br.slice(localHeaderLen, int64(nameLen))
	if err != nil {
		return Entry{}, err
	}

	dataStart := int64(localHeaderLen) + int64(nameLen) + int64(extraLen)
	payload, err := br.slice(dataStart, int64(compressedSize))
	if err != nil {
		return Entry{}, err
	}

	if sum := crc32.ChecksumIEEE(payload); sum != crc {
		return Entry{}, fmt.Errorf("%w: entry %s CRC-32 0x%08X, declared 0x%08X",
			ErrCorruptEntry, string(name), sum, crc)
	}

	return Entry{
		Name:   string(name),
		Method: MethodStored,
		Data:   append([]byte(nil), payload...),
	}, nil
}
