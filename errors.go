// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import "errors"

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrMalformedArchive means the end of central directory record or a
	// header signature was not found or is invalid.
	ErrMalformedArchive = errors.New("not a ZIP archive: missing or bad signature")
	// ErrTruncatedArchive means a declared offset or size exceeds the buffer length.
	ErrTruncatedArchive = errors.New("truncated archive: read past end of buffer")
	// ErrUnsupportedCompression means the entry compression method is
	// neither stored nor DEFLATE.
	ErrUnsupportedCompression = errors.New("unsupported compression method")
	// ErrEntryNotFound means the named member is absent from the archive.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrCorruptEntry means decompressed data failed its declared size or
	// CRC-32 check.
	ErrCorruptEntry = errors.New("corrupt entry: size or CRC-32 mismatch")
	// ErrSizeOverflow means a value exceeds the 32-bit ZIP format limits
	// (4 GiB of data or 65535 entries; ZIP64 is not supported).
	ErrSizeOverflow = errors.New("size exceeds 32-bit ZIP limit")
	// ErrBuilderSealed means the builder was used after Serialize.
	ErrBuilderSealed = errors.New("builder already serialized")
	// ErrInvalidEntryName means an entry name is empty or too long for the
	// 16-bit filename length field.
	ErrInvalidEntryName = errors.New("invalid entry name")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
)
