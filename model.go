// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import "fmt"

// Wire signatures per PKWARE APPNOTE, little-endian on disk.
const (
	sigLocalHeader   = 0x04034B50
	sigCentralHeader = 0x02014B50
	sigEOCD          = 0x06054B50
)

// Internal binary layout and format limits.
const (
	localHeaderLen   = 30 // fixed local file header size in bytes
	centralHeaderLen = 46 // fixed central directory header size in bytes
	eocdLen          = 22 // fixed EOCD record size in bytes

	// maxCommentLen bounds the EOCD backward scan window; the trailing
	// archive comment field is at most 65535 bytes.
	maxCommentLen = 0xFFFF
	// maxEntryCount is the 16-bit EOCD entry count limit.
	maxEntryCount = 0xFFFF
	// maxNameLen is the 16-bit filename length field limit.
	maxNameLen = 0xFFFF
	// maxArchiveData is the highest offset or size a 32-bit field can address.
	maxArchiveData = int64(^uint32(0))
)

// flagDataDescriptor is general-purpose bit 3: the writer streamed the entry
// and recorded sizes and CRC in a trailing data descriptor, so local header
// size fields may be zero.
const flagDataDescriptor = 1 << 3

// Fixed DOS date-time written into every produced header: 1980-01-01
// 00:00:00, the earliest representable MS-DOS timestamp. Generated documents
// and backups need deterministic bytes, not wall-clock metadata.
const (
	dosEpochDate = 0x0021
	dosEpochTime = 0x0000
)

// Versions written into produced headers: 2.0, the minimum that covers
// stored multi-entry archives.
const (
	versionMadeBy = 20
	versionNeeded = 20
)

// Method is the ZIP compression method stored in entry headers.
type Method uint16

// Supported compression methods.
const (
	// MethodStored is method 0: bytes pass through unchanged.
	MethodStored Method = 0
	// MethodDeflate is method 8: raw DEFLATE per RFC 1951, no zlib or
	// gzip envelope.
	MethodDeflate Method = 8
)

// String renders known methods by name and everything else numerically.
func (m Method) String() string {
	switch m {
	case MethodStored:
		return "stored"
	case MethodDeflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// EntryDescriptor describes a single member parsed from the central
// directory. Descriptors are transient scan output, scoped to one reader.
type EntryDescriptor struct {
	// Name is the member path as stored in the central directory.
	Name string `json:"name"`
	// Method is the declared compression method.
	Method Method `json:"method"`
	// CompressedSize is the on-wire payload size in bytes. Always the
	// central directory value, never the local header copy.
	CompressedSize uint32 `json:"compressed_size"`
	// UncompressedSize is the declared decompressed size in bytes.
	UncompressedSize uint32 `json:"uncompressed_size"`
	// CRC32 is the declared CRC-32 (IEEE) of the decompressed bytes.
	CRC32 uint32 `json:"crc32"`
	// LocalHeaderOffset is the absolute offset of this member's local header.
	LocalHeaderOffset uint32 `json:"local_header_offset"`
	// HasDataDescriptor reports general-purpose bit 3 from the entry flags.
	// Sizes are still resolved from the central directory; the flag is
	// surfaced so callers can treat third-party streaming archives with
	// suspicion.
	HasDataDescriptor bool `json:"has_data_descriptor,omitempty"`
}

// Entry is one named decompressed member. The data is owned by the caller
// once returned.
type Entry struct {
	// Name is the member path inside the archive.
	Name string `json:"name"`
	// Method is the compression method the member was stored with.
	Method Method `json:"method"`
	// Data is the full decompressed content.
	Data []byte `json:"-"`
}

// InflateFunc decompresses one raw DEFLATE stream (RFC 1951, no zlib or
// gzip envelope) into its original bytes.
type InflateFunc func(compressed []byte) ([]byte, error)

// ReaderOptions configures reader behavior.
type ReaderOptions struct {
	// Inflate decompresses DEFLATE entry payloads. Nil selects the
	// built-in flate-backed primitive.
	Inflate InflateFunc `json:"-"`
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	if opts.Inflate == nil {
		opts.Inflate = InflateRaw
	}
}
