// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// builderEntry stores one accumulated member and its computed header values.
type builderEntry struct {
	name string
	data []byte
	// crc is the CRC-32 (IEEE) of data, computed during serialization.
	crc uint32
	// offset is the absolute byte offset of this member's local header.
	offset uint32
}

// Builder accumulates named byte buffers and serializes them into one
// stored-only ZIP archive: local headers and payloads in insertion order,
// then the central directory, then the EOCD record.
//
// A Builder is single-owner and build-once: Add calls followed by exactly
// one Serialize. Any use after Serialize returns ErrBuilderSealed. The
// builder never compresses; every entry is written with method stored.
type Builder struct {
	entries []builderEntry
	sealed  bool
}

// NewBuilder returns an empty archive builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends one entry. Insertion order is preserved in the produced
// archive. Names are not checked for uniqueness: duplicates produce a
// format-valid but semantically ambiguous archive, same as real-world tools.
// The data slice is retained until Serialize and must not be mutated.
func (b *Builder) Add(name string, data []byte) error {
	if b.sealed {
		return ErrBuilderSealed
	}

	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntryName)
	}

	if len(name) > maxNameLen {
		return fmt.Errorf("%w: %d bytes exceeds the 16-bit filename field", ErrInvalidEntryName, len(name))
	}

	if len(b.entries) >= maxEntryCount {
		return fmt.Errorf("%w: more than %d entries", ErrSizeOverflow, maxEntryCount)
	}

	if int64(len(data)) > maxArchiveData {
		return fmt.Errorf("%w: entry %s is %d bytes", ErrSizeOverflow, name, len(data))
	}

	b.entries = append(b.entries, builderEntry{name: name, data: data})
	return nil
}

// Serialize assembles the archive and seals the builder. It either returns
// one complete valid archive or an error before returning anything; no
// partial output is exposed.
func (b *Builder) Serialize() ([]byte, error) {
	if b.sealed {
		return nil, ErrBuilderSealed
	}

	b.sealed = true

	total, err := b.checkedArchiveSize()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, total)
	for i := range b.entries {
		e := &b.entries[i]
		e.crc = crc32.ChecksumIEEE(e.data)
		e.offset = uint32(len(out)) // bounded by checkedArchiveSize

		out = appendLocalHeader(out, e)
		out = append(out, e.name...)
		out = append(out, e.data...)
	}

	cdOffset := uint32(len(out))
	for i := range b.entries {
		out = appendCentralHeader(out, &b.entries[i])
	}

	cdSize := uint32(len(out)) - cdOffset

	out = binary.LittleEndian.AppendUint32(out, sigEOCD)
	out = binary.LittleEndian.AppendUint16(out, 0) // this disk
	out = binary.LittleEndian.AppendUint16(out, 0) // central directory start disk
	// Entry count twice, on-disk and total: no split archives.
	out = binary.LittleEndian.AppendUint16(out, uint16(len(b.entries)))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(b.entries)))
	out = binary.LittleEndian.AppendUint32(out, cdSize)
	out = binary.LittleEndian.AppendUint32(out, cdOffset)
	out = binary.LittleEndian.AppendUint16(out, 0) // comment length

	return out, nil
}

// checkedArchiveSize computes the exact serialized size and rejects archives
// whose offsets or sizes would not fit the 32-bit wire fields.
func (b *Builder) checkedArchiveSize() (int64, error) {
	var total int64
	for i := range b.entries {
		e := &b.entries[i]
		total += localHeaderLen + int64(len(e.name)) + int64(len(e.data))
		if total > maxArchiveData {
			return 0, fmt.Errorf("%w: payload through entry %s exceeds 4 GiB", ErrSizeOverflow, e.name)
		}
	}

	// The central directory offset is the largest value written as uint32.
	for i := range b.entries {
		total += centralHeaderLen + int64(len(b.entries[i].name))
	}

	total += eocdLen
	if total > maxArchiveData {
		return 0, fmt.Errorf("%w: archive of %d bytes exceeds 4 GiB", ErrSizeOverflow, total)
	}

	return total, nil
}

// appendLocalHeader writes the fixed 30-byte local file header for one entry.
// The size of data is its stored size: compressed and uncompressed sizes are
// equal and both are the byte length.
func appendLocalHeader(out []byte, e *builderEntry) []byte {
	size := uint32(len(e.data)) // bounded in Add

	out = binary.LittleEndian.AppendUint32(out, sigLocalHeader)
	out = binary.LittleEndian.AppendUint16(out, versionNeeded)
	out = binary.LittleEndian.AppendUint16(out, 0) // flags: no data descriptor
	out = binary.LittleEndian.AppendUint16(out, uint16(MethodStored))
	out = binary.LittleEndian.AppendUint16(out, dosEpochTime)
	out = binary.LittleEndian.AppendUint16(out, dosEpochDate)
	out = binary.LittleEndian.AppendUint32(out, e.crc)
	out = binary.LittleEndian.AppendUint32(out, size)
	out = binary.LittleEndian.AppendUint32(out, size)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(e.name)))
	out = binary.LittleEndian.AppendUint16(out, 0) // extra field length

	return out
}

// appendCentralHeader writes the fixed 46-byte central directory header plus
// filename for one entry, copying the values recorded during payload write.
func appendCentralHeader(out []byte, e *builderEntry) []byte {
	size := uint32(len(e.data))

	out = binary.LittleEndian.AppendUint32(out, sigCentralHeader)
	out = binary.LittleEndian.AppendUint16(out, versionMadeBy)
	out = binary.LittleEndian.AppendUint16(out, versionNeeded)
	out = binary.LittleEndian.AppendUint16(out, 0) // flags
	out = binary.LittleEndian.AppendUint16(out, uint16(MethodStored))
	out = binary.LittleEndian.AppendUint16(out, dosEpochTime)
	out = binary.LittleEndian.AppendUint16(out, dosEpochDate)
	out = binary.LittleEndian.AppendUint32(out, e.crc)
	out = binary.LittleEndian.AppendUint32(out, size)
	out = binary.LittleEndian.AppendUint32(out, size)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(e.name)))
	out = binary.LittleEndian.AppendUint16(out, 0) // extra field length
	out = binary.LittleEndian.AppendUint16(out, 0) // comment length
	out = binary.LittleEndian.AppendUint16(out, 0) // disk number start
	out = binary.LittleEndian.AppendUint16(out, 0) // internal attributes
	out = binary.LittleEndian.AppendUint32(out, 0) // external attributes
	out = binary.LittleEndian.AppendUint32(out, e.offset)
	out = append(out, e.name...)

	return out
}

// CreateArchive builds one stored-only archive from entries in the given
// order. An empty request produces a valid archive with zero entries.
func CreateArchive(entries []Entry) ([]byte, error) {
	b := NewBuilder()
	for _, e := range entries {
		if err := b.Add(e.Name, e.Data); err != nil {
			return nil, err
		}
	}

	return b.Serialize()
}
