// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import "fmt"

// Reader provides read-only access to a parsed in-memory ZIP archive.
// The end of central directory record and the full central directory are
// parsed up front; entry payloads are resolved lazily per ReadEntry call.
type Reader struct {
	// br wraps the caller-supplied archive bytes.
	br byteReader
	// entries stores parsed immutable entry metadata in directory order.
	entries []EntryDescriptor
	// inflate decompresses DEFLATE entry payloads.
	inflate InflateFunc
}

// NewReader parses archive bytes and returns a reader over them.
func NewReader(data []byte) (*Reader, error) {
	return NewReaderWithOptions(data, ReaderOptions{})
}

// NewReaderWithOptions parses archive bytes using explicit reader options.
func NewReaderWithOptions(data []byte, opts ReaderOptions) (*Reader, error) {
	opts.applyDefaults()

	r := &Reader{br: byteReader{data: data}, inflate: opts.Inflate}
	if err := r.parse(); err != nil {
		return nil, err
	}

	return r, nil
}

// Entries returns a copy of parsed entry descriptors in directory order.
func (r *Reader) Entries() []EntryDescriptor {
	if r == nil {
		return nil
	}

	entries := make([]EntryDescriptor, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// ReadEntry extracts the named member and returns its decompressed content.
// The name must match the stored entry path exactly.
func (r *Reader) ReadEntry(name string) (Entry, error) {
	if r == nil {
		return Entry{}, ErrNilReader
	}

	desc := r.findEntryByName(name)
	if desc == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	data, err := r.extract(desc)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Name: desc.Name, Method: desc.Method, Data: data}, nil
}

// findEntryByName resolves one entry descriptor by stored path.
func (r *Reader) findEntryByName(name string) *EntryDescriptor {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return &r.entries[i]
		}
	}

	return nil
}

// parse locates the EOCD record and walks the central directory.
func (r *Reader) parse() error {
	eocdOff, err := r.findEOCD()
	if err != nil {
		return err
	}

	return r.parseCentralDirectory(eocdOff)
}

// findEOCD scans backward over the trailing comment window for the EOCD
// signature. The comment field is variable length up to 65535 bytes, so the
// scan covers at most eocdLen+maxCommentLen tail bytes.
func (r *Reader) findEOCD() (int64, error) {
	size := r.br.size()
	if size < eocdLen {
		return 0, fmt.Errorf("%w: %d bytes is shorter than an EOCD record", ErrMalformedArchive, size)
	}

	lowest := size - eocdLen - maxCommentLen
	if lowest < 0 {
		lowest = 0
	}

	for off := size - eocdLen; off >= lowest; off-- {
		sig, err := r.br.u32(off)
		if err != nil {
			return 0, err
		}

		if sig == sigEOCD {
			return off, nil
		}
	}

	return 0, fmt.Errorf("%w: end of central directory signature not found", ErrMalformedArchive)
}

// parseCentralDirectory walks exactly the EOCD-declared number of central
// headers and verifies the walk consumed exactly the declared byte span.
func (r *Reader) parseCentralDirectory(eocdOff int64) error {
	countOnDisk, err := r.br.u16(eocdOff + 8)
	if err != nil {
		return err
	}

	countTotal, err := r.br.u16(eocdOff + 10)
	if err != nil {
		return err
	}

	if countOnDisk != countTotal {
		return fmt.Errorf("%w: split archive (%d of %d entries on this disk)",
			ErrMalformedArchive, countOnDisk, countTotal)
	}

	cdSize, err := r.br.u32(eocdOff + 12)
	if err != nil {
		return err
	}

	cdOff, err := r.br.u32(eocdOff + 16)
	if err != nil {
		return err
	}

	cursor := int64(cdOff)
	end := cursor + int64(cdSize)
	if end > r.br.size() {
		return fmt.Errorf("%w: central directory [%d..%d) exceeds %d archive bytes",
			ErrTruncatedArchive, cdOff, end, r.br.size())
	}

	r.entries = make([]EntryDescriptor, 0, countTotal)
	for i := 0; i < int(countTotal); i++ {
		next, err := r.parseCentralHeader(cursor, i)
		if err != nil {
			return err
		}

		cursor = next
	}

	// Cross-check, not merely a loop bound: a directory that declares more
	// bytes than its headers span is corrupt even when every header parsed.
	if cursor != end {
		return fmt.Errorf("%w: central directory declares %d bytes, headers span %d",
			ErrMalformedArchive, cdSize, cursor-int64(cdOff))
	}

	return nil
}

// parseCentralHeader parses one fixed 46-byte central header plus its
// filename and returns the cursor past the variable-length fields.
func (r *Reader) parseCentralHeader(cursor int64, index int) (int64, error) {
	sig, err := r.br.u32(cursor)
	if err != nil {
		return 0, err
	}

	if sig != sigCentralHeader {
		return 0, fmt.Errorf("%w: central header %d has signature 0x%08X",
			ErrMalformedArchive, index, sig)
	}

	flags, err := r.br.u16(cursor + 8)
	if err != nil {
		return 0, err
	}

	method, err := r.br.u16(cursor + 10)
	if err != nil {
		return 0, err
	}

	crc, err := r.br.u32(cursor + 16)
	if err != nil {
		return 0, err
	}

	compressedSize, err := r.br.u32(cursor + 20)
	if err != nil {
		return 0, err
	}

	uncompressedSize, err := r.br.u32(cursor + 24)
	if err != nil {
		return 0, err
	}

	nameLen, err := r.br.u16(cursor + 28)
	if err != nil {
		return 0, err
	}

	extraLen, err := r.br.u16(cursor + 30)
	if err != nil {
		return 0, err
	}

	commentLen, err := r.br.u16(cursor + 32)
	if err != nil {
		return 0, err
	}

	localOff, err := r.br.u32(cursor + 42)
	if err != nil {
		return 0, err
	}

	name, err := r.br.slice(cursor+centralHeaderLen, int64(nameLen))
	if err != nil {
		return 0, err
	}

	r.entries = append(r.entries, EntryDescriptor{
		Name:              string(name),
		Method:            Method(method),
		CompressedSize:    compressedSize,
		UncompressedSize:  uncompressedSize,
		CRC32:             crc,
		LocalHeaderOffset: localOff,
		HasDataDescriptor: flags&flagDataDescriptor != 0,
	})

	return cursor + centralHeaderLen + int64(nameLen) + int64(extraLen) + int64(commentLen), nil
}

// extract resolves and decodes the payload for one descriptor.
func (r *Reader) extract(desc *EntryDescriptor) ([]byte, error) {
	// Gate on the method before touching any payload bytes.
	if desc.Method != MethodStored && desc.Method != MethodDeflate {
		return nil, fmt.Errorf("%w: %s in entry %s", ErrUnsupportedCompression, desc.Method, desc.Name)
	}

	compressed, err := r.compressedRange(desc)
	if err != nil {
		return nil, err
	}

	return decodeEntryData(desc, compressed, r.inflate)
}

// compressedRange seeks to the entry's local header and returns the exact
// compressed payload slice.
//
// The local filename and extra-field lengths may legitimately differ from
// the central directory copy and are read from the local header itself. The
// compressed size is always the central directory value: streaming writers
// using the data descriptor flag leave local header sizes as zero.
func (r *Reader) compressedRange(desc *EntryDescriptor) ([]byte, error) {
	off := int64(desc.LocalHeaderOffset)

	sig, err := r.br.u32(off)
	if err != nil {
		return nil, err
	}

	if sig != sigLocalHeader {
		return nil, fmt.Errorf("%w: entry %s local header has signature 0x%08X",
			ErrMalformedArchive, desc.Name, sig)
	}

	nameLen, err := r.br.u16(off + 26)
	if err != nil {
		return nil, err
	}

	extraLen, err := r.br.u16(off + 28)
	if err != nil {
		return nil, err
	}

	dataStart := off + localHeaderLen + int64(nameLen) + int64(extraLen)
	data, err := r.br.slice(dataStart, int64(desc.CompressedSize))
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", desc.Name, err)
	}

	return data, nil
}
