package zipx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
)

// manualEntry drives craftArchive for fixtures the Builder cannot produce:
// DEFLATE payloads, foreign methods, wrong checksums, data descriptor flags.
type manualEntry struct {
	name       string
	method     Method
	flags      uint16
	compData   []byte
	uncompSize uint32
	crc        uint32
	// localSizesZeroed mimics streaming writers that defer sizes to a data
	// descriptor and leave the local header copies as zero.
	localSizesZeroed bool
	// localExtra is written only into the local header, making local and
	// central variable-length fields legitimately differ.
	localExtra []byte
}

// craftArchive serializes manual entries into a complete archive with local
// headers, central directory, and EOCD.
func craftArchive(entries []manualEntry) []byte {
	var out []byte
	offsets := make([]uint32, len(entries))

	for i, e := range entries {
		offsets[i] = uint32(len(out))

		crc, comp, uncomp := e.crc, uint32(len(e.compData)), e.uncompSize
		if e.localSizesZeroed {
			crc, comp, uncomp = 0, 0, 0
		}

		var hdr [localHeaderLen]byte
		binary.LittleEndian.PutUint32(hdr[0:], sigLocalHeader)
		binary.LittleEndian.PutUint16(hdr[4:], versionNeeded)
		binary.LittleEndian.PutUint16(hdr[6:], e.flags)
		binary.LittleEndian.PutUint16(hdr[8:], uint16(e.method))
		binary.LittleEndian.PutUint32(hdr[14:], crc)
		binary.LittleEndian.PutUint32(hdr[18:], comp)
		binary.LittleEndian.PutUint32(hdr[22:], uncomp)
		binary.LittleEndian.PutUint16(hdr[26:], uint16(len(e.name)))
		binary.LittleEndian.PutUint16(hdr[28:], uint16(len(e.localExtra)))

		out = append(out, hdr[:]...)
		out = append(out, e.name...)
		out = append(out, e.localExtra...)
		out = append(out, e.compData...)
	}

	cdOffset := uint32(len(out))
	for i, e := range entries {
		var hdr [centralHeaderLen]byte
		binary.LittleEndian.PutUint32(hdr[0:], sigCentralHeader)
		binary.LittleEndian.PutUint16(hdr[4:], versionMadeBy)
		binary.LittleEndian.PutUint16(hdr[6:], versionNeeded)
		binary.LittleEndian.PutUint16(hdr[8:], e.flags)
		binary.LittleEndian.PutUint16(hdr[10:], uint16(e.method))
		binary.LittleEndian.PutUint32(hdr[16:], e.crc)
		binary.LittleEndian.PutUint32(hdr[20:], uint32(len(e.compData)))
		binary.LittleEndian.PutUint32(hdr[24:], e.uncompSize)
		binary.LittleEndian.PutUint16(hdr[28:], uint16(len(e.name)))
		binary.LittleEndian.PutUint32(hdr[42:], offsets[i])

		out = append(out, hdr[:]...)
		out = append(out, e.name...)
	}

	cdSize := uint32(len(out)) - cdOffset

	var eocd [eocdLen]byte
	binary.LittleEndian.PutUint32(eocd[0:], sigEOCD)
	binary.LittleEndian.PutUint16(eocd[8:], uint16(len(entries)))
	binary.LittleEndian.PutUint16(eocd[10:], uint16(len(entries)))
	binary.LittleEndian.PutUint32(eocd[12:], cdSize)
	binary.LittleEndian.PutUint32(eocd[16:], cdOffset)

	return append(out, eocd[:]...)
}

// deflateEntry compresses plain into a raw DEFLATE manual entry.
func deflateEntry(t *testing.T, name string, plain []byte) manualEntry {
	t.Helper()

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := fw.Write(plain); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}

	return manualEntry{
		name:       name,
		method:     MethodDeflate,
		compData:   buf.Bytes(),
		uncompSize: uint32(len(plain)),
		crc:        crc32.ChecksumIEEE(plain),
	}
}

// storedEntry wraps plain bytes into a stored manual entry.
func storedEntry(name string, plain []byte) manualEntry {
	return manualEntry{
		name:       name,
		method:     MethodStored,
		compData:   plain,
		uncompSize: uint32(len(plain)),
		crc:        crc32.ChecksumIEEE(plain),
	}
}

func TestNewReader_NotAnArchive(t *testing.T) {
	t.Parallel()

	junk := make([]byte, 4096)
	for i := range junk {
		junk[i] = byte(i % 251)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: []byte("PK")},
		{name: "plain text", data: bytes.Repeat([]byte("chapter one. it was a dark and stormy night. "), 64)},
		{name: "binary junk", data: junk},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewReader(tc.data); !errors.Is(err, ErrMalformedArchive) {
				t.Fatalf("expected ErrMalformedArchive, got %v", err)
			}
		})
	}
}

func TestNewReader_EOCDBehindComment(t *testing.T) {
	t.Parallel()

	out := craftArchive([]manualEntry{storedEntry("a.txt", []byte("hello"))})

	comment := []byte("archive comment, scanner must look past this")
	binary.LittleEndian.PutUint16(out[len(out)-2:], uint16(len(comment)))
	out = append(out, comment...)

	entries, err := ListEntries(out)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("entries = %+v, want one a.txt", entries)
	}
}

func TestNewReader_EntryCountMismatch(t *testing.T) {
	t.Parallel()

	base := craftArchive([]manualEntry{
		storedEntry("a.txt", []byte("hello")),
		storedEntry("b.txt", []byte("world")),
	})

	t.Run("count too high", func(t *testing.T) {
		t.Parallel()

		out := append([]byte(nil), base...)
		eocd := len(out) - eocdLen
		binary.LittleEndian.PutUint16(out[eocd+8:], 3)
		binary.LittleEndian.PutUint16(out[eocd+10:], 3)

		if _, err := NewReader(out); !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})

	t.Run("count too low", func(t *testing.T) {
		t.Parallel()

		out := append([]byte(nil), base...)
		eocd := len(out) - eocdLen
		binary.LittleEndian.PutUint16(out[eocd+8:], 1)
		binary.LittleEndian.PutUint16(out[eocd+10:], 1)

		if _, err := NewReader(out); !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})

	t.Run("split archive counts", func(t *testing.T) {
		t.Parallel()

		out := append([]byte(nil), base...)
		eocd := len(out) - eocdLen
		binary.LittleEndian.PutUint16(out[eocd+8:], 1)

		if _, err := NewReader(out); !errors.Is(err, ErrMalformedArchive) {
			t.Fatalf("expected ErrMalformedArchive, got %v", err)
		}
	})
}

func TestNewReader_CentralDirectoryOutOfBounds(t *testing.T) {
	t.Parallel()

	out := craftArchive([]manualEntry{storedEntry("a.txt", []byte("hello"))})
	eocd := len(out) - eocdLen
	binary.LittleEndian.PutUint32(out[eocd+16:], 0xFFFFFF00)

	if _, err := NewReader(out); !errors.Is(err, ErrTruncatedArchive) {
		t.Fatalf("expected ErrTruncatedArchive, got %v", err)
	}
}

func TestReadEntry_StoredAndDeflate(t *testing.T) {
	t.Parallel()

	plainA := []byte("hello")
	plainB := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)

	out := craftArchive([]manualEntry{
		storedEntry("a.txt", plainA),
		deflateEntry(t, "b.txt", plainB),
	})

	r, err := NewReader(out)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d, want 2", len(entries))
	}
	if entries[0].Method != MethodStored || entries[1].Method != MethodDeflate {
		t.Fatalf("methods = %s, %s; want stored, deflate", entries[0].Method, entries[1].Method)
	}
	if entries[1].UncompressedSize != uint32(len(plainB)) {
		t.Fatalf("UncompressedSize=%d, want %d", entries[1].UncompressedSize, len(plainB))
	}
	if entries[1].CompressedSize >= entries[1].UncompressedSize {
		t.Fatalf("deflate entry did not shrink: %d >= %d", entries[1].CompressedSize, entries[1].UncompressedSize)
	}
	if entries[0].CRC32 != crc32.ChecksumIEEE(plainA) {
		t.Fatalf("CRC32=0x%08X, want 0x%08X", entries[0].CRC32, crc32.ChecksumIEEE(plainA))
	}

	gotA, err := r.ReadEntry("a.txt")
	if err != nil {
		t.Fatalf("ReadEntry a.txt: %v", err)
	}
	if !bytes.Equal(gotA.Data, plainA) {
		t.Fatalf("a.txt = %q, want %q", gotA.Data, plainA)
	}

	gotB, err := r.ReadEntry("b.txt")
	if err != nil {
		t.Fatalf("ReadEntry b.txt: %v", err)
	}
	if gotB.Method != MethodDeflate {
		t.Fatalf("b.txt method = %s, want deflate", gotB.Method)
	}
	if !bytes.Equal(gotB.Data, plainB) {
		t.Fatal("b.txt decompressed bytes differ from original")
	}
}

func TestReadEntry_Missing(t *testing.T) {
	t.Parallel()

	out := craftArchive([]manualEntry{storedEntry("a.txt", []byte("hello"))})

	if _, err := ReadEntry(out, "nope.txt"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestReadEntry_UnsupportedMethodBeforeDataRead(t *testing.T) {
	t.Parallel()

	// Method 12 is BZIP2. The local header offset is corrupted to point past
	// the buffer: reaching the payload would fail with a truncation error,
	// so getting the unsupported-compression error proves the method gate
	// fires before any data is touched.
	out := craftArchive([]manualEntry{{
		name:       "b.bz2",
		method:     12,
		compData:   []byte{0xDE, 0xAD, 0xBE, 0xEF},
		uncompSize: 100,
		crc:        0x12345678,
	}})

	cdOffset := len(out) - eocdLen - centralHeaderLen - len("b.bz2")
	binary.LittleEndian.PutUint32(out[cdOffset+42:], 0xFFFFFF00)

	_, err := ReadEntry(out, "b.bz2")
	if !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("expected ErrUnsupportedCompression, got %v", err)
	}
}

func TestReadEntry_CorruptEntry(t *testing.T) {
	t.Parallel()

	t.Run("stored bad crc", func(t *testing.T) {
		t.Parallel()

		e := storedEntry("a.txt", []byte("hello"))
		e.crc ^= 0xFFFFFFFF
		out := craftArchive([]manualEntry{e})

		if _, err := ReadEntry(out, "a.txt"); !errors.Is(err, ErrCorruptEntry) {
			t.Fatalf("expected ErrCorruptEntry, got %v", err)
		}
	})

	t.Run("deflate bad declared size", func(t *testing.T) {
		t.Parallel()

		e := deflateEntry(t, "b.txt", bytes.Repeat([]byte("abc"), 100))
		e.uncompSize++
		out := craftArchive([]manualEntry{e})

		if _, err := ReadEntry(out, "b.txt"); !errors.Is(err, ErrCorruptEntry) {
			t.Fatalf("expected ErrCorruptEntry, got %v", err)
		}
	})

	t.Run("deflate broken stream", func(t *testing.T) {
		t.Parallel()

		e := deflateEntry(t, "b.txt", bytes.Repeat([]byte("abc"), 100))
		for i := range e.compData {
			e.compData[i] ^= 0x55
		}
		out := craftArchive([]manualEntry{e})

		if _, err := ReadEntry(out, "b.txt"); !errors.Is(err, ErrCorruptEntry) {
			t.Fatalf("expected ErrCorruptEntry, got %v", err)
		}
	})
}

func TestReadEntry_PayloadPastBufferEnd(t *testing.T) {
	t.Parallel()

	out := craftArchive([]manualEntry{storedEntry("t.txt", []byte("abc"))})

	// Single entry: central header directly follows local header, name, data.
	cdOffset := localHeaderLen + len("t.txt") + len("abc")
	binary.LittleEndian.PutUint32(out[cdOffset+20:], 0xFFFF)

	if _, err := ReadEntry(out, "t.txt"); !errors.Is(err, ErrTruncatedArchive) {
		t.Fatalf("expected ErrTruncatedArchive, got %v", err)
	}
}

func TestReadEntry_BadLocalSignature(t *testing.T) {
	t.Parallel()

	out := craftArchive([]manualEntry{storedEntry("a.txt", []byte("hello"))})
	binary.LittleEndian.PutUint32(out[0:], 0x11223344)

	if _, err := ReadEntry(out, "a.txt"); !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("expected ErrMalformedArchive, got %v", err)
	}
}

func TestReadEntry_DataDescriptorStyleLocalHeader(t *testing.T) {
	t.Parallel()

	plain := []byte("streamed payload with zeroed local sizes")
	e := storedEntry("s.bin", plain)
	e.flags = flagDataDescriptor
	e.localSizesZeroed = true
	out := craftArchive([]manualEntry{e})

	entries, err := ListEntries(out)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if !entries[0].HasDataDescriptor {
		t.Fatal("HasDataDescriptor = false, want true")
	}

	// Sizes must come from the central directory, never the local header.
	got, err := ReadEntry(out, "s.bin")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got.Data, plain) {
		t.Fatalf("data = %q, want %q", got.Data, plain)
	}
}

func TestReadEntry_LocalExtraFieldDiffersFromCentral(t *testing.T) {
	t.Parallel()

	plain := []byte("payload behind a local-only extra field")
	e := storedEntry("x.bin", plain)
	e.localExtra = []byte("\x55\x54\x05\x00local")
	out := craftArchive([]manualEntry{e})

	got, err := ReadEntry(out, "x.bin")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got.Data, plain) {
		t.Fatalf("data = %q, want %q", got.Data, plain)
	}
}

func TestReadEntryWithOptions_InjectedInflate(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("injectable"), 50)
	out := craftArchive([]manualEntry{deflateEntry(t, "d.bin", plain)})

	called := false
	got, err := ReadEntryWithOptions(out, "d.bin", ReaderOptions{
		Inflate: func(compressed []byte) ([]byte, error) {
			called = true
			return InflateRaw(compressed)
		},
	})
	if err != nil {
		t.Fatalf("ReadEntryWithOptions: %v", err)
	}
	if !called {
		t.Fatal("injected inflate primitive was not used")
	}
	if !bytes.Equal(got.Data, plain) {
		t.Fatal("decompressed bytes differ from original")
	}
}

func TestReader_NilSafety(t *testing.T) {
	t.Parallel()

	var r *Reader
	if got := r.Entries(); got != nil {
		t.Fatalf("nil reader Entries() = %v, want nil", got)
	}
	if _, err := r.ReadEntry("a"); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}
