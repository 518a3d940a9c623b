// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

/*
Package zipx is the ZIP container codec behind the worldbuilding desk's
document import, export, and backup flows. It is written against the wire
format directly (PKWARE APPNOTE local headers, central directory, EOCD) with
no archive library: a reader that opens arbitrary multi-entry archives with
stored or raw-DEFLATE members to pull out one named part, and a writer that
assembles stored-only archives for .docx, .epub, and backup .zip output.

Both sides operate on whole in-memory buffers. That is a deliberate fit for
document-sized archives, not multi-gigabyte inputs; there is no streaming
I/O, no ZIP64, no encryption, and no multi-disk support.

# Reading

Parse an archive and list or read members:

	r, err := zipx.NewReader(uploaded)
	if err != nil {
	    return err
	}
	for _, e := range r.Entries() {
	    entry, _ := r.ReadEntry(e.Name)
	    // use entry.Data
	}

For one-shot access, use the package-level helpers without keeping a reader:

	entries, err := zipx.ListEntries(uploaded)
	if err != nil {
	    return err
	}
	entry, err := zipx.ReadEntry(uploaded, "word/document.xml")
	if err != nil {
	    return err
	}
	_, _ = entries, entry

DEFLATE members are decompressed through an injectable primitive; the
default is flate-backed. Embedders with their own decompressor supply it via
options:

	entry, err := zipx.ReadEntryWithOptions(uploaded, "word/document.xml", zipx.ReaderOptions{
	    Inflate: myInflate,
	})

Every extracted member is verified against its declared uncompressed size
and CRC-32; a mismatch is reported as ErrCorruptEntry, never repaired.

# Document import

To pull the plain text out of an uploaded .docx in one call:

	text, err := zipx.ReadDocumentText(uploaded)
	if err != nil {
	    return err
	}

Paragraphs are separated by blank lines; tabs and explicit breaks survive,
all other WordprocessingML markup is stripped.

# Writing

Assemble an archive from named byte buffers, in insertion order:

	b := zipx.NewBuilder()
	_ = b.Add("mimetype", []byte("application/epub+zip"))
	_ = b.Add("OEBPS/content.opf", opf)
	out, err := b.Serialize()

A Builder is build-once: Add calls followed by exactly one Serialize, and
any use afterward returns ErrBuilderSealed. All entries are written stored
(uncompressed) with per-entry CRC-32. CreateArchive wraps the same flow:

	out, err := zipx.CreateArchive([]zipx.Entry{
	    {Name: "snapshot.json", Data: snapshot},
	})

# Backups

Backup archives are produced by this same builder with exactly one stored
entry, so reading one back takes a fast path that skips the central
directory scan entirely:

	entry, err := zipx.ExtractSingleStoredEntry(backup)

The fast path rejects any compression method other than stored; it is not a
general-purpose reader and foreign archives belong in NewReader.
*/
package zipx
