// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

// ListEntries parses archive bytes and returns entry metadata without
// payload reads.
func ListEntries(data []byte) ([]EntryDescriptor, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}

	return r.Entries(), nil
}

// ReadEntry parses archive bytes and extracts one named member.
func ReadEntry(data []byte, name string) (Entry, error) {
	return ReadEntryWithOptions(data, name, ReaderOptions{})
}

// ReadEntryWithOptions parses archive bytes and extracts one named member
// using explicit reader options.
func ReadEntryWithOptions(data []byte, name string, opts ReaderOptions) (Entry, error) {
	r, err := NewReaderWithOptions(data, opts)
	if err != nil {
		return Entry{}, err
	}

	return r.ReadEntry(name)
}
