// SPDX-License-Identifier: MIT
// Copyright (c) 2026 BoDonkey
// Source: github.com/BoDonkey/worldbuilding-desk-sub000

package zipx

import (
	"strconv"
	"strings"
	"unicode"
)

// documentEntryName is the WordprocessingML main part inside a .docx container.
const documentEntryName = "word/document.xml"

// ReadDocumentText opens a .docx archive and returns the plain text of its
// main document part, with blank lines separating paragraphs.
func ReadDocumentText(data []byte) (string, error) {
	return ReadDocumentTextWithOptions(data, ReaderOptions{})
}

// ReadDocumentTextWithOptions opens a .docx archive using explicit reader
// options and returns the plain text of its main document part.
func ReadDocumentTextWithOptions(data []byte, opts ReaderOptions) (string, error) {
	entry, err := ReadEntryWithOptions(data, documentEntryName, opts)
	if err != nil {
		return "", err
	}

	return ExtractDocumentText(string(entry.Data)), nil
}

// ExtractDocumentText converts WordprocessingML markup (the contents of
// word/document.xml) into plain text. Tabs and explicit breaks become
// whitespace, paragraph ends become blank lines, every other tag is
// stripped, entities are decoded, and surrounding whitespace is trimmed.
func ExtractDocumentText(xmlText string) string {
	var b strings.Builder
	b.Grow(len(xmlText) / 2)

	for i := 0; i < len(xmlText); {
		c := xmlText[i]
		if c != '<' {
			b.WriteByte(c)
			i++
			continue
		}

		end := strings.IndexByte(xmlText[i:], '>')
		if end < 0 {
			// Unterminated tag: nothing textual remains.
			break
		}

		switch tagName(xmlText[i+1 : i+end]) {
		case "w:tab":
			b.WriteByte('\t')
		case "w:br", "w:cr":
			b.WriteByte('\n')
		case "/w:p":
			b.WriteString("\n\n")
		}

		i += end + 1
	}

	return strings.TrimSpace(decodeEntities(b.String()))
}

// tagName extracts the element name from raw tag innards, dropping
// attributes and the self-closing slash. Closing tags keep their leading
// slash so "/w:p" stays distinguishable.
func tagName(tag string) string {
	tag = strings.TrimSpace(tag)
	for j := 0; j < len(tag); j++ {
		switch tag[j] {
		case ' ', '\t', '\n', '\r':
			return tag[:j]
		case '/':
			if j > 0 {
				return tag[:j]
			}
		}
	}

	return tag
}

// xmlEntities maps the five predefined XML entity names to their literals.
// An explicit table instead of a document parser: the transform rewrites tag
// soup and assumes no DOM.
var xmlEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// decodeEntities resolves predefined XML entities and numeric character
// references. Unknown or malformed references pass through verbatim.
func decodeEntities(s string) string {
	amp := strings.IndexByte(s, '&')
	if amp < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:amp])

	for i := amp; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}

		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteString(s[i:])
			break
		}

		if rep, ok := decodeEntityRef(s[i+1 : i+semi]); ok {
			b.WriteString(rep)
			i += semi + 1
			continue
		}

		b.WriteByte('&')
		i++
	}

	return b.String()
}

// decodeEntityRef resolves one entity body (the text between & and ;).
func decodeEntityRef(ref string) (string, bool) {
	if rep, ok := xmlEntities[ref]; ok {
		return rep, true
	}

	if len(ref) < 2 || ref[0] != '#' {
		return "", false
	}

	digits := ref[1:]
	base := 10
	if digits[0] == 'x' || digits[0] == 'X' {
		digits = digits[1:]
		base = 16
	}

	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n > uint64(unicode.MaxRune) {
		return "", false
	}

	return string(rune(n)), true
}
