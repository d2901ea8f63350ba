// Package titledoc encodes and decodes the binary rich-text document
// format used by the reminders service for title and notes fields.
//
// On the wire the document is a gzip-compressed, length-prefixed nested
// message: a fixed attributed-string skeleton wrapping the UTF-8 text,
// its style runs, and a random identifier for the attributed string.
// The skeleton must be reproduced byte for byte; a single malformed byte
// renders the field unreadable to the service's own clients.
package titledoc

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"

	"github.com/gofrs/uuid"
)

// Unknown is returned by Decode for empty or undecodable input. Corrupt
// or foreign blobs must never abort a listing, so decode failures
// degrade to this sentinel instead of raising an error.
const Unknown = "?"

// Encode produces the compressed document blob for text.
//
// The attributed-string identifier embedded in the skeleton is freshly
// generated on every call, so two encodings of the same text are not
// byte-identical. Only Decode(Encode(s)) == s is guaranteed.
func Encode(text string) ([]byte, error) {
	raw := encodeDocument([]byte(text))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeField encodes text and wraps it in base64, the form carried
// inside an ENCRYPTED_BYTES field value.
func EncodeField(text string) (string, error) {
	blob, err := Encode(text)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// encodeDocument builds the uncompressed document for the given UTF-8
// text. The byte layout mirrors documents written by the service's own
// clients: the text length appears twice, once for the primary run and
// once in the style-attribute spans.
func encodeDocument(text []byte) []byte {
	n := len(text)

	// Style runs trailing the text within the styled-string message.
	suffix := []byte{
		0x1a, 0x10, 0x0a, 0x04, 0x08, 0x00, 0x10, 0x00, 0x10, 0x00,
		0x1a, 0x04, 0x08, 0x00, 0x10, 0x00, 0x28, 0x01,
		0x1a, 0x10, 0x0a, 0x04, 0x08, 0x01, 0x10, 0x00, 0x10,
	}
	suffix = appendUvarint(suffix, n)
	suffix = append(suffix, 0x1a, 0x04, 0x08, 0x01, 0x10, 0x00, 0x28, 0x02)
	suffix = append(suffix,
		0x1a, 0x16, 0x0a, 0x08, 0x08, 0x00, 0x10, 0xff, 0xff, 0xff, 0xff, 0x0f, 0x10, 0x00,
		0x1a, 0x08, 0x08, 0x00, 0x10, 0xff, 0xff, 0xff, 0xff, 0x0f,
	)

	// Attributed-string wrapper carrying a random identifier.
	id := uuid.Must(uuid.NewV4())
	suffix = append(suffix, 0x22, 0x1c, 0x0a, 0x1a, 0x0a, 0x10)
	suffix = append(suffix, id.Bytes()...)
	suffix = append(suffix, 0x12, 0x02, 0x08)
	suffix = appendUvarint(suffix, n)
	suffix = append(suffix, 0x12, 0x02, 0x08, 0x01, 0x2a, 0x02, 0x08)
	suffix = appendUvarint(suffix, n)

	// Styled-string message: text run first, then the style runs.
	styled := appendUvarint([]byte{0x12}, n)
	styled = append(styled, text...)
	styled = append(styled, suffix...)

	// Document message wrapping the styled string.
	doc := []byte{0x08, 0x00, 0x10, 0x00, 0x1a}
	doc = appendUvarint(doc, len(styled))
	doc = append(doc, styled...)

	// Top-level message.
	full := []byte{0x08, 0x00, 0x12}
	full = appendUvarint(full, len(doc))
	full = append(full, doc...)
	return full
}

// Decode extracts the human-readable text from a document blob produced
// by any compliant writer.
//
// It first walks the nested length-delimited structure to the known
// position of the text run. If the structure does not parse, it falls
// back to the lossy FirstPrintableRun heuristic. Empty or unrecoverable
// input yields Unknown.
func Decode(blob []byte) string {
	if len(blob) == 0 {
		return Unknown
	}
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return Unknown
	}
	raw, err := io.ReadAll(zr)
	if err != nil || len(raw) == 0 {
		return Unknown
	}
	if text, ok := walkDocument(raw); ok {
		return text
	}
	return FirstPrintableRun(raw)
}

// DecodeField decodes the base64 wire form of a document field value.
func DecodeField(b64 string) string {
	if b64 == "" {
		return Unknown
	}
	blob, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Unknown
	}
	return Decode(blob)
}

// walkDocument descends top level -> document (field 2) -> styled string
// (field 3) -> text run (field 2). Unknown sibling fields are skipped
// opaquely, so documents carrying extra trailing structure still decode.
func walkDocument(raw []byte) (string, bool) {
	doc, ok := messageField(raw, 2)
	if !ok {
		return "", false
	}
	styled, ok := messageField(doc, 3)
	if !ok {
		return "", false
	}
	text, ok := messageField(styled, 2)
	if !ok {
		return "", false
	}
	return string(text), true
}

// messageField returns the payload of the first length-delimited field
// with the given number, skipping other fields by wire type.
func messageField(msg []byte, num uint64) ([]byte, bool) {
	for len(msg) > 0 {
		key, n := uvarint(msg)
		if n == 0 {
			return nil, false
		}
		msg = msg[n:]
		field, wire := key>>3, key&0x7

		switch wire {
		case 0: // varint
			_, n := uvarint(msg)
			if n == 0 {
				return nil, false
			}
			msg = msg[n:]
		case 1: // 64-bit
			if len(msg) < 8 {
				return nil, false
			}
			msg = msg[8:]
		case 2: // length-delimited
			size, n := uvarint(msg)
			msg = msg[n:]
			if n == 0 || uint64(len(msg)) < size {
				return nil, false
			}
			if field == num {
				return msg[:size], true
			}
			msg = msg[size:]
		case 5: // 32-bit
			if len(msg) < 4 {
				return nil, false
			}
			msg = msg[4:]
		default:
			return nil, false
		}
	}
	return nil, false
}

// FirstPrintableRun returns the first run of at least three printable
// ASCII bytes in raw, or Unknown. It is a deliberately lossy fallback:
// it relies on the real text happening to be the first printable run in
// the decompressed buffer, and truncates non-ASCII text.
func FirstPrintableRun(raw []byte) string {
	start := -1
	for i, b := range raw {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= 3 {
			return string(raw[start:i])
		}
		start = -1
	}
	if start >= 0 && len(raw)-start >= 3 {
		return string(raw[start:])
	}
	return Unknown
}
