package titledoc

// appendUvarint appends n to dst as a base-128 little-endian varint,
// the encoding used for every length prefix inside a title document.
//
// Negative input is a programmer error and panics rather than returning
// an error: every caller derives n from a byte length.
func appendUvarint(dst []byte, n int) []byte {
	if n < 0 {
		panic("titledoc: negative varint value")
	}
	for n >= 0x80 {
		dst = append(dst, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(dst, byte(n))
}

// uvarint decodes a base-128 varint from b, returning the value and the
// number of bytes consumed. A truncated or oversized varint returns n=0.
func uvarint(b []byte) (v uint64, n int) {
	var shift uint
	for i, c := range b {
		if i >= 9 {
			return 0, 0
		}
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, 0
}
