// Package hex implements the small hex-digit codec the Remote Serial
// Protocol uses pervasively: register values and memory payloads are
// sequences of ASCII hex digit pairs, while addresses and lengths are hex
// numbers written without leading zeros.
package hex

// Decode reads seq as a sequence of ASCII hex digits (upper or lower case)
// and folds them big-endian into a uint64: result = result*16 + digit.
// It reports ok=false if seq is empty or contains a non-hex-digit byte.
//
// Overflow past 16 digits is not detected; RSP never produces values that
// wide, and this mirrors the protocol's own assumption.
func Decode(seq []byte) (value uint64, ok bool) {
	if len(seq) == 0 {
		return 0, false
	}

	var result uint64

	for _, c := range seq {
		v, ok := digit(c)
		if !ok {
			return 0, false
		}
		// Arithmetic form, not a shift-then-add: a draft of this routine
		// once wrote `result << 4 + v`, which Go (like C) parses as
		// `result << (4 + v)` rather than `(result << 4) | v`.
		result = result*16 + uint64(v)
	}

	return result, true
}

// DecodePair decodes exactly two hex digits into a byte. It is the
// fixed-width form used throughout the grammar parser.
func DecodePair(b0, b1 byte) (value byte, ok bool) {
	hi, ok := digit(b0)
	if !ok {
		return 0, false
	}

	lo, ok := digit(b1)
	if !ok {
		return 0, false
	}

	return hi<<4 | lo, true
}

func digit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Nibble is the lowercase hex alphabet, exported so callers formatting a
// single nibble (as the framing layer does for the checksum trailer) don't
// need to pull in fmt.
const Nibble = "0123456789abcdef"

// AppendByte appends the two-digit lowercase hex encoding of b to dst.
func AppendByte(dst []byte, b byte) []byte {
	return append(dst, Nibble[b>>4], Nibble[b&0xf])
}

// EncodeBytes returns the lowercase hex encoding of data, two digits per
// byte, big-endian.
func EncodeBytes(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = AppendByte(out, b)
	}

	return out
}

// AppendUint appends the lowercase hex encoding of v with no leading
// zeros (except that zero itself encodes as "0"), the form RSP uses for
// addresses, lengths and thread-id components.
func AppendUint(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}

	var tmp [16]byte

	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = Nibble[v&0xf]
		v >>= 4
	}

	return append(dst, tmp[i:]...)
}
