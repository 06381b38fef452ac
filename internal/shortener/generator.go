package shortener

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"
	"strings"
)

// Alphabet is the base62 symbol set, in digit order.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	MinCodeLength = 1
	MaxCodeLength = 16

	// base62 digits of the largest 128-bit value.
	maxEncodedLength = 22
)

// Generate derives a code of the given length from targetURL and salt.
//
// The SHA-256 digest of targetURL+salt is truncated to its first 16 bytes, read as a
// little-endian unsigned 128-bit integer, base62 encoded and cut to length characters.
// Length is clamped to [MinCodeLength, MaxCodeLength]. An empty salt hashes targetURL alone.
func Generate(targetURL, salt string, length int) string {
	length = min(max(length, MinCodeLength), MaxCodeLength)

	sum := sha256.Sum256([]byte(targetURL + salt))
	lo := binary.LittleEndian.Uint64(sum[0:8])
	hi := binary.LittleEndian.Uint64(sum[8:16])

	encoded := encodeBase62(hi, lo)
	if len(encoded) < length {
		encoded = strings.Repeat(Alphabet[:1], length-len(encoded)) + encoded
	}

	return encoded[:length]
}

// encodeBase62 encodes the 128-bit value hi:lo, most significant digit first.
func encodeBase62(hi, lo uint64) string {
	var buf [maxEncodedLength]byte

	i := len(buf)

	for hi != 0 || lo != 0 {
		var rem uint64

		hi, rem = hi/62, hi%62
		lo, rem = bits.Div64(rem, lo, 62)

		i--
		buf[i] = Alphabet[rem]
	}

	if i == len(buf) {
		return Alphabet[:1]
	}

	return string(buf[i:])
}

// ValidCode reports whether s could have been issued as a code.
func ValidCode(s string) bool {
	if len(s) < MinCodeLength || len(s) > MaxCodeLength {
		return false
	}

	for i := range len(s) {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}

	return true
}

// nextSymbol returns the alphabet symbol following c, wrapping after the last one.
func nextSymbol(c byte) byte {
	idx := strings.IndexByte(Alphabet, c)

	return Alphabet[(idx+1)%len(Alphabet)]
}
