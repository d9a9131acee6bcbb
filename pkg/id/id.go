// Package id generates sortable, URL-safe identifiers for storage keys and slugs.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"
)

const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ" // Crockford base32

// NewULID returns a 26-character ULID: 48 bits of millisecond time followed by
// 80 random bits, Crockford base32 encoded. IDs sort by creation time.
func NewULID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[:8], uint64(now.UnixMilli())<<16)
	fillRandom(raw[6:], now)
	return encode(raw[:], 26)
}

// NewShortID returns a 16-character id: 30 bits of time and 50 random bits.
// Good enough to de-duplicate slugs, not to be globally unique.
func NewShortID() string {
	var raw [10]byte
	now := time.Now()
	ts := uint32(now.UnixMilli() & 0x3FFFFFFF)
	binary.BigEndian.PutUint32(raw[:4], ts<<2)
	fillRandom(raw[4:], now)
	// Keep the time bits in the first 6 symbols.
	raw[3] &= 0xFC
	return encode(raw[:], 16)
}

func fillRandom(b []byte, now time.Time) {
	if _, err := rand.Read(b); err != nil {
		var fallback [8]byte
		binary.BigEndian.PutUint64(fallback[:], uint64(now.UnixNano()))
		for i := range b {
			b[i] = fallback[i%8]
		}
	}
}

// encode writes n base32 symbols taken from the most significant bits of b.
func encode(b []byte, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	bit := 0
	for range n {
		var v byte
		for range 5 {
			v <<= 1
			if byteIdx := bit / 8; byteIdx < len(b) {
				v |= (b[byteIdx] >> (7 - bit%8)) & 1
			}
			bit++
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}
