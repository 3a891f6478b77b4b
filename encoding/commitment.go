//
// commitment.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/zeebo/blake3"
)

const commitmentDomain = "halfgate.encoding.commitment.v1"

// CommitHashSize is the size, in bytes, of a single per-bit
// commitment hash.
const CommitHashSize = 32

// EncodingCommitment is a cryptographic commitment to a Full
// encoding: two hashes per bit, in a canonical order sorted by the
// committed label's own permute bit rather than by which label is
// logically zero or one. Verify recomputes a single hash per bit and
// checks it lands in the slot matching the candidate's permute bit.
type EncodingCommitment struct {
	Type  ValueType
	Pairs [][2][CommitHashSize]byte
}

func commitHash(bitIndex int, l ot.Label) [CommitHashSize]byte {
	var buf LabelPosition
	buf.fill(bitIndex, l)

	h := blake3.New()
	h.Write([]byte(commitmentDomain))
	h.Write(buf[:])
	var out [CommitHashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// LabelPosition is the domain-separated byte string hashed for a
// single per-bit commitment: the bit index followed by the label's
// big-endian bytes.
type LabelPosition [8 + 16]byte

func (p *LabelPosition) fill(bitIndex int, l ot.Label) {
	binary.BigEndian.PutUint64(p[0:8], uint64(bitIndex))
	var ld ot.LabelData
	l.GetData(&ld)
	copy(p[8:], ld[:])
}

// Commit builds an EncodingCommitment to f under the given Delta.
func Commit(f Full, delta ot.Label) EncodingCommitment {
	pairs := make([][2][CommitHashSize]byte, len(f.Zero))
	for i, zero := range f.Zero {
		one := zero.Xored(delta)

		h0 := commitHash(i, zero)
		h1 := commitHash(i, one)

		var pair [2][CommitHashSize]byte
		if zero.LSB() == 0 {
			pair[0] = h0
			pair[1] = h1
		} else {
			pair[0] = h1
			pair[1] = h0
		}
		pairs[i] = pair
	}
	return EncodingCommitment{Type: f.Type, Pairs: pairs}
}

// Verify checks that active matches one of the committed labels of
// every bit.
func (c EncodingCommitment) Verify(active Active) error {
	if !c.Type.Equal(active.Type) {
		return &TypeError{Expected: c.Type, Got: active.Type}
	}
	if len(active.Labels) != len(c.Pairs) {
		return fmt.Errorf("encoding: commitment/active length mismatch")
	}
	for i, l := range active.Labels {
		h := commitHash(i, l)
		slot := l.LSB()
		if h != c.Pairs[i][slot] {
			return fmt.Errorf("encoding: commitment verification failed at bit %d", i)
		}
	}
	return nil
}
