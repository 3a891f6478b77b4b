//
// encoder.go
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
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size, in bytes, of an encoder seed.
const SeedSize = 32

// Encoder deterministically derives Full encodings from a 32-byte
// seed: encode_type(id, ty) produces bit_length(ty) zero-labels via a
// ChaCha20 stream keyed by the seed, with the stream's nonce derived
// from id so that distinct ids never share keystream. Two Encoders
// constructed from the same seed produce identical encodings for the
// same (id, ty) pair.
type Encoder struct {
	seed [SeedSize]byte
}

// NewEncoder creates an Encoder from a 32-byte seed.
func NewEncoder(seed [SeedSize]byte) *Encoder {
	return &Encoder{seed: seed}
}

// Seed returns the encoder's seed.
func (e *Encoder) Seed() [SeedSize]byte {
	return e.seed
}

// EncodeType derives the Full encoding of a value identified by id
// and typed ty.
func (e *Encoder) EncodeType(id uint64, ty ValueType) (Full, error) {
	nonce := make([]byte, chacha20.NonceSize)
	binary.BigEndian.PutUint64(nonce[0:8], id)

	cipher, err := chacha20.NewUnauthenticatedCipher(e.seed[:], nonce)
	if err != nil {
		return Full{}, fmt.Errorf("encoding: chacha20 init: %w", err)
	}

	n := ty.BitLength()
	zero := make([]ot.Label, n)

	var zeros, stream [16]byte
	for i := 0; i < n; i++ {
		cipher.XORKeyStream(stream[:], zeros[:])
		var ld ot.LabelData
		copy(ld[:], stream[:])
		zero[i].SetData(&ld)
	}
	return Full{Type: ty, Zero: zero}, nil
}
