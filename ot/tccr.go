//
// tccr.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/aes"
	"crypto/cipher"
)

// fixedKey is the public constant key for the fixed-key AES
// permutation used by TCCR. Its value is arbitrary but must be the
// same constant on both ends of a garbled-circuit session.
var fixedKey = [16]byte{
	0x61, 0x7e, 0x8d, 0xa2, 0xa0, 0x51, 0x1e, 0x96,
	0x5e, 0x41, 0xc2, 0x9b, 0x15, 0x3f, 0xc7, 0x7a,
}

// TCCR implements the tweakable circular correlation-robust hash
// built from fixed-key AES:
//
//	tccr(tweak, x) = pi(pi(x) ^ tweak) ^ pi(x) ^ tweak
//
// where pi is AES-128 under the fixed public key. TCCR is stateless
// and safe to share across goroutines; callers must supply
// independent tweaks per call.
type TCCR struct {
	cipher cipher.Block
}

// NewTCCR creates a new TCCR hash instance.
func NewTCCR() *TCCR {
	block, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		// fixedKey is a compile-time constant of the correct length;
		// aes.NewCipher can only fail on bad key length.
		panic(err)
	}
	return &TCCR{
		cipher: block,
	}
}

func (t *TCCR) pi(x Label) Label {
	var in, out LabelData
	x.GetData(&in)
	t.cipher.Encrypt(out[:], in[:])
	var r Label
	r.SetData(&out)
	return r
}

// Hash computes tccr(tweak, x) = pi(pi(x) ^ tweak) ^ pi(x) ^ tweak.
func (t *TCCR) Hash(tweak, x Label) Label {
	px := t.pi(x)

	pxt := px
	pxt.Xor(tweak)
	ppxt := t.pi(pxt)

	r := ppxt
	r.Xor(px)
	r.Xor(tweak)
	return r
}

// HashMany computes tccr(tweak, x) for each x, reusing the cipher.
func (t *TCCR) HashMany(tweaks, xs []Label) []Label {
	out := make([]Label, len(xs))
	for i := range xs {
		out[i] = t.Hash(tweaks[i], xs[i])
	}
	return out
}
