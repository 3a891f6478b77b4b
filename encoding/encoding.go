//
// encoding.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package encoding

import (
	"math/big"

	"github.com/oblivious-labs/halfgate/ot"
)

// Full is the generator-side encoding of a typed value: the
// zero-label of every bit, in LSB0 order. The one-label of bit i is
// Zero[i] XOR the session's Delta, which Full does not itself carry
// (the generator supplies it explicitly to Select/Commit).
type Full struct {
	Type ValueType
	Zero []ot.Label
}

// NewFull wraps a slice of zero-labels as a Full encoding. The slice
// length must equal ty.BitLength().
func NewFull(ty ValueType, zero []ot.Label) (Full, error) {
	if len(zero) != ty.BitLength() {
		return Full{}, &DecodeError{Reason: "zero-label count does not match type"}
	}
	return Full{Type: ty, Zero: zero}, nil
}

// One returns the one-label of bit i under the given Delta.
func (f Full) One(delta ot.Label, i int) ot.Label {
	return f.Zero[i].Xored(delta)
}

// Select derives the Active encoding corresponding to value: for each
// bit, it picks the zero-label if the bit is clear, or the zero-label
// XORed with Delta if the bit is set.
func (f Full) Select(delta ot.Label, value *big.Int) Active {
	labels := make([]ot.Label, len(f.Zero))
	for i := range f.Zero {
		l := f.Zero[i]
		if value.Bit(i) == 1 {
			l.Xor(delta)
		}
		labels[i] = l
	}
	return Active{Type: f.Type, Labels: labels}
}

// Decoding derives the per-bit decoding table from the zero-labels:
// d_i := lsb(L0_i).
func (f Full) Decoding() Decoding {
	bits := make([]byte, len(f.Zero))
	for i, l := range f.Zero {
		bits[i] = byte(l.LSB())
	}
	return Decoding{Type: f.Type, Bits: bits}
}

// Active is the evaluator-side encoding of a typed value: one label
// per bit, in LSB0 order — the label the evaluator currently holds
// for that wire. The LSB of each label is the point-and-permute bit.
type Active struct {
	Type   ValueType
	Labels []ot.Label
}

// Decoding holds, per output bit, the boolean lsb(L0_i): the value
// that must be XORed onto an Active encoding's permute bits to
// recover the plaintext.
type Decoding struct {
	Type ValueType
	Bits []byte
}

// Decode recovers the plaintext value from an Active encoding using
// this Decoding table: p_i := lsb(active_i) XOR d_i.
func (d Decoding) Decode(a Active) (*big.Int, error) {
	if !a.Type.Equal(d.Type) {
		return nil, &TypeError{Expected: d.Type, Got: a.Type}
	}
	if len(a.Labels) != len(d.Bits) {
		return nil, &DecodeError{Reason: "active/decoding length mismatch"}
	}
	result := big.NewInt(0)
	for i, l := range a.Labels {
		bit := l.LSB() ^ uint(d.Bits[i])
		if bit == 1 {
			result.SetBit(result, i, 1)
		}
	}
	return result, nil
}
