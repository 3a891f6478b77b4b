//
// label.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire implements a wire with 0 and 1 labels.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%s", w.L0, w.L1)
}

// Label implements a 128 bit wire label. The point-and-permute bit of
// a label is its least significant bit: for any wire, lsb(L0) ^
// lsb(L1) must equal 1.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains label data as a byte array, big-endian.
type LabelData [16]byte

// SelectMask indexes into the point-and-permute select masks:
// SelectMask[0] is all-zero, SelectMask[1] is all-one. ANDing a label
// with SelectMask[b] either zeroes it or leaves it unchanged, which
// lets the half-gate formulas pick a term by permute bit without a
// data-dependent branch.
var SelectMask = [2]Label{
	{D0: 0, D1: 0},
	{D0: ^uint64(0), D1: ^uint64(0)},
}

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal tests if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewLabel creates a new random label.
func NewLabel(rand io.Reader) (Label, error) {
	var buf LabelData
	var label Label

	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return label, err
	}
	label.SetData(&buf)
	return label, nil
}

// NewDelta creates a new random global free-XOR offset with its
// point-and-permute (LSB) bit forced to one.
func NewDelta(rand io.Reader) (Label, error) {
	delta, err := NewLabel(rand)
	if err != nil {
		return delta, err
	}
	delta.SetLSB()
	return delta, nil
}

// NewTweak creates a label from a gate tweak. The tweak occupies the
// low 32 bits of the big-endian 128-bit block.
func NewTweak(tweak uint32) Label {
	return Label{
		D1: uint64(tweak),
	}
}

// LSB returns the label's point-and-permute bit.
func (l Label) LSB() uint {
	return uint(l.D1 & 1)
}

// SetLSB forces the label's point-and-permute bit to one.
func (l *Label) SetLSB() {
	l.D1 |= 1
}

// ClearLSB forces the label's point-and-permute bit to zero.
func (l *Label) ClearLSB() {
	l.D1 &^= 1
}

// Mul2 multiplies the label by 2, discarding the bit shifted out past
// bit 127.
func (l *Label) Mul2() {
	l.D0 <<= 1
	l.D0 |= (l.D1 >> 63)
	l.D1 <<= 1
}

// Mul4 multiplies the label by 4.
func (l *Label) Mul4() {
	l.D0 <<= 2
	l.D0 |= (l.D1 >> 62)
	l.D1 <<= 2
}

// Bit returns the i'th bit of the label, where bit 0 is the LSB
// (the point-and-permute bit).
func (l Label) Bit(i int) uint {
	if i < 64 {
		return uint((l.D1 >> uint(i)) & 1)
	}
	return uint((l.D0 >> uint(i-64)) & 1)
}

// SetBit sets the i'th bit of the label, where bit 0 is the LSB.
func (l *Label) SetBit(i int, v uint) {
	if i < 64 {
		if v != 0 {
			l.D1 |= 1 << uint(i)
		} else {
			l.D1 &^= 1 << uint(i)
		}
		return
	}
	i -= 64
	if v != 0 {
		l.D0 |= 1 << uint(i)
	} else {
		l.D0 &^= 1 << uint(i)
	}
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Xored returns l^o without mutating l.
func (l Label) Xored(o Label) Label {
	l.Xor(o)
	return l
}

// And returns the bitwise AND of the two labels. Paired with
// SelectMask to implement "conditional on the permute bit" without a
// branch.
func (l Label) And(o Label) Label {
	return Label{
		D0: l.D0 & o.D0,
		D1: l.D1 & o.D1,
	}
}

// GetData gets the label as big-endian label data.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the label from big-endian label data.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64((*data)[0:8])
	l.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the label data as bytes.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label data from bytes (big-endian, 16 bytes).
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}
