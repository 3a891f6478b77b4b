//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestLabelLSB(t *testing.T) {
	label := &Label{
		D0: 0xffffffffffffffff,
		D1: 0xfffffffffffffffe,
	}

	label.SetLSB()
	if label.D1 != 0xffffffffffffffff {
		t.Fatal("failed to set LSB")
	}

	label.ClearLSB()
	if label.D1 != 0xfffffffffffffffe {
		t.Fatalf("failed to clear LSB: %x", label.D1)
	}
}

func TestLabelMul2(t *testing.T) {
	label := &Label{
		D1: 0xffffffffffffffff,
	}
	label.Mul2()
	if label.D0 != 0x1 {
		t.Fatalf("Mul2 D0 failed")
	}
	if label.D1 != 0xfffffffffffffffe {
		t.Fatalf("Mul2 D1 failed: %x", label.D1)
	}
}

func TestLabelMul4(t *testing.T) {
	label := &Label{
		D1: 0xffffffffffffffff,
	}
	label.Mul4()
	if label.D0 != 0x3 {
		t.Fatalf("Mul4 D0 failed")
	}
	if label.D1 != 0xfffffffffffffffc {
		t.Fatalf("Mul4 D1 failed")
	}
}

func TestLabelDeltaLSB(t *testing.T) {
	for i := 0; i < 100; i++ {
		delta, err := NewDelta(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		if delta.LSB() != 1 {
			t.Fatal("delta must have its LSB set")
		}
	}
}

func TestLabelBytesRoundtrip(t *testing.T) {
	l, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var buf LabelData
	data := l.Bytes(&buf)

	var l2 Label
	l2.SetBytes(data)
	if !l.Equal(l2) {
		t.Fatal("label bytes roundtrip mismatch")
	}
	if !bytes.Equal(data, buf[:]) {
		t.Fatal("Bytes should reuse the provided buffer")
	}
}

func TestLabelXor(t *testing.T) {
	a, _ := NewLabel(rand.Reader)
	b, _ := NewLabel(rand.Reader)

	c := a.Xored(b)
	c.Xor(b)
	if !c.Equal(a) {
		t.Fatal("xor is not its own inverse")
	}
}

func TestSelectMask(t *testing.T) {
	l, _ := NewLabel(rand.Reader)

	if !l.And(SelectMask[0]).Equal(Label{}) {
		t.Fatal("SelectMask[0] should zero the label")
	}
	if !l.And(SelectMask[1]).Equal(l) {
		t.Fatal("SelectMask[1] should leave the label unchanged")
	}
}
