//
// gf128_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func TestMul128Zero(t *testing.T) {
	a, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var zero Label

	if !Mul128(a, zero).Equal(zero) {
		t.Fatal("a*0 must be 0")
	}
}

func TestMul128One(t *testing.T) {
	a, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	one := Label{D1: 1}

	if !Mul128(a, one).Equal(a) {
		t.Fatal("a*1 must be a")
	}
}

func TestMul128Commutative(t *testing.T) {
	a, _ := NewLabel(rand.Reader)
	b, _ := NewLabel(rand.Reader)

	if !Mul128(a, b).Equal(Mul128(b, a)) {
		t.Fatal("GF(2^128) multiplication must be commutative")
	}
}

func TestMul128Distributive(t *testing.T) {
	a, _ := NewLabel(rand.Reader)
	b, _ := NewLabel(rand.Reader)
	c, _ := NewLabel(rand.Reader)

	lhs := Mul128(a, b.Xored(c))
	rhs := Mul128(a, b).Xored(Mul128(a, c))

	if !lhs.Equal(rhs) {
		t.Fatal("a*(b+c) must equal a*b + a*c")
	}
}

func TestInnerProductReducedMatchesDeferred(t *testing.T) {
	n := 16
	a := make([]Label, n)
	b := make([]Label, n)
	for i := 0; i < n; i++ {
		a[i], _ = NewLabel(rand.Reader)
		b[i], _ = NewLabel(rand.Reader)
	}

	got := InnerProductReduced(a, b)

	lo, hi := vectorInnPrdtSumNoRed(a, b)
	want := reduce128(lo, hi)

	if !got.Equal(want) {
		t.Fatal("InnerProductReduced must match deferred-reduction accumulation")
	}
}

func TestInnerProductReducedPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched lengths")
		}
	}()
	InnerProductReduced(make([]Label, 2), make([]Label, 3))
}
