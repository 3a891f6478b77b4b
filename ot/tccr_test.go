//
// tccr_test.go
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

func TestTCCRDeterministic(t *testing.T) {
	tccr := NewTCCR()

	tweak := NewTweak(42)
	x, _ := NewLabel(rand.Reader)

	a := tccr.Hash(tweak, x)
	b := tccr.Hash(tweak, x)

	if !a.Equal(b) {
		t.Fatal("TCCR must be deterministic for fixed (tweak, x)")
	}
}

func TestTCCRTweakSensitive(t *testing.T) {
	tccr := NewTCCR()

	x, _ := NewLabel(rand.Reader)

	a := tccr.Hash(NewTweak(1), x)
	b := tccr.Hash(NewTweak(2), x)

	if a.Equal(b) {
		t.Fatal("TCCR output must depend on the tweak")
	}
}

func TestTCCRInputSensitive(t *testing.T) {
	tccr := NewTCCR()

	tweak := NewTweak(7)
	x, _ := NewLabel(rand.Reader)
	y, _ := NewLabel(rand.Reader)

	a := tccr.Hash(tweak, x)
	b := tccr.Hash(tweak, y)

	if a.Equal(b) {
		t.Fatal("TCCR output must depend on the input block")
	}
}

func TestTCCRHashMany(t *testing.T) {
	tccr := NewTCCR()

	n := 5
	tweaks := make([]Label, n)
	xs := make([]Label, n)
	for i := 0; i < n; i++ {
		tweaks[i] = NewTweak(uint32(i))
		xs[i], _ = NewLabel(rand.Reader)
	}

	got := tccr.HashMany(tweaks, xs)
	for i := 0; i < n; i++ {
		want := tccr.Hash(tweaks[i], xs[i])
		if !got[i].Equal(want) {
			t.Fatalf("HashMany[%d] mismatch", i)
		}
	}
}
