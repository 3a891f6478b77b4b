//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package mpcot

import (
	"crypto/rand"
	"testing"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

func TestMPCOTExtend(t *testing.T) {
	delta, err := ot.NewDelta(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	const n = 32
	positions := []uint32{3, 9, 19, 31}

	conn0, conn1 := p2p.Pipe()
	errCh := make(chan error, 2)

	var v SenderOutput
	go func() {
		sender := NewSender(ot.NewCO(), conn0, delta, rand.Reader)
		var err error
		v, err = sender.Extend(n, len(positions))
		errCh <- err
	}()

	var w ReceiverOutput
	go func() {
		receiver := NewReceiver(ot.NewCO(), conn1, rand.Reader)
		var err error
		w, err = receiver.Extend(n, positions)
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}

	if len(v.V) != n || len(w.W) != n {
		t.Fatalf("got len(v)=%d len(w)=%d, want %d", len(v.V), len(w.W), n)
	}

	punctured := make(map[uint32]bool)
	for _, pos := range positions {
		punctured[pos] = true
	}

	for j := 0; j < n; j++ {
		if punctured[uint32(j)] {
			want := v.V[j]
			want.Xor(delta)
			if !want.Equal(w.W[j]) {
				t.Fatalf("punctured position %d: w != v^Delta", j)
			}
		} else {
			if !v.V[j].Equal(w.W[j]) {
				t.Fatalf("position %d: w != v", j)
			}
		}
	}
}

func TestBucketingRejectsBadShape(t *testing.T) {
	if _, _, err := bucketing(30, 4); err == nil {
		t.Fatal("expected error for n not divisible by t")
	}
	if _, _, err := bucketing(24, 4); err == nil {
		t.Fatal("expected error for non-power-of-two bucket size")
	}
	size, depth, err := bucketing(32, 4)
	if err != nil {
		t.Fatal(err)
	}
	if size != 8 || depth != 3 {
		t.Fatalf("got size=%d depth=%d, want 8,3", size, depth)
	}
}
