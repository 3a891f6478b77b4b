//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package spcot

import (
	"crypto/rand"
	"testing"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

func TestSPCOTTree(t *testing.T) {
	delta, err := ot.NewDelta(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	const depth = 6
	const alpha = 37

	conn0, conn1 := p2p.Pipe()
	errCh := make(chan error, 2)

	var v []ot.Label
	go func() {
		sender, err := NewSender(ot.NewCO(), conn0, delta, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		v, err = sender.Tree(depth)
		errCh <- err
	}()

	var w []ot.Label
	go func() {
		receiver, err := NewReceiver(ot.NewCO(), conn1, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		w, err = receiver.Tree(depth, alpha)
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}

	if len(v) != 1<<depth || len(w) != 1<<depth {
		t.Fatalf("got len(v)=%d len(w)=%d, want %d", len(v), len(w), 1<<depth)
	}

	for j := 0; j < 1<<depth; j++ {
		if j == alpha {
			want := v[j]
			want.Xor(delta)
			if !want.Equal(w[j]) {
				t.Fatalf("punctured leaf %d: w != v^Delta", j)
			}
		} else {
			if !v[j].Equal(w[j]) {
				t.Fatalf("leaf %d: w != v", j)
			}
		}
	}
}

func TestSPCOTExtendMultipleTrees(t *testing.T) {
	delta, err := ot.NewDelta(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	depths := []int{3, 4, 5}
	alphas := []uint32{2, 9, 17}

	conn0, conn1 := p2p.Pipe()
	errCh := make(chan error, 2)

	var out SenderOutput
	go func() {
		sender, err := NewSender(ot.NewCO(), conn0, delta, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		out, err = sender.Extend(depths)
		errCh <- err
	}()

	var rout ReceiverOutput
	go func() {
		receiver, err := NewReceiver(ot.NewCO(), conn1, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		rout, err = receiver.Extend(depths, alphas)
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}

	for i, depth := range depths {
		for j := 0; j < 1<<depth; j++ {
			if uint32(j) == alphas[i] {
				want := out.V[i][j]
				want.Xor(delta)
				if !want.Equal(rout.W[i][j]) {
					t.Fatalf("tree %d punctured leaf %d mismatch", i, j)
				}
			} else if !out.V[i][j].Equal(rout.W[i][j]) {
				t.Fatalf("tree %d leaf %d mismatch", i, j)
			}
		}
	}
}
