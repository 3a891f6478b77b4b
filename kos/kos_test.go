//
// kos_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package kos

import (
	"crypto/rand"
	"testing"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

func TestKosRoundTrip(t *testing.T) {
	delta, err := ot.NewDelta(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	baseS, baseR := ot.NewPipe()
	conn0, conn1 := p2p.Pipe()

	const m = 200
	choices := make([]bool, m)
	for i := range choices {
		var b [1]byte
		rand.Read(b[:])
		choices[i] = b[0]&1 == 1
	}

	senderCh := make(chan []ot.Wire, 1)
	errCh := make(chan error, 2)

	go func() {
		coBase := ot.NewCO()
		if err := coBase.InitReceiver(baseR); err != nil {
			errCh <- err
			return
		}
		sender, err := NewSender(coBase, conn0, delta, true)
		if err != nil {
			errCh <- err
			return
		}
		wires, err := sender.Extend(m)
		if err != nil {
			errCh <- err
			return
		}
		senderCh <- wires
		errCh <- nil
	}()

	var receiverOut []ot.Label
	go func() {
		coBase := ot.NewCO()
		if err := coBase.InitSender(baseS); err != nil {
			errCh <- err
			return
		}
		receiver, err := NewReceiver(coBase, conn1, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		out, err := receiver.Extend(choices)
		if err != nil {
			errCh <- err
			return
		}
		receiverOut = out
		errCh <- nil
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatal(err)
		}
	}
	senderWires := <-senderCh

	if len(senderWires) != m || len(receiverOut) != m {
		t.Fatalf("got %d/%d outputs, want %d", len(senderWires), len(receiverOut), m)
	}
	for i := 0; i < m; i++ {
		want := senderWires[i].L0
		if choices[i] {
			want = senderWires[i].L1
		}
		if !want.Equal(receiverOut[i]) {
			t.Fatalf("RCOT mismatch at %d: choice=%v", i, choices[i])
		}
	}
}
