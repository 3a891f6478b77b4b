//
// deap_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/oblivious-labs/halfgate/circuit"
	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/p2p"
)

// buildAdderCircuit constructs an n-bit ripple-carry adder (sum mod
// 2^n, final carry dropped) over two n-bit inputs "a" and "b", output
// "sum". It exercises both AND and XOR gates, unlike the pure-XOR OTP
// circuit the package itself uses for masking passes.
func buildAdderCircuit(t *testing.T, n int) *circuit.Circuit {
	t.Helper()

	aFeeds := make([]circuit.Wire, n)
	bFeeds := make([]circuit.Wire, n)
	for i := 0; i < n; i++ {
		aFeeds[i] = circuit.Wire(i)
		bFeeds[i] = circuit.Wire(n + i)
	}
	next := circuit.Wire(2 * n)
	alloc := func() circuit.Wire {
		w := next
		next++
		return w
	}

	var gates []circuit.Gate
	sumFeeds := make([]circuit.Wire, n)
	var carry circuit.Wire
	haveCarry := false
	for i := 0; i < n; i++ {
		t1 := alloc()
		gates = append(gates, circuit.Gate{Op: circuit.XOR, Input0: aFeeds[i], Input1: bFeeds[i], Output: t1})

		var sum circuit.Wire
		if !haveCarry {
			sum = t1
		} else {
			sum = alloc()
			gates = append(gates, circuit.Gate{Op: circuit.XOR, Input0: t1, Input1: carry, Output: sum})
		}
		sumFeeds[i] = sum

		t2 := alloc()
		gates = append(gates, circuit.Gate{Op: circuit.AND, Input0: aFeeds[i], Input1: bFeeds[i], Output: t2})

		var carryOut circuit.Wire
		if !haveCarry {
			carryOut = t2
		} else {
			t3 := alloc()
			gates = append(gates, circuit.Gate{Op: circuit.AND, Input0: carry, Input1: t1, Output: t3})
			carryOut = alloc()
			gates = append(gates, circuit.Gate{Op: circuit.XOR, Input0: t2, Input1: t3, Output: carryOut})
		}
		carry = carryOut
		haveCarry = true
	}

	ty := encoding.ArrayType(encoding.Bit, n)
	inputs := []circuit.IORef{
		{Name: "a", Type: ty, Feeds: aFeeds},
		{Name: "b", Type: ty, Feeds: bFeeds},
	}
	outputs := []circuit.IORef{
		{Name: "sum", Type: ty, Feeds: sumFeeds},
	}
	c, err := circuit.NewCircuit(int(next), gates, inputs, outputs)
	if err != nil {
		t.Fatalf("buildAdderCircuit: %v", err)
	}
	return c
}

// newLeaderFollower wires a Leader and a Follower over an in-process
// p2p.Pipe, each with its own entropy stream.
func newLeaderFollower(t *testing.T) (*Party, *Party) {
	t.Helper()
	c0, c1 := p2p.Pipe()
	leader, err := NewLeader(c0, rand.Reader)
	if err != nil {
		t.Fatalf("NewLeader: %v", err)
	}
	follower, err := NewFollower(c1, rand.Reader)
	if err != nil {
		t.Fatalf("NewFollower: %v", err)
	}
	return leader, follower
}

func bigU8(v int) *big.Int {
	return big.NewInt(int64(v))
}
