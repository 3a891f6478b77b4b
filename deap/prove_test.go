//
// prove_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"testing"

	"github.com/oblivious-labs/halfgate/encoding"
)

func TestExecuteProveVerifyRoundTrip(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	c := buildAdderCircuit(t, 8)
	ty := encoding.ArrayType(encoding.Bit, 8)

	aRef := ValueRef{ID: "a", Type: ty, Visibility: Public}
	bRef := ValueRef{ID: "b", Type: ty, Visibility: Public}
	sumRef := ValueRef{ID: "sum", Type: ty, Visibility: Public}

	leader.Mem.Assign(aRef, bigU8(21))
	leader.Mem.Assign(bRef, bigU8(9))
	follower.Mem.Assign(aRef, bigU8(21))
	follower.Mem.Assign(bRef, bigU8(9))

	thread := RootThread().Fork()
	runBoth(t,
		func() error { return leader.ExecuteProve(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
		func() error { return follower.ExecuteVerify(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
	)

	got, ok := leader.Mem.Decoded(sumRef.ID)
	if !ok {
		t.Fatalf("leader (prover) has no decoded value for %q", sumRef.ID)
	}
	if got.Int64() != 30 {
		t.Errorf("prover decoded sum = %v, want 30", got)
	}

	if _, ok := follower.Mem.Decoded(sumRef.ID); ok {
		t.Errorf("follower (verifier) should never decode an output")
	}
}

func TestExecuteProveVerifyRoleGuards(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	c := buildAdderCircuit(t, 8)
	ty := encoding.ArrayType(encoding.Bit, 8)
	refs := []ValueRef{
		{ID: "a", Type: ty, Visibility: Public},
		{ID: "b", Type: ty, Visibility: Public},
	}
	outs := []ValueRef{{ID: "sum", Type: ty, Visibility: Public}}

	if _, ok := follower.ExecuteProve(RootThread().Fork(), c, refs, outs).(*ConfigError); !ok {
		t.Errorf("follower.ExecuteProve should fail with a ConfigError")
	}
	if _, ok := leader.ExecuteVerify(RootThread().Fork(), c, refs, outs).(*ConfigError); !ok {
		t.Errorf("leader.ExecuteVerify should fail with a ConfigError")
	}
}
