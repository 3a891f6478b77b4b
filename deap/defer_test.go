//
// defer_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"math/big"
	"testing"

	"github.com/oblivious-labs/halfgate/encoding"
)

func TestDeferProveVerify(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	c := buildAdderCircuit(t, 8)
	ty := encoding.ArrayType(encoding.Bit, 8)

	aRef := ValueRef{ID: "a", Type: ty, Visibility: Public}
	bRef := ValueRef{ID: "b", Type: ty, Visibility: Public}
	sumRef := ValueRef{ID: "sum", Type: ty, Visibility: Public}

	leader.Mem.Assign(aRef, bigU8(3))
	leader.Mem.Assign(bRef, bigU8(4))
	follower.Mem.Assign(aRef, bigU8(3))
	follower.Mem.Assign(bRef, bigU8(4))

	thread := RootThread().Fork()
	runBoth(t,
		func() error { return leader.ExecuteProve(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
		func() error { return follower.ExecuteVerify(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
	)

	expected := map[ValueID]*big.Int{sumRef.ID: bigU8(7)}
	deferThread := thread.Fork()
	runBoth(t,
		func() error { return leader.DeferProve(deferThread, []ValueRef{sumRef}) },
		func() error { return follower.DeferVerify(deferThread, []ValueRef{sumRef}, expected) },
	)

	key := deferKey(deferThread, []ValueRef{sumRef})
	leader.logs.mu.Lock()
	_, haveOwn := leader.logs.proofOwn[key]
	leader.logs.mu.Unlock()
	if !haveOwn {
		t.Errorf("leader should have stored its own proof record under %q", key)
	}

	follower.logs.mu.Lock()
	_, haveCommit := follower.logs.proofPeerCommit[key]
	exp, haveExpect := follower.logs.proofExpected[key]
	follower.logs.mu.Unlock()
	if !haveCommit {
		t.Errorf("follower should have stored the leader's proof commitment under %q", key)
	}
	if !haveExpect || exp.values[sumRef.ID].Cmp(bigU8(7)) != 0 {
		t.Errorf("follower's stored expectation does not match, got %+v", exp)
	}
}

func TestDeferProveVerifyRoleGuards(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	thread := RootThread().Fork()
	refs := []ValueRef{{ID: "x", Type: encoding.ScalarType(encoding.U8), Visibility: Public}}

	if _, ok := follower.DeferProve(thread, refs).(*ConfigError); !ok {
		t.Errorf("follower.DeferProve should fail with a ConfigError")
	}
	if _, ok := leader.DeferVerify(thread, refs, nil).(*ConfigError); !ok {
		t.Errorf("leader.DeferVerify should fail with a ConfigError")
	}
}
