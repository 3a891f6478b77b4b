//
// load_test.go
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

func TestLoadThenExecute(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	c := buildAdderCircuit(t, 8)
	ty := encoding.ArrayType(encoding.Bit, 8)

	aRef := ValueRef{ID: "a", Type: ty, Visibility: Public}
	bRef := ValueRef{ID: "b", Type: ty, Visibility: Public}
	sumRef := ValueRef{ID: "sum", Type: ty, Visibility: Public}

	thread := RootThread().Fork()
	runBoth(t,
		func() error { return leader.Load(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
		func() error { return follower.Load(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
	)

	leader.Mem.Assign(aRef, bigU8(12))
	leader.Mem.Assign(bRef, bigU8(34))
	follower.Mem.Assign(aRef, bigU8(12))
	follower.Mem.Assign(bRef, bigU8(34))

	runBoth(t,
		func() error { return leader.Execute(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
		func() error { return follower.Execute(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
	)

	var leaderDecoded, followerDecoded map[ValueID]*big.Int
	runBoth(t,
		func() (err error) { leaderDecoded, err = leader.Decode(thread, []ValueRef{sumRef}); return },
		func() (err error) { followerDecoded, err = follower.Decode(thread, []ValueRef{sumRef}); return },
	)

	if leaderDecoded[sumRef.ID].Int64() != 46 {
		t.Errorf("leader decoded sum = %v, want 46", leaderDecoded[sumRef.ID])
	}
	if followerDecoded[sumRef.ID].Int64() != 46 {
		t.Errorf("follower decoded sum = %v, want 46", followerDecoded[sumRef.ID])
	}
}

func TestLoadDuplicateKeyRejected(t *testing.T) {
	leader, follower := newLeaderFollower(t)
	c := buildAdderCircuit(t, 8)
	ty := encoding.ArrayType(encoding.Bit, 8)

	aRef := ValueRef{ID: "a", Type: ty, Visibility: Public}
	bRef := ValueRef{ID: "b", Type: ty, Visibility: Public}
	sumRef := ValueRef{ID: "sum", Type: ty, Visibility: Public}

	thread := RootThread().Fork()
	runBoth(t,
		func() error { return leader.Load(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
		func() error { return follower.Load(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}) },
	)

	if err := leader.Load(thread, c, []ValueRef{aRef, bRef}, []ValueRef{sumRef}); err == nil {
		t.Errorf("second Load with the same key should fail")
	}
}
