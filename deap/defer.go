//
// defer.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"fmt"
	"math/big"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
	"github.com/zeebo/blake3"
)

// proofLabelDigest hashes the label sequence of refs, in order, the
// value a prover is staking a claim on matching.
func proofLabelDigest(labels [][]ot.Label) [32]byte {
	h := blake3.New()
	var ld ot.LabelData
	for _, seq := range labels {
		for _, l := range seq {
			l.GetData(&ld)
			h.Write(ld[:])
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func blake3Sum(data []byte) [32]byte {
	h := blake3.New()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func deferKey(thread ThreadID, refs []ValueRef) string {
	s := thread.Key() + "|"
	for _, r := range refs {
		s += string(r.ID) + ";"
	}
	return s
}

// DeferProve commits the Leader to the label sequence it holds for
// refs -- its Active encoding as evaluator of the circuit it just
// proved against in ExecuteProve -- deferring the decommitment to
// finalize so an immediate mismatch can't be used as a
// selective-failure oracle against the Follower's expected values.
// Only the Leader may call it.
func (p *Party) DeferProve(thread ThreadID, refs []ValueRef) error {
	if p.Role != LeaderRole {
		return &ConfigError{Reason: "defer_prove: only the leader may prove"}
	}

	labels := make([][]ot.Label, len(refs))
	for i, ref := range refs {
		active, ok := p.Mem.Active(ref.ID)
		if !ok {
			return &StateError{Reason: fmt.Sprintf("defer_prove: %q has not been evaluated", ref.ID)}
		}
		labels[i] = active.Labels
	}
	digest := proofLabelDigest(labels)
	h := blake3Sum(digest[:])

	key := deferKey(thread, refs)
	p.logs.mu.Lock()
	p.logs.proofOwn[key] = proofRecord{digest: digest}
	p.logs.proofCommit[key] = p2p.Hash(h)
	p.logs.mu.Unlock()

	if err := (p2p.ProofCommit{H: p2p.Hash(h)}).Send(p.conn); err != nil {
		return err
	}
	return p.conn.Flush()
}

// DeferVerify receives the Leader's proof commitment for refs and
// stores it against expected: at finalize, once the Leader decommits
// its label digest, the Follower recomputes the digest it would get
// by selecting its own Full encodings of refs at the expected values
// and checks the two agree. Only the Follower may call it.
func (p *Party) DeferVerify(thread ThreadID, refs []ValueRef, expected map[ValueID]*big.Int) error {
	if p.Role != FollowerRole {
		return &ConfigError{Reason: "defer_verify: only the follower may verify"}
	}

	msg, err := p2p.ReceiveProofCommit(p.conn)
	if err != nil {
		return err
	}

	values := make(map[ValueID]*big.Int, len(refs))
	for _, ref := range refs {
		v, ok := expected[ref.ID]
		if !ok {
			return &StateError{Reason: fmt.Sprintf("defer_verify: missing expected value for %q", ref.ID)}
		}
		values[ref.ID] = v
	}

	key := deferKey(thread, refs)
	p.logs.mu.Lock()
	p.logs.proofPeerCommit[key] = msg.H
	p.logs.proofExpected[key] = deferExpectation{refs: refs, values: values}
	p.logs.mu.Unlock()
	return nil
}
