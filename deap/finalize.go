//
// finalize.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"github.com/oblivious-labs/halfgate/circuit"
	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

// FollowerCircuit names one circuit instance the Follower garbled
// during the session (its thread, circuit and input/output refs), so
// finalize's Leader-side regeneration pass can reproduce the circuit
// from the Follower's revealed seed and Delta. It carries no
// plaintext: every input's Full encoding is re-derived from the seed.
// The caller accumulates these across the session's
// Execute/ExecuteVerify/Load calls, since finalize has no other way to
// learn which circuits the Follower garbled.
type FollowerCircuit struct {
	Thread  ThreadID
	Circuit *circuit.Circuit
	Inputs  []ValueRef
	Outputs []ValueRef
}

// Finalize runs at most once per session, Leader driving Follower.
// The Follower reveals its encoder seed and Delta; the Leader
// regenerates every circuit named in follower and checks the
// recomputed hash and decoding table against what its own evaluator
// observed, then reveals its own equality-check and proof
// decommitments for the Follower to verify against the commitments it
// received during Decode/DeferVerify. follower is ignored by the
// Follower side of the call.
//
// Re-verifying the Follower's KOS extension transcripts -- finalize's
// contract item (a) -- is not performed here: the kos package keeps
// no transcript log a finalize pass could replay against a revealed
// base-OT choice set, only the committed-sender flag that reserves
// the hook for one.
func (p *Party) Finalize(follower []FollowerCircuit) error {
	p.mu.Lock()
	if p.finalized {
		p.mu.Unlock()
		return &StateError{Reason: "finalize: already finalized"}
	}
	p.finalized = true
	p.mu.Unlock()

	if p.Role == LeaderRole {
		return p.finalizeLeader(follower)
	}
	return p.finalizeFollower()
}

func (p *Party) finalizeFollower() error {
	if err := (p2p.FinalizeSeed{Seed: p.seed}).Send(p.conn); err != nil {
		return err
	}
	if err := p.conn.SendLabel(p.delta); err != nil {
		return err
	}
	if err := p.conn.Flush(); err != nil {
		return err
	}
	return p.verifyRevealedDecommitments()
}

func (p *Party) finalizeLeader(follower []FollowerCircuit) error {
	msg, err := p2p.ReceiveFinalizeSeed(p.conn)
	if err != nil {
		return err
	}
	followerDelta, err := p.conn.ReceiveLabel()
	if err != nil {
		return err
	}
	followerEncoder := encoding.NewEncoder(msg.Seed)

	for _, fc := range follower {
		if err := p.regenerateFollowerCircuit(fc, followerEncoder, followerDelta); err != nil {
			return err
		}
	}

	return p.revealDecommitments()
}

// regenerateFollowerCircuit reproduces one circuit the Follower
// garbled, using the now-revealed seed and Delta, and checks both the
// running transcript hash and the out-of-band decoding table against
// what this party's evaluator observed while the session was live.
func (p *Party) regenerateFollowerCircuit(fc FollowerCircuit, enc *encoding.Encoder, delta ot.Label) error {
	gen := circuit.NewGenerator(fc.Circuit, delta)
	for i, ref := range fc.Inputs {
		full, err := enc.EncodeType(encodeID(fc.Thread, ref.ID), ref.Type)
		if err != nil {
			return &FinalizationError{Reason: InvalidGarbledCircuit}
		}
		if err := gen.SetInput(i, full); err != nil {
			return &FinalizationError{Reason: InvalidGarbledCircuit}
		}
	}
	if _, err := gen.Generate(); err != nil {
		return &FinalizationError{Reason: InvalidGarbledCircuit}
	}

	p.logs.mu.Lock()
	observedHash, haveHash := p.logs.circuitHash[fc.Thread.Key()]
	observedDecoding := p.logs.decodingLog[fc.Thread.Key()]
	p.logs.mu.Unlock()
	if !haveHash || gen.Hash() != observedHash {
		return &FinalizationError{Reason: InvalidGarbledCircuit}
	}

	for i, ref := range fc.Outputs {
		full, err := gen.OutputFull(i)
		if err != nil {
			return &FinalizationError{Reason: InvalidGarbledCircuit}
		}
		want := full.Decoding().Bits
		got, ok := observedDecoding[ref.ID]
		if !ok || !bytesEqual(want, got) {
			return &FinalizationError{Reason: InvalidGarbledCircuit}
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// revealDecommitments is the Leader's half of finalize's last step: it
// sends every stored equality-check and proof decommitment it
// accumulated during Decode and DeferProve.
func (p *Party) revealDecommitments() error {
	p.logs.mu.Lock()
	eqKeys := make([]string, 0, len(p.logs.eqOwn))
	for k := range p.logs.eqOwn {
		eqKeys = append(eqKeys, k)
	}
	proofKeys := make([]string, 0, len(p.logs.proofOwn))
	for k := range p.logs.proofOwn {
		proofKeys = append(proofKeys, k)
	}
	p.logs.mu.Unlock()

	if err := p.conn.SendUint32(len(eqKeys)); err != nil {
		return err
	}
	for _, key := range eqKeys {
		p.logs.mu.Lock()
		rec := p.logs.eqOwn[key]
		p.logs.mu.Unlock()
		if err := p.conn.SendData([]byte(key)); err != nil {
			return err
		}
		payload := encodeEqualityReveal(false, rec.full, rec.active, rec.purported)
		if err := (p2p.EqualityReveal{Eq: payload}).Send(p.conn); err != nil {
			return err
		}
	}

	if err := p.conn.SendUint32(len(proofKeys)); err != nil {
		return err
	}
	for _, key := range proofKeys {
		p.logs.mu.Lock()
		rec := p.logs.proofOwn[key]
		p.logs.mu.Unlock()
		if err := p.conn.SendData([]byte(key)); err != nil {
			return err
		}
		if err := (p2p.ProofReveal{Digest: p2p.Hash(rec.digest)}).Send(p.conn); err != nil {
			return err
		}
	}
	return p.conn.Flush()
}

// verifyRevealedDecommitments is the Follower's half of finalize's
// last step: for every revealed equality check it recomputes EQ from
// the disclosed labels and checks it against the commitment received
// during Decode; for every revealed proof it checks the digest
// against the commitment received during DeferVerify and against the
// label sequence its own Full encodings would produce for the
// expected values.
func (p *Party) verifyRevealedDecommitments() error {
	nEq, err := p.conn.ReceiveUint32()
	if err != nil {
		return err
	}
	for i := 0; i < nEq; i++ {
		keyBytes, err := p.conn.ReceiveData()
		if err != nil {
			return err
		}
		key := string(keyBytes)
		msg, err := p2p.ReceiveEqualityReveal(p.conn)
		if err != nil {
			return err
		}
		followerBit, fullLabels, activeLabels, purported, err := decodeEqualityReveal(msg.Eq)
		if err != nil {
			return &FinalizationError{Reason: InvalidEqualityCheck}
		}
		if followerBit {
			return &FinalizationError{Reason: InvalidEqualityCheck}
		}

		p.logs.mu.Lock()
		wantCommit, haveCommit := p.logs.eqPeerCommit[key]
		ref, haveRef := p.logs.eqRef[key]
		p.logs.mu.Unlock()
		if !haveCommit || !haveRef {
			return &FinalizationError{Reason: InvalidEqualityCheck}
		}

		digest := equalityDigest(false, encoding.Full{Type: ref.Type, Zero: fullLabels}, encoding.Active{Type: ref.Type, Labels: activeLabels}, purported)
		if p2p.Hash(digest) != wantCommit {
			return &FinalizationError{Reason: InvalidEqualityCheck}
		}

		ownValue, ok := p.Mem.Decoded(ref.ID)
		if !ok || ownValue.Cmp(purported) != 0 {
			return &FinalizationError{Reason: InvalidEqualityCheck}
		}
	}

	nProof, err := p.conn.ReceiveUint32()
	if err != nil {
		return err
	}
	for i := 0; i < nProof; i++ {
		keyBytes, err := p.conn.ReceiveData()
		if err != nil {
			return err
		}
		key := string(keyBytes)
		msg, err := p2p.ReceiveProofReveal(p.conn)
		if err != nil {
			return err
		}

		p.logs.mu.Lock()
		wantCommit, haveCommit := p.logs.proofPeerCommit[key]
		expectation, haveExpectation := p.logs.proofExpected[key]
		p.logs.mu.Unlock()
		if !haveCommit || !haveExpectation {
			return &FinalizationError{Reason: InvalidProof}
		}

		digestBytes := [32]byte(msg.Digest)
		h := blake3Sum(digestBytes[:])
		if p2p.Hash(h) != wantCommit {
			return &FinalizationError{Reason: InvalidProof}
		}

		expectedLabels := make([][]ot.Label, len(expectation.refs))
		for j, ref := range expectation.refs {
			full, ok := p.Mem.Full(ref.ID)
			if !ok {
				return &FinalizationError{Reason: InvalidProof}
			}
			v, ok := expectation.values[ref.ID]
			if !ok {
				return &FinalizationError{Reason: InvalidProof}
			}
			expectedLabels[j] = full.Select(p.delta, v).Labels
		}
		expectedDigest := proofLabelDigest(expectedLabels)
		if expectedDigest != [32]byte(msg.Digest) {
			return &FinalizationError{Reason: InvalidProof}
		}
	}
	return nil
}
