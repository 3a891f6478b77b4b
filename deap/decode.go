//
// decode.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/oblivious-labs/halfgate/circuit"
	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
	"github.com/zeebo/blake3"
)

// equalityDigest computes EQ(v) := hash(full, active, purported,
// follower) exactly as named in the wire contract: full is this
// party's own output encoding from its own generated circuit for this
// value, active is what it holds evaluating the peer's mirrored
// circuit for the same value, and follower distinguishes a Follower's
// digest from a Leader's so the two can never be confused for the
// same commitment.
func equalityDigest(follower bool, full encoding.Full, active encoding.Active, v *big.Int) [32]byte {
	h := blake3.New()
	if follower {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	var ld ot.LabelData
	for _, l := range full.Zero {
		l.GetData(&ld)
		h.Write(ld[:])
	}
	for _, l := range active.Labels {
		l.GetData(&ld)
		h.Write(ld[:])
	}
	h.Write(v.Bytes())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// encodeEqualityReveal serializes the (full, active, purported) tuple
// an EqualityReveal decommits. The label counts are embedded so a
// receiver that was not itself present when the value's type was
// fixed can still parse the payload.
func encodeEqualityReveal(follower bool, full encoding.Full, active encoding.Active, v *big.Int) []byte {
	vb := v.Bytes()
	out := make([]byte, 0, 13+len(vb)+16*len(full.Zero)+16*len(active.Labels))
	if follower {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(vb)))
	out = append(out, u32[:]...)
	out = append(out, vb...)

	binary.BigEndian.PutUint32(u32[:], uint32(len(full.Zero)))
	out = append(out, u32[:]...)
	for _, l := range full.Zero {
		var ld ot.LabelData
		l.GetData(&ld)
		out = append(out, ld[:]...)
	}

	binary.BigEndian.PutUint32(u32[:], uint32(len(active.Labels)))
	out = append(out, u32[:]...)
	for _, l := range active.Labels {
		var ld ot.LabelData
		l.GetData(&ld)
		out = append(out, ld[:]...)
	}
	return out
}

// decodeEqualityReveal parses what encodeEqualityReveal produced.
func decodeEqualityReveal(data []byte) (follower bool, full, active []ot.Label, v *big.Int, err error) {
	if len(data) < 5 {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated")
	}
	follower = data[0] != 0
	vlen := int(binary.BigEndian.Uint32(data[1:5]))
	pos := 5
	if len(data) < pos+vlen {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated value")
	}
	v = new(big.Int).SetBytes(data[pos : pos+vlen])
	pos += vlen

	if len(data) < pos+4 {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated full count")
	}
	nFull := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if len(data) < pos+16*nFull {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated full labels")
	}
	full = make([]ot.Label, nFull)
	for i := range full {
		var ld ot.LabelData
		copy(ld[:], data[pos:pos+16])
		full[i].SetData(&ld)
		pos += 16
	}

	if len(data) < pos+4 {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated active count")
	}
	nActive := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if len(data) < pos+16*nActive {
		return false, nil, nil, nil, fmt.Errorf("deap: equality reveal: truncated active labels")
	}
	active = make([]ot.Label, nActive)
	for i := range active {
		var ld ot.LabelData
		copy(ld[:], data[pos:pos+16])
		active[i].SetData(&ld)
		pos += 16
	}
	return follower, full, active, v, nil
}

// Decode publicly reveals the plaintext of every ref in refs. Each
// value already carries the Active encoding and peer-supplied Decoding
// table Execute stored in Mem, so Decode only needs to commit the two
// parties to comparable equality digests, not transfer anything new:
// both send an EqualityCommit now and keep the opening around in Logs
// for Finalize to decommit and cross-check. A Leader's digest is
// trustworthy the moment its decommitment matches what Finalize
// regenerates of the Follower's side; confirming the Follower's own
// digest is exactly what Finalize's regeneration pass is for.
func (p *Party) Decode(thread ThreadID, refs []ValueRef) (map[ValueID]*big.Int, error) {
	out := make(map[ValueID]*big.Int, len(refs))
	commits := make([]p2p.Hash, len(refs))

	for i, ref := range refs {
		v, ok := p.Mem.Decoded(ref.ID)
		if !ok {
			return nil, &StateError{Reason: fmt.Sprintf("decode: %q has not been evaluated", ref.ID)}
		}
		out[ref.ID] = v

		active, _ := p.Mem.Active(ref.ID)

		p.logs.mu.Lock()
		full := p.logs.generatedFull[thread.Key()][ref.ID]
		p.logs.mu.Unlock()

		digest := equalityDigest(p.isFollower(), full, active, v)

		key := thread.Key() + "/" + string(ref.ID)
		p.logs.mu.Lock()
		p.logs.eqOwn[key] = eqRecord{full: full, active: active, purported: v}
		p.logs.eqCommit[key] = p2p.Hash(digest)
		p.logs.eqRef[key] = ref
		p.logs.mu.Unlock()

		commits[i] = p2p.Hash(digest)
	}

	var sendErr, recvErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, h := range commits {
			if err := (p2p.EqualityCommit{H: h}).Send(p.conn); err != nil {
				sendErr = err
				return
			}
		}
		sendErr = p.conn.Flush()
	}()
	go func() {
		defer wg.Done()
		for _, ref := range refs {
			msg, err := p2p.ReceiveEqualityCommit(p.conn)
			if err != nil {
				recvErr = err
				return
			}
			key := thread.Key() + "/" + string(ref.ID)
			p.logs.mu.Lock()
			p.logs.eqPeerCommit[key] = msg.H
			p.logs.mu.Unlock()
		}
	}()
	wg.Wait()

	if sendErr != nil {
		return nil, sendErr
	}
	if recvErr != nil {
		return nil, recvErr
	}
	return out, nil
}

// randomValue draws a uniform value of the given bit length from r.
func randomValue(r io.Reader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf)
	excess := len(buf)*8 - bits
	if excess > 0 {
		v.Rsh(v, uint(excess))
	}
	return v, nil
}

// maskPass runs a one-time-pad circuit that XORs ref's already-encoded
// value (Linked, so no wire transfer happens for it) against a fresh
// mask owned by maskOwner, publishing the masked result under maskedID
// and returning it. Only maskOwner ever learns mask in plaintext, and
// only a party that separately learns mask can recover ref's value
// from the masked output, which is what makes DecodePrivate (and its
// DecodeBlind/DecodeShared specializations) hide ref from whichever
// party never receives mask.
func (p *Party) maskPass(thread ThreadID, ref ValueRef, maskOwner Role, maskID ValueID) (maskedValue, ownMask *big.Int, err error) {
	otpCircuit, err := circuit.OTPCircuit(ref.Type)
	if err != nil {
		return nil, nil, err
	}

	maskRef := ValueRef{ID: maskID, Type: ref.Type, Visibility: Private, Owner: maskOwner}
	if p.Role == maskOwner {
		ownMask, err = randomValue(p.rand, ref.Type.BitLength())
		if err != nil {
			return nil, nil, err
		}
		p.Mem.Assign(maskRef, ownMask)
	}

	valueRef := ValueRef{ID: ref.ID, Type: ref.Type, Visibility: ref.Visibility, Owner: ref.Owner, Linked: true}
	maskedID := ValueID(fmt.Sprintf("%s$masked", ref.ID))
	maskedRef := ValueRef{ID: maskedID, Type: ref.Type, Visibility: Public}

	otpThread := thread.Fork()
	if err := p.Execute(otpThread, otpCircuit, []ValueRef{valueRef, maskRef}, []ValueRef{maskedRef}); err != nil {
		return nil, nil, err
	}
	masked, err := p.Decode(otpThread, []ValueRef{maskedRef})
	if err != nil {
		return nil, nil, err
	}
	return masked[maskedID], ownMask, nil
}

// DecodePrivate reveals ref's plaintext to exactly the party playing
// recipient, masking it from the other party with a one-time pad that
// only the non-recipient ever learns in the clear. The non-recipient
// then sends that mask directly to the recipient, who is the only one
// who can combine it with the publicly decoded masked value.
func (p *Party) DecodePrivate(thread ThreadID, ref ValueRef, recipient Role) (*big.Int, error) {
	nonRecipient := otherRole(recipient)
	maskID := ValueID(fmt.Sprintf("%s$mask", ref.ID))
	masked, ownMask, err := p.maskPass(thread, ref, nonRecipient, maskID)
	if err != nil {
		return nil, err
	}

	if p.Role == nonRecipient {
		if err := p.conn.SendData(ownMask.Bytes()); err != nil {
			return nil, err
		}
		if err := p.conn.Flush(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	data, err := p.conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	mask := new(big.Int).SetBytes(data)
	value := new(big.Int).Xor(masked, mask)
	return value, nil
}

// DecodeBlind reveals ref's plaintext to the Follower only; the
// Leader computes the same masked circuit output but, by never
// receiving the mask, stays structurally unable to recover ref.
func (p *Party) DecodeBlind(thread ThreadID, ref ValueRef) (*big.Int, error) {
	return p.DecodePrivate(thread, ref, FollowerRole)
}

// DecodeShared splits ref's plaintext into two XOR shares, one per
// party, such that leaderShare XOR followerShare reconstructs ref but
// neither share alone reveals anything about it. Both parties
// contribute a private mask; the circuit publishes
// masked := ref XOR leaderMask XOR followerMask to both sides. The
// Leader's share is its own mask; the Follower's share is masked XOR
// its own mask, so XORing the two shares cancels masked's leaderMask
// term against the Leader's share and its followerMask term against
// the Follower's own mask, leaving ref.
func (p *Party) DecodeShared(thread ThreadID, ref ValueRef) (*big.Int, error) {
	leaderMaskID := ValueID(fmt.Sprintf("%s$mask.leader", ref.ID))
	followerMaskID := ValueID(fmt.Sprintf("%s$mask.follower", ref.ID))

	otpCircuit, err := circuit.OTPCircuit(ref.Type)
	if err != nil {
		return nil, err
	}
	stage1Circuit, err := circuit.OTPCircuit(ref.Type)
	if err != nil {
		return nil, err
	}

	var leaderMask, followerMask *big.Int
	if p.Role == LeaderRole {
		leaderMask, err = randomValue(p.rand, ref.Type.BitLength())
	} else {
		followerMask, err = randomValue(p.rand, ref.Type.BitLength())
	}
	if err != nil {
		return nil, err
	}

	leaderMaskRef := ValueRef{ID: leaderMaskID, Type: ref.Type, Visibility: Private, Owner: LeaderRole}
	followerMaskRef := ValueRef{ID: followerMaskID, Type: ref.Type, Visibility: Private, Owner: FollowerRole}
	if p.Role == LeaderRole {
		p.Mem.Assign(leaderMaskRef, leaderMask)
	} else {
		p.Mem.Assign(followerMaskRef, followerMask)
	}

	stage1Out := ValueID(fmt.Sprintf("%s$stage1", ref.ID))
	stage1OutRef := ValueRef{ID: stage1Out, Type: ref.Type, Visibility: Public}
	valueRef := ValueRef{ID: ref.ID, Type: ref.Type, Visibility: ref.Visibility, Owner: ref.Owner, Linked: true}

	stage1Thread := thread.Fork()
	if err := p.Execute(stage1Thread, stage1Circuit, []ValueRef{valueRef, leaderMaskRef}, []ValueRef{stage1OutRef}); err != nil {
		return nil, err
	}

	stage1OutLinked := ValueRef{ID: stage1Out, Type: ref.Type, Visibility: Public, Linked: true}
	maskedID := ValueID(fmt.Sprintf("%s$masked", ref.ID))
	maskedRef := ValueRef{ID: maskedID, Type: ref.Type, Visibility: Public}

	stage2Thread := thread.Fork()
	if err := p.Execute(stage2Thread, otpCircuit, []ValueRef{stage1OutLinked, followerMaskRef}, []ValueRef{maskedRef}); err != nil {
		return nil, err
	}
	decoded, err := p.Decode(stage2Thread, []ValueRef{maskedRef})
	if err != nil {
		return nil, err
	}

	if p.Role == LeaderRole {
		return leaderMask, nil
	}
	return new(big.Int).Xor(decoded[maskedID], followerMask), nil
}
