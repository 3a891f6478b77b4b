//
// execute.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/oblivious-labs/halfgate/circuit"
	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

// gateBatchSize bounds how many gates' rows travel in one
// EncryptedGateBatch message; both generatePass and evaluatePass must
// agree on it since the evaluator derives each batch's row count from
// its own copy of the circuit, not from anything the generator sends.
const gateBatchSize = 4096

// Execute runs one mirrored circuit pass for thread: this party
// garbles c and streams its rows and input encodings to the peer,
// concurrently evaluating the peer's mirrored garbling of the same
// circuit. Output encodings land in Mem keyed by each outputs[i].ID;
// both sides' Decoding tables are exchanged in the clear as part of
// the pass.
func (p *Party) Execute(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef) error {
	if len(inputs) != len(c.Inputs) {
		return &StateError{Reason: "execute: input ref count does not match circuit"}
	}
	if len(outputs) != len(c.Outputs) {
		return &StateError{Reason: "execute: output ref count does not match circuit"}
	}
	p.mu.Lock()
	finalized := p.finalized
	p.mu.Unlock()
	if finalized {
		return &StateError{Reason: "execute: session already finalized"}
	}

	key := makeCircuitKey(inputs, outputs)
	assigned := p.drainAssigned()

	var genErr, evalErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		genErr = p.generatePass(thread, c, inputs, outputs, assigned)
	}()
	go func() {
		defer wg.Done()
		evalErr = p.evaluatePass(thread, c, inputs, outputs, key, assigned)
	}()
	wg.Wait()

	if genErr != nil {
		return fmt.Errorf("deap: generate: %w", genErr)
	}
	if evalErr != nil {
		return fmt.Errorf("deap: evaluate: %w", evalErr)
	}
	return nil
}

// drainAssigned pulls every pending plaintext assignment into a
// read-only snapshot that generatePass and evaluatePass can consult
// concurrently without contending on Mem's pending queue.
func (p *Party) drainAssigned() map[ValueID]*big.Int {
	out := make(map[ValueID]*big.Int)
	for _, a := range p.Mem.DrainPending() {
		out[a.ref.ID] = a.value
	}
	return out
}

// inputFull returns the Full encoding for ref, reusing one already
// cached in Mem (e.g. from a prior Load of the same value) or else
// deriving a fresh one deterministically from thread and ref.ID.
func (p *Party) inputFull(thread ThreadID, ref ValueRef) (encoding.Full, error) {
	if full, ok := p.Mem.Full(ref.ID); ok {
		return full, nil
	}
	full, err := p.encoder.EncodeType(encodeID(thread, ref.ID), ref.Type)
	if err != nil {
		return encoding.Full{}, err
	}
	p.Mem.SetFull(ref.ID, full)
	return full, nil
}

// generatePass garbles c as this party's own circuit and streams it to
// the peer: rows in gateBatchSize chunks, then the direct-send active
// encodings of every Public/Private input, then the Blind inputs via
// chosen-message OT with this party as sender, then every output's
// Decoding table in the clear.
func (p *Party) generatePass(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef, assigned map[ValueID]*big.Int) error {
	gen := circuit.NewGenerator(c, p.delta)

	fulls := make([]encoding.Full, len(inputs))
	for i, ref := range inputs {
		if ref.Linked {
			full, ok := p.Mem.Full(ref.ID)
			if !ok {
				return &StateError{Reason: fmt.Sprintf("execute: linked input %q has no cached Full encoding", ref.ID)}
			}
			fulls[i] = full
		} else {
			full, err := p.inputFull(thread, ref)
			if err != nil {
				return err
			}
			fulls[i] = full
		}
		if err := gen.SetInput(i, fulls[i]); err != nil {
			return err
		}
	}

	if err := gen.GenerateBatched(gateBatchSize, func(batch []ot.Label) error {
		if err := (p2p.EncryptedGateBatch{Rows: batch}).Send(p.conn); err != nil {
			return err
		}
		return p.conn.Flush()
	}); err != nil {
		return err
	}

	var directEncodings [][]ot.Label
	var blindWires []ot.Wire
	for i, ref := range inputs {
		if ref.Linked {
			continue
		}
		if directByGenerator(ref, p.Role) {
			v, ok := assigned[ref.ID]
			if !ok {
				return &StateError{Reason: fmt.Sprintf("execute: no plaintext assigned for %s input %q", ref.Visibility, ref.ID)}
			}
			active := fulls[i].Select(p.delta, v)
			directEncodings = append(directEncodings, active.Labels)
		} else {
			for bit := range fulls[i].Zero {
				zero := fulls[i].Zero[bit]
				blindWires = append(blindWires, ot.Wire{L0: zero, L1: zero.Xored(p.delta)})
			}
		}
	}

	if err := (p2p.EncodedActiveInput{Encodings: directEncodings}).Send(p.conn); err != nil {
		return err
	}
	if err := p.conn.Flush(); err != nil {
		return err
	}

	if len(blindWires) > 0 {
		cot := ot.NewCOT(ot.NewCO(), p.rand)
		if err := cot.InitSender(p.conn); err != nil {
			return fmt.Errorf("blind input transfer: %w", err)
		}
		if err := cot.Send(blindWires); err != nil {
			return fmt.Errorf("blind input transfer: %w", err)
		}
	}

	outFulls := make(map[ValueID]encoding.Full, len(outputs))
	var decodingBits []byte
	for i, ref := range outputs {
		full, err := gen.OutputFull(i)
		if err != nil {
			return err
		}
		outFulls[ref.ID] = full
		p.Mem.SetFull(ref.ID, full)
		decodingBits = append(decodingBits, full.Decoding().Bits...)
	}
	p.logs.mu.Lock()
	p.logs.generatedFull[thread.Key()] = outFulls
	p.logs.mu.Unlock()

	if err := p.conn.SendData(decodingBits); err != nil {
		return err
	}
	if err := p.conn.Flush(); err != nil {
		return err
	}

	// Only the Leader's generator commits to its output encodings, so
	// the Follower, evaluating a Leader-generated circuit in Execute,
	// can authenticate its decoded value immediately instead of
	// waiting for finalize. A Follower-generated circuit (Execute's
	// other leg, or ExecuteVerify) carries no commitment.
	if p.Role == LeaderRole {
		var pairs []p2p.EncodingCommitmentPair
		for _, ref := range outputs {
			commitment := encoding.Commit(outFulls[ref.ID], p.delta)
			for _, pr := range commitment.Pairs {
				pairs = append(pairs, p2p.EncodingCommitmentPair{H0: p2p.Hash(pr[0]), H1: p2p.Hash(pr[1])})
			}
		}
		if err := (p2p.EncodingCommitmentMsg{Pairs: pairs}).Send(p.conn); err != nil {
			return err
		}
		if err := p.conn.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// evaluatePass receives the peer's mirrored garbling of c and
// evaluates it: cached rows from a prior Load when key matches,
// otherwise rows read off the wire in gateBatchSize chunks; the
// direct-send active inputs; the Blind inputs via chosen-message OT
// with this party as receiver, selecting on its own known bits; and
// finally the peer's output Decoding tables.
func (p *Party) evaluatePass(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef, key circuitKey, assigned map[ValueID]*big.Int) error {
	eval := circuit.NewEvaluator(c)

	p.mu.Lock()
	cached, haveCached := p.preloaded[key]
	if haveCached {
		delete(p.preloaded, key)
	}
	p.mu.Unlock()

	if haveCached {
		pos := 0
		if err := eval.EvaluateBatched(gateBatchSize, func(nRows int) ([]ot.Label, error) {
			if pos+nRows > len(cached.rows) {
				return nil, fmt.Errorf("execute: cached row stream exhausted")
			}
			batch := cached.rows[pos : pos+nRows]
			pos += nRows
			return batch, nil
		}); err != nil {
			return err
		}
	} else {
		if err := eval.EvaluateBatched(gateBatchSize, func(nRows int) ([]ot.Label, error) {
			msg, err := p2p.ReceiveEncryptedGateBatch(p.conn)
			if err != nil {
				return nil, err
			}
			if len(msg.Rows) != nRows {
				return nil, fmt.Errorf("execute: expected %d rows, got %d", nRows, len(msg.Rows))
			}
			return msg.Rows, nil
		}); err != nil {
			return err
		}
	}

	directMsg, err := p2p.ReceiveEncodedActiveInput(p.conn)
	if err != nil {
		return err
	}

	peerRole := otherRole(p.Role)
	var blindFlags []bool
	var blindRef []int
	directIdx := 0
	actives := make([]encoding.Active, len(inputs))
	for i, ref := range inputs {
		if ref.Linked {
			active, ok := p.Mem.Active(ref.ID)
			if !ok {
				return &StateError{Reason: fmt.Sprintf("execute: linked input %q has no cached Active encoding", ref.ID)}
			}
			actives[i] = active
			continue
		}
		if directByGenerator(ref, peerRole) {
			if directIdx >= len(directMsg.Encodings) {
				return &StateError{Reason: "execute: direct-send input underflow"}
			}
			actives[i] = encoding.Active{Type: ref.Type, Labels: directMsg.Encodings[directIdx]}
			directIdx++
		} else {
			v, ok := assigned[ref.ID]
			if !ok {
				return &StateError{Reason: fmt.Sprintf("execute: no plaintext assigned for blind input %q", ref.ID)}
			}
			n := ref.Type.BitLength()
			for bit := 0; bit < n; bit++ {
				blindFlags = append(blindFlags, v.Bit(bit) == 1)
			}
			blindRef = append(blindRef, i)
		}
	}

	if len(blindFlags) > 0 {
		cot := ot.NewCOT(ot.NewCO(), p.rand)
		if err := cot.InitReceiver(p.conn); err != nil {
			return fmt.Errorf("blind input transfer: %w", err)
		}
		result := make([]ot.Label, len(blindFlags))
		if err := cot.Receive(blindFlags, result); err != nil {
			return fmt.Errorf("blind input transfer: %w", err)
		}
		pos := 0
		for _, i := range blindRef {
			n := inputs[i].Type.BitLength()
			actives[i] = encoding.Active{Type: inputs[i].Type, Labels: result[pos : pos+n]}
			pos += n
		}
	}

	for i, active := range actives {
		if err := eval.SetInput(i, active); err != nil {
			return err
		}
	}

	total := 0
	for _, ref := range outputs {
		total += ref.Type.BitLength()
	}
	decodingBits, err := p.conn.ReceiveData()
	if err != nil {
		return err
	}
	if len(decodingBits) != total {
		return &StateError{Reason: "execute: peer decoding table has wrong length"}
	}

	if peerRole == LeaderRole {
		msg, err := p2p.ReceiveEncodingCommitmentMsg(p.conn)
		if err != nil {
			return err
		}
		pos := 0
		for i, ref := range outputs {
			n := ref.Type.BitLength()
			if pos+n > len(msg.Pairs) {
				return &StateError{Reason: "execute: encoding commitment has too few pairs"}
			}
			active, err := eval.OutputActive(i)
			if err != nil {
				return err
			}
			pairs := make([][2][encoding.CommitHashSize]byte, n)
			for j := 0; j < n; j++ {
				pairs[j][0] = [encoding.CommitHashSize]byte(msg.Pairs[pos+j].H0)
				pairs[j][1] = [encoding.CommitHashSize]byte(msg.Pairs[pos+j].H1)
			}
			pos += n
			commitment := encoding.EncodingCommitment{Type: ref.Type, Pairs: pairs}
			if err := commitment.Verify(active); err != nil {
				return fmt.Errorf("execute: output %q failed immediate authentication: %w", ref.ID, err)
			}
		}
	}

	return p.storeEvaluatedOutputs(thread, eval, outputs, decodingBits)
}

// storeEvaluatedOutputs records every output's Active encoding and
// peer-supplied Decoding table in Mem, and remembers the transcript
// hash of the circuit this party just evaluated against thread, which
// finalize compares to a regeneration when the peer is the Follower.
func (p *Party) storeEvaluatedOutputs(thread ThreadID, eval *circuit.Evaluator, outputs []ValueRef, decodingBits []byte) error {
	received := make(map[ValueID][]byte, len(outputs))
	pos := 0
	for i, ref := range outputs {
		active, err := eval.OutputActive(i)
		if err != nil {
			return err
		}
		n := ref.Type.BitLength()
		bits := decodingBits[pos : pos+n]
		dec := encoding.Decoding{Type: ref.Type, Bits: bits}
		pos += n
		received[ref.ID] = append([]byte(nil), bits...)

		p.Mem.SetActive(ref.ID, active)
		v, err := dec.Decode(active)
		if err != nil {
			return err
		}
		p.Mem.SetDecoded(ref.ID, v)
	}
	p.logs.mu.Lock()
	p.logs.circuitHash[thread.Key()] = eval.Hash()
	p.logs.decodingLog[thread.Key()] = received
	p.logs.mu.Unlock()
	return nil
}

