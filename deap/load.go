//
// load.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"fmt"

	"github.com/oblivious-labs/halfgate/circuit"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

// Load garbles and streams c ahead of the plaintext values its inputs
// will eventually carry, caching the peer's rows under the
// (inputs, outputs) key so a later Execute call with the same refs
// skips the row transfer and starts straight from input encoding. It
// is a pure latency-hiding optimization: Load's own output encodings
// are computed and immediately discarded, since only Execute's later
// Select against the real plaintext values is meaningful.
//
// Calling Load twice with the same key is an error; a preloaded
// circuit must be consumed by exactly one later Execute.
func (p *Party) Load(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef) error {
	if len(inputs) != len(c.Inputs) {
		return &StateError{Reason: "load: input ref count does not match circuit"}
	}
	if len(outputs) != len(c.Outputs) {
		return &StateError{Reason: "load: output ref count does not match circuit"}
	}
	key := makeCircuitKey(inputs, outputs)

	p.mu.Lock()
	if _, exists := p.preloaded[key]; exists {
		p.mu.Unlock()
		return &StateError{Reason: "load: circuit already preloaded for this (inputs, outputs) key"}
	}
	p.mu.Unlock()

	var genErr, recvErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		genErr = p.loadGenerate(thread, c, inputs)
	}()
	recvErr = p.loadReceive(c, key)
	<-done

	if genErr != nil {
		return fmt.Errorf("deap: load generate: %w", genErr)
	}
	if recvErr != nil {
		return fmt.Errorf("deap: load receive: %w", recvErr)
	}
	return nil
}

// loadGenerate garbles c using the deterministic per-value Full
// encodings (so a later Execute reproduces identical rows) and streams
// only the encrypted rows; it never transfers input encodings, since
// no plaintext is bound yet.
func (p *Party) loadGenerate(thread ThreadID, c *circuit.Circuit, inputs []ValueRef) error {
	gen := circuit.NewGenerator(c, p.delta)
	for i, ref := range inputs {
		full, err := p.inputFull(thread, ref)
		if err != nil {
			return err
		}
		if err := gen.SetInput(i, full); err != nil {
			return err
		}
	}
	return gen.GenerateBatched(gateBatchSize, func(batch []ot.Label) error {
		if err := (p2p.EncryptedGateBatch{Rows: batch}).Send(p.conn); err != nil {
			return err
		}
		return p.conn.Flush()
	})
}

// loadReceive reads the peer's mirrored Load row stream in full and
// caches it under key for a later Execute to consume.
func (p *Party) loadReceive(c *circuit.Circuit, key circuitKey) error {
	want := 0
	for _, g := range c.Gates {
		if g.Op == circuit.AND {
			want += 2
		}
	}

	var rows []ot.Label
	for len(rows) < want {
		msg, err := p2p.ReceiveEncryptedGateBatch(p.conn)
		if err != nil {
			return err
		}
		rows = append(rows, msg.Rows...)
	}
	if len(rows) != want {
		return &StateError{Reason: "load: peer row stream length mismatch"}
	}

	p.mu.Lock()
	p.preloaded[key] = &preload{rows: rows}
	p.mu.Unlock()
	return nil
}
