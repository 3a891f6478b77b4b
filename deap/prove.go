//
// prove.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"fmt"

	"github.com/oblivious-labs/halfgate/circuit"
)

// ExecuteProve runs the asymmetric ZK-style circuit pass as the
// prover: it only evaluates, consuming the verifier's garbled circuit
// without ever generating a mirrored one of its own. Pair with a
// peer's ExecuteVerify call on the same circuit and refs. Only the
// Leader may call it.
func (p *Party) ExecuteProve(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef) error {
	if p.Role != LeaderRole {
		return &ConfigError{Reason: "execute_prove: only the leader may prove"}
	}
	if len(inputs) != len(c.Inputs) {
		return &StateError{Reason: "execute_prove: input ref count does not match circuit"}
	}
	if len(outputs) != len(c.Outputs) {
		return &StateError{Reason: "execute_prove: output ref count does not match circuit"}
	}
	p.mu.Lock()
	finalized := p.finalized
	p.mu.Unlock()
	if finalized {
		return &StateError{Reason: "execute_prove: session already finalized"}
	}

	key := makeCircuitKey(inputs, outputs)
	assigned := p.drainAssigned()
	if err := p.evaluatePass(thread, c, inputs, outputs, key, assigned); err != nil {
		return fmt.Errorf("deap: execute_prove: %w", err)
	}
	return nil
}

// ExecuteVerify runs the asymmetric ZK-style circuit pass as the
// verifier: it only generates a circuit and streams it to the prover,
// never evaluating one of its own. Pair with a peer's ExecuteProve
// call on the same circuit and refs. Only the Follower may call it.
func (p *Party) ExecuteVerify(thread ThreadID, c *circuit.Circuit, inputs, outputs []ValueRef) error {
	if p.Role != FollowerRole {
		return &ConfigError{Reason: "execute_verify: only the follower may verify"}
	}
	if len(inputs) != len(c.Inputs) {
		return &StateError{Reason: "execute_verify: input ref count does not match circuit"}
	}
	if len(outputs) != len(c.Outputs) {
		return &StateError{Reason: "execute_verify: output ref count does not match circuit"}
	}
	p.mu.Lock()
	finalized := p.finalized
	p.mu.Unlock()
	if finalized {
		return &StateError{Reason: "execute_verify: session already finalized"}
	}

	assigned := p.drainAssigned()
	if err := p.generatePass(thread, c, inputs, outputs, assigned); err != nil {
		return fmt.Errorf("deap: execute_verify: %w", err)
	}
	return nil
}
