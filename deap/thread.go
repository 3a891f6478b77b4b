//
// thread.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package deap implements the dual-execution-with-asymmetric-privacy
// orchestrator: two mirrored garbled-circuit executions between a
// Leader and a Follower, with equality checks and proofs deferred to
// a finalization phase that reveals the Follower's secrets so the
// Leader can re-derive and verify everything the Follower produced.
package deap

import "fmt"

// ThreadID names a logical execution context as a byte sequence: the
// root is empty, Fork appends a fresh 0 byte to create a child
// namespace, and Increment advances the last byte to address a
// sibling. Log buckets (equality/proof commitments, OT and circuit
// logs) are keyed by a ThreadID's string form so that forked legs
// never collide.
type ThreadID []byte

// RootThread is the top-level thread identity for a DEAP session.
func RootThread() ThreadID {
	return ThreadID{}
}

// Fork returns a child thread identity, distinct from any sibling
// produced by a later Increment on the same child.
func (t ThreadID) Fork() ThreadID {
	child := make(ThreadID, len(t)+1)
	copy(child, t)
	return child
}

// Increment advances this thread's last byte, producing the next
// sibling namespace. It errors after 255 siblings have already been
// produced at this level.
func (t ThreadID) Increment() (ThreadID, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("deap: cannot increment the root thread")
	}
	if t[len(t)-1] == 255 {
		return nil, fmt.Errorf("deap: thread %v: sibling overflow", t)
	}
	next := make(ThreadID, len(t))
	copy(next, t)
	next[len(next)-1]++
	return next, nil
}

// Key returns the thread identity's string form, used as a log bucket
// key.
func (t ThreadID) Key() string {
	return string(t)
}

func (t ThreadID) String() string {
	return fmt.Sprintf("%x", []byte(t))
}
