//
// party.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package deap

import (
	"fmt"
	"hash/fnv"
	"io"
	"math/big"
	"sync"

	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

// Role distinguishes the two DEAP participants. The Follower's outputs
// are authenticated as soon as it evaluates a Leader-generated
// circuit, against the Leader's output encoding commitments; the
// Leader's outputs, evaluated from the Follower's circuits, are
// checked only once finalize regenerates everything the Follower
// garbled.
type Role int

const (
	// LeaderRole commits to its equality checks and sends output
	// encoding commitments for every circuit it generates. Decode does
	// not check the peer's active labels against the Leader's own Full
	// encodings; the Leader's view of the Follower's circuits is
	// checked at finalize.
	LeaderRole Role = iota
	// FollowerRole verifies the Leader's output encoding commitments
	// when it evaluates a Leader-generated circuit, and reveals its
	// encoder seed and Delta at finalize.
	FollowerRole
)

func (r Role) String() string {
	if r == LeaderRole {
		return "leader"
	}
	return "follower"
}

// circuitKey identifies a preloaded circuit by its input/output value
// IDs, matching load's "keyed by the tuple (inputs, outputs)" contract.
type circuitKey string

func makeCircuitKey(inputs, outputs []ValueRef) circuitKey {
	s := ""
	for _, r := range inputs {
		s += "in:" + string(r.ID) + ";"
	}
	for _, r := range outputs {
		s += "out:" + string(r.ID) + ";"
	}
	return circuitKey(s)
}

// preload holds the evaluator-side rows for a circuit loaded ahead of
// its execute() call.
type preload struct {
	rows []ot.Label
}

// eqRecord is the data an equality check's commitment binds: this
// party's own Full encoding of ref as generator of its own circuit
// instance, its Active encoding as evaluator of the peer's mirrored
// circuit for the same ref, and the plaintext it decoded. The two
// encodings come from two independently-keyed circuits (this party's
// own Delta versus the peer's), so revealing both at finalization
// never exposes either party's Delta: that requires both labels of
// the *same* wire under one Delta, which full+active here never are.
type eqRecord struct {
	full      encoding.Full
	active    encoding.Active
	purported *big.Int
}

// proofRecord is the data a proof's commitment binds: the hash of the
// label sequence the prover claims to hold for a set of values.
type proofRecord struct {
	digest [32]byte
}

// deferExpectation is what defer_verify stores against a proof
// commitment: the refs and the plaintext values the verifier expects
// the prover's labels to correspond to, checked at finalize against
// the verifier's own Full encodings for those refs.
type deferExpectation struct {
	refs   []ValueRef
	values map[ValueID]*big.Int
}

// Logs is the per-thread bucket of deferred commitments, circuit
// hashes, and decodings that finalize reads back.
type Logs struct {
	mu sync.Mutex

	eqCommit     map[string]p2p.Hash
	eqOwn        map[string]eqRecord
	eqPeerCommit map[string]p2p.Hash
	eqRef        map[string]ValueRef

	proofCommit     map[string]p2p.Hash
	proofOwn        map[string]proofRecord
	proofPeerCommit map[string]p2p.Hash
	proofExpected   map[string]deferExpectation

	// circuitHash records, per thread, the transcript hash this party
	// observed as evaluator of the peer's circuit -- the value
	// finalize's regeneration must reproduce.
	circuitHash map[string][32]byte
	// generatedFull records, per thread, this party's own generator
	// output Full encodings, which Decode binds into each equality
	// digest.
	generatedFull map[string]map[ValueID]encoding.Full
	// decodingLog records, per thread, the raw Decoding-table bytes
	// this party received as evaluator for each output -- sent
	// out-of-band from the hashed row stream, so finalize must check
	// it separately against a from-scratch regeneration.
	decodingLog map[string]map[ValueID][]byte
}

func newLogs() *Logs {
	return &Logs{
		eqCommit:        make(map[string]p2p.Hash),
		eqOwn:           make(map[string]eqRecord),
		eqPeerCommit:    make(map[string]p2p.Hash),
		eqRef:           make(map[string]ValueRef),
		proofCommit:     make(map[string]p2p.Hash),
		proofOwn:        make(map[string]proofRecord),
		proofPeerCommit: make(map[string]p2p.Hash),
		proofExpected:   make(map[string]deferExpectation),
		circuitHash:     make(map[string][32]byte),
		generatedFull:   make(map[string]map[ValueID]encoding.Full),
		decodingLog:     make(map[string]map[ValueID][]byte),
	}
}

// Party is the shared state of one DEAP participant: its own Delta and
// encoder (used whenever it acts as generator), the peer connection,
// typed-value memory, and the deferred-verification logs.
type Party struct {
	Role Role
	conn *p2p.Conn
	rand io.Reader

	delta   ot.Label
	seed    [encoding.SeedSize]byte
	encoder *encoding.Encoder

	Mem  *Memory
	logs *Logs

	mu        sync.Mutex
	preloaded map[circuitKey]*preload
	finalized bool
	peerSeed  [encoding.SeedSize]byte
	haveSeed  bool
}

func newParty(role Role, conn *p2p.Conn, r io.Reader) (*Party, error) {
	delta, err := ot.NewDelta(r)
	if err != nil {
		return nil, fmt.Errorf("deap: %w", err)
	}
	var seed [encoding.SeedSize]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, fmt.Errorf("deap: %w", err)
	}
	return &Party{
		Role:      role,
		conn:      conn,
		rand:      r,
		delta:     delta,
		seed:      seed,
		encoder:   encoding.NewEncoder(seed),
		Mem:       NewMemory(),
		logs:      newLogs(),
		preloaded: make(map[circuitKey]*preload),
	}, nil
}

// NewLeader creates the Leader side of a DEAP session over conn, using
// r as the entropy source for Delta and the encoder seed.
func NewLeader(conn *p2p.Conn, r io.Reader) (*Party, error) {
	return newParty(LeaderRole, conn, r)
}

// NewFollower creates the Follower side of a DEAP session over conn.
func NewFollower(conn *p2p.Conn, r io.Reader) (*Party, error) {
	return newParty(FollowerRole, conn, r)
}

func (p *Party) isFollower() bool {
	return p.Role == FollowerRole
}

// otherRole returns the role that is not r; DEAP has exactly two
// participants.
func otherRole(r Role) Role {
	if r == LeaderRole {
		return FollowerRole
	}
	return LeaderRole
}

// directByGenerator reports whether, for a circuit pass whose
// generator plays generatorRole, ref's active encoding can be
// self-computed and sent directly by that generator: either because
// ref is Public (both roles already know the plaintext), or because
// the generator is also ref's Owner. Otherwise the generator does not
// know the bit and the owning evaluator must supply it via a
// chosen-message OT instead.
func directByGenerator(ref ValueRef, generatorRole Role) bool {
	return ref.Visibility == Public || ref.Owner == generatorRole
}

// encodeID derives the deterministic encoder id of a value: the FNV-1a
// hash of its thread and ValueID. Calling EncodeType(encodeID(...), ty)
// from the same encoder seed always reproduces the same Full encoding,
// which is what lets load() garble ahead of the plaintext values that
// execute() later selects against it.
func encodeID(thread ThreadID, id ValueID) uint64 {
	h := fnv.New64a()
	h.Write(thread)
	h.Write([]byte{0})
	h.Write([]byte(id))
	return h.Sum64()
}
