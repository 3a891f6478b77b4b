//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mpcot implements multi-point correlated OT: it composes t
// independent spcot trees, each covering a disjoint bucket of a
// length-n vector, to puncture that vector at t positions at once.
// This is the regular-partition strategy spec.md names as the
// alternative to a three-hash-function Cuckoo hash; it avoids the
// Cuckoo hash's insertion-failure retries at the cost of requiring
// the caller's punctured positions to already be one-per-bucket.
package mpcot

import (
	"fmt"
	"io"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
	"github.com/oblivious-labs/halfgate/spcot"
)

// SenderOutput carries the composed length-n leaf vector.
type SenderOutput struct {
	V []ot.Label
}

// ReceiverOutput carries the composed length-n leaf vector and the t
// punctured positions, one per bucket.
type ReceiverOutput struct {
	W     []ot.Label
	Alpha []uint32
}

// bucketing splits n into t buckets of sizes that are each a power of
// two, as a regular partition requires: n must be divisible by t, and
// the quotient n/t must itself be a power of two.
func bucketing(n, t int) (bucketSize int, depth int, err error) {
	if t <= 0 || n <= 0 || n%t != 0 {
		return 0, 0, fmt.Errorf("mpcot: n=%d not evenly divisible by t=%d", n, t)
	}
	bucketSize = n / t
	depth = 0
	for 1<<uint(depth) < bucketSize {
		depth++
	}
	if 1<<uint(depth) != bucketSize {
		return 0, 0, fmt.Errorf("mpcot: bucket size %d is not a power of two", bucketSize)
	}
	return bucketSize, depth, nil
}

// Sender is the MPCOT sender: it holds the global offset Delta shared
// with the garbled-circuit layer and drives t spcot trees, one per
// bucket.
type Sender struct {
	conn  *p2p.Conn
	base  ot.OT
	delta ot.Label
	rand  io.Reader
}

// NewSender creates a MPCOT sender. base is the underlying chosen-OT
// used to set up a fresh spcot instance per Extend call, which runs
// one tree per bucket.
func NewSender(base ot.OT, conn *p2p.Conn, delta ot.Label, r io.Reader) *Sender {
	return &Sender{conn: conn, base: base, delta: delta, rand: r}
}

// Extend punctures a length-n vector at t positions via a regular
// partition into t buckets of n/t, running against the receiver's
// concurrent Receiver.Extend(n, alphas). It returns the sender's
// leaf vector v.
func (s *Sender) Extend(n, t int) (SenderOutput, error) {
	_, depth, err := bucketing(n, t)
	if err != nil {
		return SenderOutput{}, err
	}

	depths := make([]int, t)
	for i := range depths {
		depths[i] = depth
	}

	sender, err := spcot.NewSender(s.base, s.conn, s.delta, s.rand)
	if err != nil {
		return SenderOutput{}, fmt.Errorf("mpcot: %w", err)
	}
	out, err := sender.Extend(depths)
	if err != nil {
		return SenderOutput{}, fmt.Errorf("mpcot: %w", err)
	}

	v := make([]ot.Label, 0, n)
	for _, bucket := range out.V {
		v = append(v, bucket...)
	}
	return SenderOutput{V: v}, nil
}

// Receiver is the MPCOT receiver.
type Receiver struct {
	conn *p2p.Conn
	base ot.OT
	rand io.Reader
}

// NewReceiver creates a MPCOT receiver.
func NewReceiver(base ot.OT, conn *p2p.Conn, r io.Reader) *Receiver {
	return &Receiver{conn: conn, base: base, rand: r}
}

// Extend punctures a length-n vector at the given positions, one per
// bucket of a regular partition into n/t-sized buckets, against the
// sender's concurrent Sender.Extend(n, t). positions[i] must fall
// within bucket i, i.e. in [i*(n/t), (i+1)*(n/t)).
func (r *Receiver) Extend(n int, positions []uint32) (ReceiverOutput, error) {
	t := len(positions)
	bucketSize, depth, err := bucketing(n, t)
	if err != nil {
		return ReceiverOutput{}, err
	}

	depths := make([]int, t)
	alphas := make([]uint32, t)
	for i, pos := range positions {
		lo := uint32(i * bucketSize)
		hi := lo + uint32(bucketSize)
		if pos < lo || pos >= hi {
			return ReceiverOutput{}, fmt.Errorf("mpcot: position %d not in bucket %d range [%d,%d)", pos, i, lo, hi)
		}
		depths[i] = depth
		alphas[i] = pos - lo
	}

	receiver, err := spcot.NewReceiver(r.base, r.conn, r.rand)
	if err != nil {
		return ReceiverOutput{}, fmt.Errorf("mpcot: %w", err)
	}
	out, err := receiver.Extend(depths, alphas)
	if err != nil {
		return ReceiverOutput{}, fmt.Errorf("mpcot: %w", err)
	}

	w := make([]ot.Label, 0, n)
	for _, bucket := range out.W {
		w = append(w, bucket...)
	}
	return ReceiverOutput{W: w, Alpha: append([]uint32(nil), positions...)}, nil
}
