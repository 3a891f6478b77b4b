//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package spcot implements single-point correlated OT: a GGM tree of
// depth h puts a pseudorandom label on each of its 2^h leaves; the
// sender learns every leaf, the receiver learns every leaf except one
// punctured position alpha, and the receiver's value at alpha equals
// the sender's XORed with the global offset Delta. This is the
// building block Ferret's LPN-based RCOT expander composes into
// multi-point COT (see package mpcot); this package implements only
// the puncturing primitive itself, not the expander.
package spcot

import (
	"fmt"
	"io"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
)

// SenderOutput carries the leaf vectors v for one or more SPCOT trees.
type SenderOutput struct {
	V [][]ot.Label
}

// ReceiverOutput carries the leaf vectors w, and the punctured
// position alpha, for one or more SPCOT trees. For every tree i,
// V[i][Alpha[i]] ^ Delta == W[i][Alpha[i]], and V[i][j] == W[i][j] for
// every j != Alpha[i].
type ReceiverOutput struct {
	W     [][]ot.Label
	Alpha []uint32
}

func leftTweak(level int) ot.Label  { return ot.NewTweak(uint32(2 * level)) }
func rightTweak(level int) ot.Label { return ot.NewTweak(uint32(2*level + 1)) }

// expand is the GGM tree's doubling PRG: a node's two children are
// its TCCR hash under two level-and-side-separated tweaks.
func expand(tccr *ot.TCCR, level int, node ot.Label) (left, right ot.Label) {
	left = tccr.Hash(leftTweak(level), node)
	right = tccr.Hash(rightTweak(level), node)
	return left, right
}

// Sender is the SPCOT sender: it holds the global offset Delta shared
// with the garbled-circuit layer.
type Sender struct {
	conn  *p2p.Conn
	cot   *ot.COT
	delta ot.Label
	tccr  *ot.TCCR
	rand  io.Reader
}

// NewSender creates a SPCOT sender, running the chosen-message OT
// setup over base.
func NewSender(base ot.OT, conn *p2p.Conn, delta ot.Label, r io.Reader) (*Sender, error) {
	cot := ot.NewCOT(base, r)
	if err := cot.InitSender(conn); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}
	return &Sender{conn: conn, cot: cot, delta: delta, tccr: ot.NewTCCR(), rand: r}, nil
}

// Tree runs one SPCOT instance for a tree of the given depth, against
// the receiver's concurrent call to Receiver.Tree, and returns the
// sender's leaf vector v (length 2^depth).
func (s *Sender) Tree(depth int) ([]ot.Label, error) {
	if depth < 1 {
		return nil, fmt.Errorf("spcot: depth must be >= 1")
	}
	root, err := ot.NewLabel(s.rand)
	if err != nil {
		return nil, err
	}

	level := []ot.Label{root}
	k0 := make([]ot.Label, depth)
	k1 := make([]ot.Label, depth)
	for l := 0; l < depth; l++ {
		next := make([]ot.Label, 0, len(level)*2)
		for _, node := range level {
			left, right := expand(s.tccr, l, node)
			k0[l].Xor(left)
			k1[l].Xor(right)
			next = append(next, left, right)
		}
		level = next
	}
	v := level

	sum := s.delta
	for _, leaf := range v {
		sum.Xor(leaf)
	}

	wires := make([]ot.Wire, depth)
	for l := 0; l < depth; l++ {
		wires[l] = ot.Wire{L0: k1[l], L1: k0[l]}
	}
	if err := s.cot.Send(wires); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}
	if err := s.conn.SendLabel(sum); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}
	if err := s.conn.Flush(); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}
	return v, nil
}

// Extend runs len(depths) independent SPCOT trees in sequence,
// returning the sender's side of the data contract.
func (s *Sender) Extend(depths []int) (SenderOutput, error) {
	out := SenderOutput{V: make([][]ot.Label, len(depths))}
	for i, depth := range depths {
		v, err := s.Tree(depth)
		if err != nil {
			return SenderOutput{}, err
		}
		out.V[i] = v
	}
	return out, nil
}

// Receiver is the SPCOT receiver.
type Receiver struct {
	conn *p2p.Conn
	cot  *ot.COT
	tccr *ot.TCCR
}

// NewReceiver creates a SPCOT receiver, running the chosen-message OT
// setup over base.
func NewReceiver(base ot.OT, conn *p2p.Conn, r io.Reader) (*Receiver, error) {
	cot := ot.NewCOT(base, r)
	if err := cot.InitReceiver(conn); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}
	return &Receiver{conn: conn, cot: cot, tccr: ot.NewTCCR()}, nil
}

// Tree runs one SPCOT instance puncturing the leaf at alpha in a tree
// of the given depth, against the sender's concurrent call to
// Sender.Tree, and returns the receiver's leaf vector w.
func (r *Receiver) Tree(depth int, alpha uint32) ([]ot.Label, error) {
	if depth < 1 {
		return nil, fmt.Errorf("spcot: depth must be >= 1")
	}
	if alpha >= uint32(1)<<uint(depth) {
		return nil, fmt.Errorf("spcot: alpha out of range")
	}

	choices := make([]bool, depth)
	for l := 0; l < depth; l++ {
		bit := (alpha >> uint(depth-1-l)) & 1
		choices[l] = bit == 1
	}
	recovered := make([]ot.Label, depth)
	if err := r.cot.Receive(choices, recovered); err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}

	sum, err := r.conn.ReceiveLabel()
	if err != nil {
		return nil, fmt.Errorf("spcot: %w", err)
	}

	// known/vals track the live frontier: every index is a
	// reconstructed node except the single "missing" path to alpha.
	known := []bool{false}
	vals := []ot.Label{{}}
	missing := 0

	for l := 0; l < depth; l++ {
		size := 1 << uint(l+1)
		nextKnown := make([]bool, size)
		nextVals := make([]ot.Label, size)
		alphaBit := (alpha >> uint(depth-1-l)) & 1

		var sumKnownSide ot.Label
		for idx := range vals {
			if !known[idx] {
				continue
			}
			left, right := expand(r.tccr, l, vals[idx])
			nextKnown[2*idx], nextVals[2*idx] = true, left
			nextKnown[2*idx+1], nextVals[2*idx+1] = true, right
			if alphaBit == 0 {
				sumKnownSide.Xor(right)
			} else {
				sumKnownSide.Xor(left)
			}
		}

		newChild := recovered[l]
		newChild.Xor(sumKnownSide)
		knownChildIdx := 2*missing + int(1-alphaBit)
		newMissing := 2*missing + int(alphaBit)
		nextVals[knownChildIdx] = newChild
		nextKnown[knownChildIdx] = true
		nextKnown[newMissing] = false

		missing = newMissing
		known = nextKnown
		vals = nextVals
	}

	leafAlpha := sum
	for idx := range vals {
		if idx != missing {
			leafAlpha.Xor(vals[idx])
		}
	}
	vals[missing] = leafAlpha
	return vals, nil
}

// Extend runs len(depths) independent SPCOT trees in sequence,
// puncturing alphas[i] in tree i, and returns the receiver's side of
// the data contract.
func (r *Receiver) Extend(depths []int, alphas []uint32) (ReceiverOutput, error) {
	if len(alphas) != len(depths) {
		return ReceiverOutput{}, fmt.Errorf("spcot: alphas/depths length mismatch")
	}
	out := ReceiverOutput{
		W:     make([][]ot.Label, len(depths)),
		Alpha: append([]uint32(nil), alphas...),
	}
	for i, depth := range depths {
		w, err := r.Tree(depth, alphas[i])
		if err != nil {
			return ReceiverOutput{}, err
		}
		out.W[i] = w
	}
	return out, nil
}
