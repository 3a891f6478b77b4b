//
// garble.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/oblivious-labs/halfgate/encoding"
	"github.com/oblivious-labs/halfgate/ot"
	"github.com/zeebo/blake3"
)

type genState int

const (
	genInitialized genState = iota
	genExtending
	genComplete
)

// Generator garbles a Circuit's gates against a fixed global offset
// Delta, producing the zero-label of every wire and the encrypted-gate
// row stream (TG, TE per AND gate; free for XOR and INV) via the
// half-gate construction of Zahur, Rosulek and Evans.
type Generator struct {
	circuit *Circuit
	delta   ot.Label
	tccr    *ot.TCCR
	labels  []ot.Label
	gateID  uint32
	cursor  int
	hash    *blake3.Hasher
	state   genState
}

// NewGenerator creates a Generator for c under delta. delta must have
// its LSB set, as returned by ot.NewDelta.
func NewGenerator(c *Circuit, delta ot.Label) *Generator {
	return &Generator{
		circuit: c,
		delta:   delta,
		tccr:    ot.NewTCCR(),
		labels:  make([]ot.Label, c.NumWires),
		gateID:  1,
		hash:    blake3.New(),
	}
}

// Delta returns the generator's global offset.
func (g *Generator) Delta() ot.Label {
	return g.delta
}

// SetInput installs the zero-labels of a Full encoding as circuit
// input number index (an index into the Circuit's Inputs). It must be
// called for every input before Generate or GenerateBatched runs.
func (g *Generator) SetInput(index int, full encoding.Full) error {
	if g.state != genInitialized {
		return fmt.Errorf("circuit: generator: SetInput after generation has started")
	}
	if index < 0 || index >= len(g.circuit.Inputs) {
		return fmt.Errorf("circuit: generator: input index %d out of range", index)
	}
	ref := g.circuit.Inputs[index]
	if !full.Type.Equal(ref.Type) {
		return &encoding.TypeError{Expected: ref.Type, Got: full.Type}
	}
	for i, feed := range ref.Feeds {
		g.labels[feed] = full.Zero[i]
	}
	return nil
}

// Generate garbles every remaining gate in one pass and returns the
// full encrypted-row stream, two labels per AND gate in gate order.
func (g *Generator) Generate() ([]ot.Label, error) {
	var rows []ot.Label
	err := g.GenerateBatched(len(g.circuit.Gates), func(batch []ot.Label) error {
		rows = append(rows, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GenerateBatched garbles the circuit's remaining gates batchGates at
// a time, invoking emit with each batch's encrypted rows. Calling it
// repeatedly resumes from the previous call's cursor, carrying the
// state machine Initialized -> Extending -> Complete; a batchGates
// less than 1 garbles everything remaining in one batch.
func (g *Generator) GenerateBatched(batchGates int, emit func([]ot.Label) error) error {
	if g.state == genComplete {
		return fmt.Errorf("circuit: generator: already complete")
	}
	if batchGates < 1 {
		batchGates = len(g.circuit.Gates)
	}
	g.state = genExtending

	gates := g.circuit.Gates
	for g.cursor < len(gates) {
		end := g.cursor + batchGates
		if end > len(gates) {
			end = len(gates)
		}
		var batch []ot.Label
		for ; g.cursor < end; g.cursor++ {
			rows, err := g.garbleGate(gates[g.cursor])
			if err != nil {
				return err
			}
			batch = append(batch, rows...)
		}
		for _, l := range batch {
			var ld ot.LabelData
			l.GetData(&ld)
			g.hash.Write(ld[:])
		}
		if err := emit(batch); err != nil {
			return err
		}
	}
	g.state = genComplete
	return nil
}

// garbleGate garbles a single gate, updating g.labels[gate.Output] and
// returning the rows (if any) that must be sent to the evaluator.
func (g *Generator) garbleGate(gate Gate) ([]ot.Label, error) {
	switch gate.Op {
	case INV:
		z := g.labels[gate.Input0]
		z.Xor(g.delta)
		g.labels[gate.Output] = z
		return nil, nil

	case XOR:
		z := g.labels[gate.Input0]
		z.Xor(g.labels[gate.Input1])
		g.labels[gate.Output] = z
		return nil, nil

	case AND:
		a := g.labels[gate.Input0]
		b := g.labels[gate.Input1]
		pa := a.LSB()
		pb := b.LSB()

		j := g.gateID
		k := j + 1
		g.gateID += 2

		aDelta := a
		aDelta.Xor(g.delta)
		bDelta := b
		bDelta.Xor(g.delta)

		hx0 := g.tccr.Hash(ot.NewTweak(j), a)
		hy0 := g.tccr.Hash(ot.NewTweak(k), b)
		hx1 := g.tccr.Hash(ot.NewTweak(j), aDelta)
		hy1 := g.tccr.Hash(ot.NewTweak(k), bDelta)

		tg := hx0
		tg.Xor(hx1)
		if pb == 1 {
			tg.Xor(g.delta)
		}

		wg := hx0
		if pa == 1 {
			wg.Xor(tg)
		}

		te := hy0
		te.Xor(hy1)
		te.Xor(a)

		we := hy0
		if pb == 1 {
			teXorA := te
			teXorA.Xor(a)
			we.Xor(teXorA)
		}

		z := wg
		z.Xor(we)
		g.labels[gate.Output] = z

		return []ot.Label{tg, te}, nil

	default:
		return nil, fmt.Errorf("circuit: generator: unsupported operation %v", gate.Op)
	}
}

// OutputFull returns the Full (zero-label) encoding of output number
// index, valid once generation has completed.
func (g *Generator) OutputFull(index int) (encoding.Full, error) {
	if g.state != genComplete {
		return encoding.Full{}, fmt.Errorf("circuit: generator: generation not complete")
	}
	if index < 0 || index >= len(g.circuit.Outputs) {
		return encoding.Full{}, fmt.Errorf("circuit: generator: output index %d out of range", index)
	}
	ref := g.circuit.Outputs[index]
	zero := make([]ot.Label, len(ref.Feeds))
	for i, feed := range ref.Feeds {
		zero[i] = g.labels[feed]
	}
	return encoding.NewFull(ref.Type, zero)
}

// Hash returns the running Blake3 digest of every emitted row, in
// emission order. Its final value, once generation is complete, is
// the circuit's transcript hash.
func (g *Generator) Hash() [32]byte {
	var out [32]byte
	copy(out[:], g.hash.Sum(nil))
	return out
}
