//
// eval.go
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

type evalState int

const (
	evalInitialized evalState = iota
	evalExtending
	evalComplete
)

// Evaluator evaluates a garbled Circuit's gates given the active
// labels of its inputs and the encrypted-gate row stream produced by a
// matching Generator.
type Evaluator struct {
	circuit *Circuit
	tccr    *ot.TCCR
	labels  []ot.Label
	have    []bool
	gateID  uint32
	cursor  int
	hash    *blake3.Hasher
	state   evalState
}

// NewEvaluator creates an Evaluator for c.
func NewEvaluator(c *Circuit) *Evaluator {
	return &Evaluator{
		circuit: c,
		tccr:    ot.NewTCCR(),
		labels:  make([]ot.Label, c.NumWires),
		have:    make([]bool, c.NumWires),
		gateID:  1,
		hash:    blake3.New(),
	}
}

// SetInput installs an Active encoding as circuit input number index
// (an index into the Circuit's Inputs). It must be called for every
// input before Evaluate or EvaluateBatched runs.
func (e *Evaluator) SetInput(index int, active encoding.Active) error {
	if e.state != evalInitialized {
		return fmt.Errorf("circuit: evaluator: SetInput after evaluation has started")
	}
	if index < 0 || index >= len(e.circuit.Inputs) {
		return fmt.Errorf("circuit: evaluator: input index %d out of range", index)
	}
	ref := e.circuit.Inputs[index]
	if !active.Type.Equal(ref.Type) {
		return &encoding.TypeError{Expected: ref.Type, Got: active.Type}
	}
	for i, feed := range ref.Feeds {
		e.labels[feed] = active.Labels[i]
		e.have[feed] = true
	}
	return nil
}

// Evaluate evaluates every remaining gate against the full row stream
// rows, as produced by a matching Generator's Generate.
func (e *Evaluator) Evaluate(rows []ot.Label) error {
	var pos int
	return e.EvaluateBatched(len(e.circuit.Gates), func(nRows int) ([]ot.Label, error) {
		if pos+nRows > len(rows) {
			return nil, fmt.Errorf("circuit: evaluator: row stream exhausted")
		}
		batch := rows[pos : pos+nRows]
		pos += nRows
		return batch, nil
	})
}

// EvaluateBatched consumes rows batchGates gates at a time, calling
// next with the number of rows the upcoming batch of gates requires
// and evaluating them against whatever next returns. It mirrors a
// Generator's GenerateBatched cursor and gate-id schedule exactly, so
// the two sides must agree on batchGates.
func (e *Evaluator) EvaluateBatched(batchGates int, next func(nRows int) ([]ot.Label, error)) error {
	if e.state == evalComplete {
		return fmt.Errorf("circuit: evaluator: already complete")
	}
	if batchGates < 1 {
		batchGates = len(e.circuit.Gates)
	}
	e.state = evalExtending

	gates := e.circuit.Gates
	for e.cursor < len(gates) {
		end := e.cursor + batchGates
		if end > len(gates) {
			end = len(gates)
		}
		nRows := 0
		for i := e.cursor; i < end; i++ {
			if gates[i].Op == AND {
				nRows += 2
			}
		}
		rows, err := next(nRows)
		if err != nil {
			return err
		}
		if len(rows) != nRows {
			return fmt.Errorf("circuit: evaluator: expected %d rows, got %d", nRows, len(rows))
		}
		for _, l := range rows {
			var ld ot.LabelData
			l.GetData(&ld)
			e.hash.Write(ld[:])
		}

		pos := 0
		for ; e.cursor < end; e.cursor++ {
			if err := e.evalGate(gates[e.cursor], rows, &pos); err != nil {
				return err
			}
		}
	}
	e.state = evalComplete
	return nil
}

func (e *Evaluator) evalGate(gate Gate, rows []ot.Label, pos *int) error {
	switch gate.Op {
	case INV:
		e.labels[gate.Output] = e.labels[gate.Input0]
		e.have[gate.Output] = true
		return nil

	case XOR:
		z := e.labels[gate.Input0]
		z.Xor(e.labels[gate.Input1])
		e.labels[gate.Output] = z
		e.have[gate.Output] = true
		return nil

	case AND:
		x := e.labels[gate.Input0]
		y := e.labels[gate.Input1]
		sa := x.LSB()
		sb := y.LSB()

		j := e.gateID
		k := j + 1
		e.gateID += 2

		tg := rows[*pos]
		te := rows[*pos+1]
		*pos += 2

		hx := e.tccr.Hash(ot.NewTweak(j), x)
		hy := e.tccr.Hash(ot.NewTweak(k), y)

		z := hx
		if sa == 1 {
			z.Xor(tg)
		}
		z.Xor(hy)
		if sb == 1 {
			teXorX := te
			teXorX.Xor(x)
			z.Xor(teXorX)
		}
		e.labels[gate.Output] = z
		e.have[gate.Output] = true
		return nil

	default:
		return fmt.Errorf("circuit: evaluator: unsupported operation %v", gate.Op)
	}
}

// OutputActive returns the Active encoding of output number index,
// valid once evaluation has completed.
func (e *Evaluator) OutputActive(index int) (encoding.Active, error) {
	if e.state != evalComplete {
		return encoding.Active{}, fmt.Errorf("circuit: evaluator: evaluation not complete")
	}
	if index < 0 || index >= len(e.circuit.Outputs) {
		return encoding.Active{}, fmt.Errorf("circuit: evaluator: output index %d out of range", index)
	}
	ref := e.circuit.Outputs[index]
	labels := make([]ot.Label, len(ref.Feeds))
	for i, feed := range ref.Feeds {
		if !e.have[feed] {
			return encoding.Active{}, fmt.Errorf("circuit: evaluator: output feed %d never assigned", feed)
		}
		labels[i] = e.labels[feed]
	}
	return encoding.Active{Type: ref.Type, Labels: labels}, nil
}

// Hash returns the running Blake3 digest of every consumed row, in
// consumption order. Its final value, once evaluation is complete,
// must equal the generating Generator's Hash for the transcripts to
// be considered consistent.
func (e *Evaluator) Hash() [32]byte {
	var out [32]byte
	copy(out[:], e.hash.Sum(nil))
	return out
}
