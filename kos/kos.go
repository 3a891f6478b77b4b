//
// kos.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package kos implements the Keller-Orsini-Scholl correlated OT
// extension: CSP base OTs are expanded, via a PRG and a batched
// GF(2^128) consistency check, into m random-correlated OTs. The
// sender's global offset plays the role of the base-OT choice vector
// and the free-XOR Delta simultaneously, so the extension's output
// pairs are directly consumable by the garbled-circuit engine.
package kos

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/p2p"
	"github.com/zeebo/blake3"
)

// CSP is the number of base OTs (the computational security
// parameter).
const CSP = 128

// CheckPad is the number of extra statistical-check rows appended to
// every extension, per the Open Question baseline of 128 bits.
const CheckPad = 128

func roundUp64(n int) int {
	return (n + 63) &^ 63
}

func deltaBits(delta ot.Label) []bool {
	bits := make([]bool, CSP)
	for i := range bits {
		bits[i] = delta.Bit(i) == 1
	}
	return bits
}

// prgRow expands a 16-byte seed into nBits pseudorandom bits via
// AES-128 in CTR mode under a fixed zero IV: the seed is never reused
// across rows, so the zero IV introduces no collision.
func prgRow(seed *ot.LabelData, nBits int) ([]byte, error) {
	block, err := aes.NewCipher(seed[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, nBits/8)
	var iv [16]byte
	cipher.NewCTR(block, iv[:]).XORKeyStream(out, out)
	return out, nil
}

func rowBit(row []byte, l int) byte {
	return (row[l/8] >> uint(l%8)) & 1
}

func setRowBit(row []byte, l int, v byte) {
	if v != 0 {
		row[l/8] |= 1 << uint(l%8)
	} else {
		row[l/8] &^= 1 << uint(l%8)
	}
}

func xorRows(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// packColumn builds the label whose bit i, for i in [0,CSP), is bit l
// of rows[i].
func packColumn(rows [][]byte, l int) ot.Label {
	var label ot.Label
	for i := 0; i < CSP; i++ {
		label.SetBit(i, uint(rowBit(rows[i], l)))
	}
	return label
}

// chiSeeds derives mPad GF(2^128) challenge values from seed via a
// PRG, for the batched consistency check.
func chiSeeds(seed ot.Label, mPad int) ([]ot.Label, error) {
	var ld ot.LabelData
	seed.GetData(&ld)
	data, err := prgRow(&ld, mPad*128)
	if err != nil {
		return nil, err
	}
	chis := make([]ot.Label, mPad)
	for l := range chis {
		var row ot.LabelData
		copy(row[:], data[16*l:16*l+16])
		chis[l].SetData(&row)
	}
	return chis, nil
}

func commitSeed(seed ot.Label) p2p.Hash {
	var ld ot.LabelData
	seed.GetData(&ld)
	h := blake3.New()
	h.Write(ld[:])
	var out p2p.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func coinToss(conn *p2p.Conn, isCommitter bool, r io.Reader) (ot.Label, error) {
	mine, err := ot.NewLabel(r)
	if err != nil {
		return ot.Label{}, err
	}
	if isCommitter {
		if err := (p2p.CointossCommit{H: commitSeed(mine)}).Send(conn); err != nil {
			return ot.Label{}, err
		}
		if err := conn.Flush(); err != nil {
			return ot.Label{}, err
		}
		theirs, err := p2p.ReceiveCointossReveal(conn)
		if err != nil {
			return ot.Label{}, err
		}
		if len(theirs.Seeds) != 1 {
			return ot.Label{}, fmt.Errorf("kos: coin-toss: expected one seed")
		}
		if err := (p2p.CointossReveal{Seeds: []ot.Label{mine}}).Send(conn); err != nil {
			return ot.Label{}, err
		}
		if err := conn.Flush(); err != nil {
			return ot.Label{}, err
		}
		result := mine
		result.Xor(theirs.Seeds[0])
		return result, nil
	}

	commit, err := p2p.ReceiveCointossCommit(conn)
	if err != nil {
		return ot.Label{}, err
	}
	if err := (p2p.CointossReveal{Seeds: []ot.Label{mine}}).Send(conn); err != nil {
		return ot.Label{}, err
	}
	if err := conn.Flush(); err != nil {
		return ot.Label{}, err
	}
	theirs, err := p2p.ReceiveCointossReveal(conn)
	if err != nil {
		return ot.Label{}, err
	}
	if len(theirs.Seeds) != 1 {
		return ot.Label{}, fmt.Errorf("kos: coin-toss: expected one seed")
	}
	if commitSeed(theirs.Seeds[0]) != commit.H {
		return ot.Label{}, fmt.Errorf("kos: coin-toss: commitment mismatch")
	}
	result := mine
	result.Xor(theirs.Seeds[0])
	return result, nil
}

// Sender is the KOS extension sender: it holds the global offset
// Delta and, after Extend, random-correlated OT pairs (m_i, m_i XOR
// Delta).
type Sender struct {
	conn      *p2p.Conn
	delta     ot.Label
	choices   []bool
	seeds     []ot.LabelData
	committed bool
}

// NewSender runs CSP base OTs as the receiver (its choice bits are
// the bits of delta) over base, establishing the KOS seed material.
func NewSender(base ot.OT, conn *p2p.Conn, delta ot.Label, committed bool) (*Sender, error) {
	choices := deltaBits(delta)
	labels := make([]ot.Label, CSP)
	if err := base.Receive(choices, labels); err != nil {
		return nil, fmt.Errorf("kos: base OT: %w", err)
	}
	seeds := make([]ot.LabelData, CSP)
	for i := range labels {
		labels[i].GetData(&seeds[i])
	}
	return &Sender{
		conn:      conn,
		delta:     delta,
		choices:   choices,
		seeds:     seeds,
		committed: committed,
	}, nil
}

// Delta returns the sender's global offset.
func (s *Sender) Delta() ot.Label {
	return s.delta
}

// Extend runs the sender side of a KOS extension to m random-
// correlated OTs, verifying the batched consistency check before
// returning. Result[i] is the pair (L0, L0^Delta).
func (s *Sender) Extend(m int) ([]ot.Wire, error) {
	mPad := roundUp64(m) + CheckPad
	rowBytes := mPad / 8

	se, err := p2p.ReceiveStartExtend(s.conn)
	if err != nil {
		return nil, err
	}
	if int(se.Count) != mPad {
		return nil, fmt.Errorf("kos: extend count mismatch: got %d, want %d", se.Count, mPad)
	}
	ext, err := p2p.ReceiveExtend(s.conn)
	if err != nil {
		return nil, err
	}
	if len(ext.Us) != CSP*rowBytes {
		return nil, fmt.Errorf("kos: extend: wrong U length: got %d, want %d",
			len(ext.Us), CSP*rowBytes)
	}

	qRows := make([][]byte, CSP)
	for i := 0; i < CSP; i++ {
		row, err := prgRow(&s.seeds[i], mPad)
		if err != nil {
			return nil, err
		}
		if s.choices[i] {
			u := ext.Us[i*rowBytes : (i+1)*rowBytes]
			row = xorRows(row, u)
		}
		qRows[i] = row
	}

	chiSeed, err := coinToss(s.conn, true, rand.Reader)
	if err != nil {
		return nil, err
	}
	chis, err := chiSeeds(chiSeed, mPad)
	if err != nil {
		return nil, err
	}

	qLabels := make([]ot.Label, mPad)
	for l := 0; l < mPad; l++ {
		qLabels[l] = packColumn(qRows, l)
	}

	check, err := p2p.ReceiveKosCheck(s.conn)
	if err != nil {
		return nil, err
	}
	lhs := ot.InnerProductReduced(qLabels, chis)
	rhs := check.T
	rhs.Xor(ot.Mul128(check.X, s.delta))
	if !lhs.Equal(rhs) {
		return nil, fmt.Errorf("kos: consistency check failed")
	}

	wires := make([]ot.Wire, m)
	for l := 0; l < m; l++ {
		wires[l] = ot.Wire{L0: qLabels[l], L1: qLabels[l].Xored(s.delta)}
	}
	return wires, nil
}

// Receiver is the KOS extension receiver.
type Receiver struct {
	conn  *p2p.Conn
	seed0 []ot.LabelData
	seed1 []ot.LabelData
}

// NewReceiver samples CSP base-OT seed pairs and runs CSP base OTs as
// the sender over base.
func NewReceiver(base ot.OT, conn *p2p.Conn, r io.Reader) (*Receiver, error) {
	seed0 := make([]ot.LabelData, CSP)
	seed1 := make([]ot.LabelData, CSP)
	wires := make([]ot.Wire, CSP)
	for i := 0; i < CSP; i++ {
		l0, err := ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
		l1, err := ot.NewLabel(r)
		if err != nil {
			return nil, err
		}
		l0.GetData(&seed0[i])
		l1.GetData(&seed1[i])
		wires[i] = ot.Wire{L0: l0, L1: l1}
	}
	if err := base.Send(wires); err != nil {
		return nil, fmt.Errorf("kos: base OT: %w", err)
	}
	return &Receiver{conn: conn, seed0: seed0, seed1: seed1}, nil
}

// Extend runs the receiver side of a KOS extension to len(choices)
// random-correlated OTs: choices[l] selects which half of the sender's
// pair the receiver's output at position l equals.
func (r *Receiver) Extend(choices []bool) ([]ot.Label, error) {
	m := len(choices)
	mPad := roundUp64(m) + CheckPad
	rowBytes := mPad / 8

	rBits := make([]byte, rowBytes)
	padding := make([]byte, rowBytes)
	if _, err := io.ReadFull(rand.Reader, padding); err != nil {
		return nil, err
	}
	for l := 0; l < m; l++ {
		if choices[l] {
			setRowBit(rBits, l, 1)
		}
	}
	for l := m; l < mPad; l++ {
		setRowBit(rBits, l, rowBit(padding, l))
	}

	T0 := make([][]byte, CSP)
	T1 := make([][]byte, CSP)
	U := make([]byte, CSP*rowBytes)
	for i := 0; i < CSP; i++ {
		t0, err := prgRow(&r.seed0[i], mPad)
		if err != nil {
			return nil, err
		}
		t1, err := prgRow(&r.seed1[i], mPad)
		if err != nil {
			return nil, err
		}
		T0[i] = t0
		T1[i] = t1
		u := xorRows(xorRows(t0, t1), rBits)
		copy(U[i*rowBytes:(i+1)*rowBytes], u)
	}

	if err := (p2p.StartExtend{Count: uint32(mPad)}).Send(r.conn); err != nil {
		return nil, err
	}
	if err := (p2p.Extend{Us: U}).Send(r.conn); err != nil {
		return nil, err
	}
	if err := r.conn.Flush(); err != nil {
		return nil, err
	}

	chiSeed, err := coinToss(r.conn, false, rand.Reader)
	if err != nil {
		return nil, err
	}
	chis, err := chiSeeds(chiSeed, mPad)
	if err != nil {
		return nil, err
	}

	tLabels := make([]ot.Label, mPad)
	for l := 0; l < mPad; l++ {
		tLabels[l] = packColumn(T0, l)
	}

	var x ot.Label
	for l := 0; l < mPad; l++ {
		if rowBit(rBits, l) == 1 {
			x.Xor(chis[l])
		}
	}
	t := ot.InnerProductReduced(tLabels, chis)

	if err := (p2p.KosCheck{X: x, T: t}).Send(r.conn); err != nil {
		return nil, err
	}
	if err := r.conn.Flush(); err != nil {
		return nil, err
	}

	return tLabels[:m], nil
}
