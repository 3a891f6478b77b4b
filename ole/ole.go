//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ole

import (
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/oblivious-labs/halfgate/ot"
	"github.com/oblivious-labs/halfgate/ot/mpint"
	"github.com/oblivious-labs/halfgate/p2p"
)

// FieldBits is the bit length of the P-256 field used for OLE and
// share conversion.
const FieldBits = 256

// P256Prime returns the P-256 field modulus.
func P256Prime() *big.Int {
	return elliptic.P256().Params().P
}

// Sender is the OLE sender: it holds a and, after Mul, the additive
// mask x such that the receiver's y satisfies y = a*b + x mod p.
type Sender struct {
	conn *p2p.Conn
	cot  *ot.COT
	rand io.Reader
}

// NewSender creates an OLE sender over base, using conn for the OT
// extension's own round trips.
func NewSender(base ot.OT, conn *p2p.Conn, r io.Reader) (*Sender, error) {
	cot := ot.NewCOT(base, r)
	if err := cot.InitSender(conn); err != nil {
		return nil, fmt.Errorf("ole: %w", err)
	}
	return &Sender{conn: conn, cot: cot, rand: r}, nil
}

// Mul runs a batch of OLE instances for as[i], against the receiver's
// concurrent call to Receiver.Mul with a matching-length bs. It
// returns the sender's additive masks x[i].
//
// The underlying construction is Gilboa's OT-based multiplication:
// for every bit k of the receiver's b, the sender offers the chosen-
// message pair (r, r + a*2^k mod p) over a chosen-1-out-of-2 OT; the
// receiver's choice bit b_k selects r when b_k=0 and r+a*2^k when
// b_k=1. Summing the receiver's FieldBits selections yields
// y = sum_k(r_k + b_k*a*2^k) = R + a*b, while the sender's own sum of
// the r_k values it generated is exactly R = x.
func (s *Sender) Mul(as []*big.Int, p *big.Int) ([]*big.Int, error) {
	m := len(as)
	if m == 0 {
		return nil, nil
	}
	xs := make([]*big.Int, m)
	wires := make([]ot.Wire, 2*m*FieldBits)

	for i, a := range as {
		sum := new(big.Int)
		for k := 0; k < FieldBits; k++ {
			r, err := randomFieldElement(s.rand, p)
			if err != nil {
				return nil, err
			}
			shifted := mpint.Mod(new(big.Int).Lsh(a, uint(k)), p)
			m1 := mpint.Mod(mpint.Add(r, shifted), p)

			lo0, hi0 := fieldToLabels(r)
			lo1, hi1 := fieldToLabels(m1)
			idx := 2 * (i*FieldBits + k)
			wires[idx] = ot.Wire{L0: lo0, L1: lo1}
			wires[idx+1] = ot.Wire{L0: hi0, L1: hi1}

			sum = mpint.Mod(mpint.Add(sum, r), p)
		}
		xs[i] = sum
	}

	if err := s.cot.Send(wires); err != nil {
		return nil, fmt.Errorf("ole: %w", err)
	}
	return xs, nil
}

// Receiver is the OLE receiver: it holds b and, after Mul, the
// correlated value y = a*b + x mod p.
type Receiver struct {
	conn *p2p.Conn
	cot  *ot.COT
}

// NewReceiver creates an OLE receiver over base.
func NewReceiver(base ot.OT, conn *p2p.Conn, r io.Reader) (*Receiver, error) {
	cot := ot.NewCOT(base, r)
	if err := cot.InitReceiver(conn); err != nil {
		return nil, fmt.Errorf("ole: %w", err)
	}
	return &Receiver{conn: conn, cot: cot}, nil
}

// Mul runs a batch of OLE instances for bs[i], against the sender's
// concurrent call to Sender.Mul. It returns y[i] = a[i]*b[i] + x[i].
func (r *Receiver) Mul(bs []*big.Int, p *big.Int) ([]*big.Int, error) {
	m := len(bs)
	if m == 0 {
		return nil, nil
	}
	flags := make([]bool, 2*m*FieldBits)
	for i, b := range bs {
		for k := 0; k < FieldBits; k++ {
			bit := b.Bit(k) == 1
			idx := 2 * (i*FieldBits + k)
			flags[idx] = bit
			flags[idx+1] = bit
		}
	}

	result := make([]ot.Label, len(flags))
	if err := r.cot.Receive(flags, result); err != nil {
		return nil, fmt.Errorf("ole: %w", err)
	}

	ys := make([]*big.Int, m)
	for i := range bs {
		sum := new(big.Int)
		for k := 0; k < FieldBits; k++ {
			idx := 2 * (i*FieldBits + k)
			v := labelsToField(result[idx], result[idx+1])
			sum = mpint.Mod(mpint.Add(sum, v), p)
		}
		ys[i] = sum
	}
	return ys, nil
}

func randomFieldElement(r io.Reader, p *big.Int) (*big.Int, error) {
	return rand.Int(r, p)
}

func randomNonzeroFieldElement(r io.Reader, p *big.Int) (*big.Int, error) {
	for {
		v, err := randomFieldElement(r, p)
		if err != nil {
			return nil, err
		}
		if v.Sign() != 0 {
			return v, nil
		}
	}
}

// fieldToLabels splits a field element's 32-byte big-endian
// representation into its low and high 16-byte halves, each carried
// as a Label so a single field element maps onto one chosen-OT slot
// pair.
func fieldToLabels(v *big.Int) (lo, hi ot.Label) {
	var buf [32]byte
	b := v.Bytes()
	copy(buf[32-len(b):], b)

	var loData, hiData ot.LabelData
	copy(hiData[:], buf[0:16])
	copy(loData[:], buf[16:32])
	lo.SetData(&loData)
	hi.SetData(&hiData)
	return lo, hi
}

func labelsToField(lo, hi ot.Label) *big.Int {
	var loData, hiData ot.LabelData
	lo.GetData(&loData)
	hi.GetData(&hiData)

	var buf [32]byte
	copy(buf[0:16], hiData[:])
	copy(buf[16:32], loData[:])
	return new(big.Int).SetBytes(buf[:])
}
