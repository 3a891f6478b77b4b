//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ole

import (
	"fmt"
	"math/big"

	"github.com/oblivious-labs/halfgate/ot/mpint"
)

// M2A converts the sender's multiplicative share a into an additive
// share, against the receiver's concurrent Receiver.M2A(b, p). The
// sender's output negX (the negated OLE mask, -x mod p) and the
// receiver's output y satisfy negX + y = a*b mod p.
func (s *Sender) M2A(a *big.Int, p *big.Int) (*big.Int, error) {
	xs, err := s.Mul([]*big.Int{a}, p)
	if err != nil {
		return nil, fmt.Errorf("ole: m2a: %w", err)
	}
	negX := mpint.Mod(new(big.Int).Neg(xs[0]), p)
	return negX, nil
}

// M2A converts the receiver's multiplicative share b into an additive
// share, against the sender's concurrent Sender.M2A(a, p).
func (r *Receiver) M2A(b *big.Int, p *big.Int) (*big.Int, error) {
	ys, err := r.Mul([]*big.Int{b}, p)
	if err != nil {
		return nil, fmt.Errorf("ole: m2a: %w", err)
	}
	return ys[0], nil
}

// A2M converts the sender's additive share u into a multiplicative
// share a, against the receiver's concurrent Receiver.A2M(v, p). The
// outputs satisfy a*b = u+v mod p.
//
// The sender picks a random nonzero r, runs an OLE with input r (so
// the receiver's v combines into y = r*v + x), then reveals the mask
// m = u*r - x so the receiver can recover b = m+y = r*(u+v). The
// sender's own share is a = r^-1 mod p.
func (s *Sender) A2M(u *big.Int, p *big.Int) (*big.Int, error) {
	r, err := randomNonzeroFieldElement(s.rand, p)
	if err != nil {
		return nil, fmt.Errorf("ole: a2m: %w", err)
	}

	xs, err := s.Mul([]*big.Int{r}, p)
	if err != nil {
		return nil, fmt.Errorf("ole: a2m: %w", err)
	}
	x := xs[0]

	mask := mpint.Mod(mpint.Sub(new(big.Int).Mul(u, r), x), p)

	if err := s.conn.SendData(bytes32(mask)); err != nil {
		return nil, fmt.Errorf("ole: a2m: send mask: %w", err)
	}
	if err := s.conn.Flush(); err != nil {
		return nil, fmt.Errorf("ole: a2m: flush mask: %w", err)
	}

	a := new(big.Int).ModInverse(r, p)
	if a == nil {
		return nil, fmt.Errorf("ole: a2m: r has no inverse mod p")
	}
	return a, nil
}

// A2M converts the receiver's additive share v into a multiplicative
// share b, against the sender's concurrent Sender.A2M(u, p).
func (r *Receiver) A2M(v *big.Int, p *big.Int) (*big.Int, error) {
	ys, err := r.Mul([]*big.Int{v}, p)
	if err != nil {
		return nil, fmt.Errorf("ole: a2m: %w", err)
	}
	y := ys[0]

	data, err := r.conn.ReceiveData()
	if err != nil {
		return nil, fmt.Errorf("ole: a2m: receive mask: %w", err)
	}
	mask := new(big.Int).SetBytes(data)

	b := mpint.Mod(mpint.Add(mask, y), p)
	return b, nil
}

func bytes32(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}
