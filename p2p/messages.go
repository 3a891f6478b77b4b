//
// messages.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"io"

	"github.com/oblivious-labs/halfgate/ot"
)

// StartExtend signals the start of a KOS extension to length Count.
type StartExtend struct {
	Count uint32
}

// Send writes a StartExtend message.
func (m StartExtend) Send(c *Conn) error {
	return c.SendUint32(int(m.Count))
}

// ReceiveStartExtend reads a StartExtend message.
func ReceiveStartExtend(c *Conn) (StartExtend, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return StartExtend{}, err
	}
	return StartExtend{Count: uint32(n)}, nil
}

// Extend carries the receiver's KOS extension matrix chunk: CSP rows
// of ceil(count/64)*8 bytes each, concatenated.
type Extend struct {
	Us []byte
}

// Send writes an Extend message.
func (m Extend) Send(c *Conn) error {
	return c.SendData(m.Us)
}

// ReceiveExtend reads an Extend message.
func ReceiveExtend(c *Conn) (Extend, error) {
	us, err := c.ReceiveData()
	if err != nil {
		return Extend{}, err
	}
	return Extend{Us: us}, nil
}

// CointossCommit commits to a coin-toss contribution.
type CointossCommit struct {
	H Hash
}

// Send writes a CointossCommit message.
func (m CointossCommit) Send(c *Conn) error {
	return c.sendHash(m.H)
}

// ReceiveCointossCommit reads a CointossCommit message.
func ReceiveCointossCommit(c *Conn) (CointossCommit, error) {
	h, err := c.receiveHash()
	if err != nil {
		return CointossCommit{}, err
	}
	return CointossCommit{H: h}, nil
}

// CointossReveal reveals the seeds committed to by a CointossCommit.
type CointossReveal struct {
	Seeds []ot.Label
}

// Send writes a CointossReveal message.
func (m CointossReveal) Send(c *Conn) error {
	return c.SendLabels(m.Seeds)
}

// ReceiveCointossReveal reads a CointossReveal message.
func ReceiveCointossReveal(c *Conn) (CointossReveal, error) {
	seeds, err := c.ReceiveLabels()
	if err != nil {
		return CointossReveal{}, err
	}
	return CointossReveal{Seeds: seeds}, nil
}

// KosCheck carries the batched KOS consistency-check values.
type KosCheck struct {
	X ot.Label
	T ot.Label
}

// Send writes a KosCheck message.
func (m KosCheck) Send(c *Conn) error {
	if err := c.SendLabel(m.X); err != nil {
		return err
	}
	return c.SendLabel(m.T)
}

// ReceiveKosCheck reads a KosCheck message.
func ReceiveKosCheck(c *Conn) (KosCheck, error) {
	x, err := c.ReceiveLabel()
	if err != nil {
		return KosCheck{}, err
	}
	t, err := c.ReceiveLabel()
	if err != nil {
		return KosCheck{}, err
	}
	return KosCheck{X: x, T: t}, nil
}

// EncryptedGateBatch carries the garbled-gate rows of one batch of
// gates, two rows per AND gate, so its row count varies with the
// batch's gates. Batches are not padded; the consumer rejects a batch
// whose row count differs from what its own copy of the circuit
// requires.
type EncryptedGateBatch struct {
	Rows []ot.Label
}

// Send writes an EncryptedGateBatch message.
func (m EncryptedGateBatch) Send(c *Conn) error {
	return c.SendLabels(m.Rows)
}

// ReceiveEncryptedGateBatch reads an EncryptedGateBatch message.
func ReceiveEncryptedGateBatch(c *Conn) (EncryptedGateBatch, error) {
	rows, err := c.ReceiveLabels()
	if err != nil {
		return EncryptedGateBatch{}, err
	}
	return EncryptedGateBatch{Rows: rows}, nil
}

// EncodedActiveInput is the direct-send path for public/private inputs
// of the generator: one Active encoding's labels per input value.
type EncodedActiveInput struct {
	Encodings [][]ot.Label
}

// Send writes an EncodedActiveInput message.
func (m EncodedActiveInput) Send(c *Conn) error {
	if err := c.SendUint32(len(m.Encodings)); err != nil {
		return err
	}
	for _, enc := range m.Encodings {
		if err := c.SendLabels(enc); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveEncodedActiveInput reads an EncodedActiveInput message.
func ReceiveEncodedActiveInput(c *Conn) (EncodedActiveInput, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return EncodedActiveInput{}, err
	}
	encodings := make([][]ot.Label, n)
	for i := range encodings {
		enc, err := c.ReceiveLabels()
		if err != nil {
			return EncodedActiveInput{}, err
		}
		encodings[i] = enc
	}
	return EncodedActiveInput{Encodings: encodings}, nil
}

// SenderPayload carries KOS-backed chosen-message OT's two encrypted
// messages per transfer.
type SenderPayload struct {
	E0, E1 []byte
}

// Send writes a SenderPayload message.
func (m SenderPayload) Send(c *Conn) error {
	if err := c.SendData(m.E0); err != nil {
		return err
	}
	return c.SendData(m.E1)
}

// ReceiveSenderPayload reads a SenderPayload message.
func ReceiveSenderPayload(c *Conn) (SenderPayload, error) {
	e0, err := c.ReceiveData()
	if err != nil {
		return SenderPayload{}, err
	}
	e1, err := c.ReceiveData()
	if err != nil {
		return SenderPayload{}, err
	}
	return SenderPayload{E0: e0, E1: e1}, nil
}

// Derandomize carries the receiver's derandomization bit for
// KOS-backed chosen-message OT.
type Derandomize struct {
	Bit bool
}

// Send writes a Derandomize message.
func (m Derandomize) Send(c *Conn) error {
	if m.Bit {
		return c.SendByte(1)
	}
	return c.SendByte(0)
}

// ReceiveDerandomize reads a Derandomize message.
func ReceiveDerandomize(c *Conn) (Derandomize, error) {
	b, err := c.ReceiveByte()
	if err != nil {
		return Derandomize{}, err
	}
	return Derandomize{Bit: b != 0}, nil
}

// EqualityCommit commits to a DEAP equality check.
type EqualityCommit struct {
	H Hash
}

// Send writes an EqualityCommit message.
func (m EqualityCommit) Send(c *Conn) error {
	return c.sendHash(m.H)
}

// ReceiveEqualityCommit reads an EqualityCommit message.
func ReceiveEqualityCommit(c *Conn) (EqualityCommit, error) {
	h, err := c.receiveHash()
	if err != nil {
		return EqualityCommit{}, err
	}
	return EqualityCommit{H: h}, nil
}

// EqualityReveal decommits a previously sent EqualityCommit.
type EqualityReveal struct {
	Eq []byte
}

// Send writes an EqualityReveal message.
func (m EqualityReveal) Send(c *Conn) error {
	return c.SendData(m.Eq)
}

// ReceiveEqualityReveal reads an EqualityReveal message.
func ReceiveEqualityReveal(c *Conn) (EqualityReveal, error) {
	eq, err := c.ReceiveData()
	if err != nil {
		return EqualityReveal{}, err
	}
	return EqualityReveal{Eq: eq}, nil
}

// ProofCommit commits to the digest of the label sequence a prover
// claims to hold for a set of values.
type ProofCommit struct {
	H Hash
}

// Send writes a ProofCommit message.
func (m ProofCommit) Send(c *Conn) error {
	return c.sendHash(m.H)
}

// ReceiveProofCommit reads a ProofCommit message.
func ReceiveProofCommit(c *Conn) (ProofCommit, error) {
	h, err := c.receiveHash()
	if err != nil {
		return ProofCommit{}, err
	}
	return ProofCommit{H: h}, nil
}

// ProofReveal decommits a previously sent ProofCommit.
type ProofReveal struct {
	Digest Hash
}

// Send writes a ProofReveal message.
func (m ProofReveal) Send(c *Conn) error {
	return c.sendHash(m.Digest)
}

// ReceiveProofReveal reads a ProofReveal message.
func ReceiveProofReveal(c *Conn) (ProofReveal, error) {
	h, err := c.receiveHash()
	if err != nil {
		return ProofReveal{}, err
	}
	return ProofReveal{Digest: h}, nil
}

// FinalizeSeed is sent Follower -> Leader during finalization,
// revealing the Follower's encoder seed.
type FinalizeSeed struct {
	Seed [32]byte
}

// Send writes a FinalizeSeed message.
func (m FinalizeSeed) Send(c *Conn) error {
	return c.SendData(m.Seed[:])
}

// ReceiveFinalizeSeed reads a FinalizeSeed message.
func ReceiveFinalizeSeed(c *Conn) (FinalizeSeed, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return FinalizeSeed{}, err
	}
	var m FinalizeSeed
	copy(m.Seed[:], data)
	return m, nil
}

// EncodingCommitmentPair is a single bit's (hash, hash) commitment
// pair, sorted by the committed label's own permute bit.
type EncodingCommitmentPair struct {
	H0, H1 Hash
}

// EncodingCommitmentMsg carries the per-bit commitment pairs for a
// Full encoding.
type EncodingCommitmentMsg struct {
	Pairs []EncodingCommitmentPair
}

// Send writes an EncodingCommitmentMsg message.
func (m EncodingCommitmentMsg) Send(c *Conn) error {
	if err := c.SendUint32(len(m.Pairs)); err != nil {
		return err
	}
	data := make([]byte, 64*len(m.Pairs))
	for i, p := range m.Pairs {
		copy(data[64*i:], p.H0[:])
		copy(data[64*i+32:], p.H1[:])
	}
	return c.SendData(data)
}

// ReceiveEncodingCommitmentMsg reads an EncodingCommitmentMsg message.
func ReceiveEncodingCommitmentMsg(c *Conn) (EncodingCommitmentMsg, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return EncodingCommitmentMsg{}, err
	}
	data, err := c.ReceiveData()
	if err != nil {
		return EncodingCommitmentMsg{}, err
	}
	if len(data) != 64*n {
		return EncodingCommitmentMsg{}, io.ErrUnexpectedEOF
	}
	pairs := make([]EncodingCommitmentPair, n)
	for i := range pairs {
		copy(pairs[i].H0[:], data[64*i:64*i+32])
		copy(pairs[i].H1[:], data[64*i+32:64*i+64])
	}
	return EncodingCommitmentMsg{Pairs: pairs}, nil
}
