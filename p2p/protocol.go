//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the framed, typed peer-to-peer transport the
// engine's sub-protocols exchange messages over: a byte/uint/string/
// data primitive layer (Conn), and the wire message types for KOS
// extension, DEAP equality/proof commitments, and garbled-circuit row
// batches.
package p2p

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/oblivious-labs/halfgate/ot"
)

// Conn is a buffered, length-prefixed framing layer over an
// io.ReadWriter.
type Conn struct {
	closer io.Closer
	io     *bufio.ReadWriter
	Stats  IOStats
}

// IOStats tracks bytes sent and received over a Conn.
type IOStats struct {
	Sent  uint64
	Recvd uint64
}

// Sub returns the element-wise difference stats - o.
func (stats IOStats) Sub(o IOStats) IOStats {
	return IOStats{
		Sent:  stats.Sent - o.Sent,
		Recvd: stats.Recvd - o.Recvd,
	}
}

// Sum returns the total bytes sent and received.
func (stats IOStats) Sum() uint64 {
	return stats.Sent + stats.Recvd
}

// NewConn wraps conn in a buffered Conn.
func NewConn(conn io.ReadWriter) *Conn {
	closer, _ := conn.(io.Closer)

	return &Conn{
		closer: closer,
		io: bufio.NewReadWriter(bufio.NewReader(conn),
			bufio.NewWriter(conn)),
	}
}

// Flush flushes any buffered output.
func (c *Conn) Flush() error {
	return c.io.Flush()
}

// Close flushes and closes the underlying connection.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// SendByte sends a single byte.
func (c *Conn) SendByte(val byte) error {
	if err := c.io.WriteByte(val); err != nil {
		return err
	}
	c.Stats.Sent++
	return nil
}

// ReceiveByte receives a single byte.
func (c *Conn) ReceiveByte() (byte, error) {
	b, err := c.io.ReadByte()
	if err != nil {
		return 0, err
	}
	c.Stats.Recvd++
	return b, nil
}

// SendUint16 sends a 16-bit value.
func (c *Conn) SendUint16(val int) error {
	if err := binary.Write(c.io, binary.BigEndian, uint16(val)); err != nil {
		return err
	}
	c.Stats.Sent += 2
	return nil
}

// ReceiveUint16 receives a 16-bit value.
func (c *Conn) ReceiveUint16() (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(c.io, buf[:]); err != nil {
		return 0, err
	}
	c.Stats.Recvd += 2
	return int(binary.BigEndian.Uint16(buf[:])), nil
}

// SendUint32 sends a 32-bit value.
func (c *Conn) SendUint32(val int) error {
	err := binary.Write(c.io, binary.BigEndian, uint32(val))
	if err != nil {
		return err
	}
	c.Stats.Sent += 4
	return nil
}

// ReceiveUint32 receives a 32-bit value.
func (c *Conn) ReceiveUint32() (int, error) {
	var buf [4]byte

	_, err := io.ReadFull(c.io, buf[:])
	if err != nil {
		return 0, err
	}
	c.Stats.Recvd += 4

	return int(binary.BigEndian.Uint32(buf[:])), nil
}

// SendData sends a length-prefixed byte string.
func (c *Conn) SendData(val []byte) error {
	err := c.SendUint32(len(val))
	if err != nil {
		return err
	}
	_, err = c.io.Write(val)
	if err != nil {
		return err
	}
	c.Stats.Sent += uint64(len(val))
	return nil
}

// ReceiveData receives a length-prefixed byte string.
func (c *Conn) ReceiveData() ([]byte, error) {
	len, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}

	result := make([]byte, len)
	_, err = io.ReadFull(c.io, result)
	if err != nil {
		return nil, err
	}
	c.Stats.Recvd += uint64(len)

	return result, nil
}

// SendString sends a length-prefixed UTF-8 string.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// ReceiveString receives a length-prefixed UTF-8 string.
func (c *Conn) ReceiveString() (string, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendLabel sends a single 128-bit label.
func (c *Conn) SendLabel(l ot.Label) error {
	var ld ot.LabelData
	l.GetData(&ld)
	return c.SendData(ld[:])
}

// ReceiveLabel receives a single 128-bit label.
func (c *Conn) ReceiveLabel() (ot.Label, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return ot.Label{}, err
	}
	var ld ot.LabelData
	copy(ld[:], data)
	var l ot.Label
	l.SetData(&ld)
	return l, nil
}

// SendLabels sends a slice of 128-bit labels as a single block.
func (c *Conn) SendLabels(labels []ot.Label) error {
	data := make([]byte, 16*len(labels))
	for i, l := range labels {
		var ld ot.LabelData
		l.GetData(&ld)
		copy(data[16*i:], ld[:])
	}
	return c.SendData(data)
}

// ReceiveLabels receives a slice of 128-bit labels.
func (c *Conn) ReceiveLabels() ([]ot.Label, error) {
	data, err := c.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data)%16 != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	labels := make([]ot.Label, len(data)/16)
	for i := range labels {
		var ld ot.LabelData
		copy(ld[:], data[16*i:16*i+16])
		labels[i].SetData(&ld)
	}
	return labels, nil
}

// Hash is a 32-byte Blake3 digest, used by commit/reveal wire
// messages.
type Hash [32]byte

func (c *Conn) sendHash(h Hash) error {
	return c.SendData(h[:])
}

func (c *Conn) receiveHash() (Hash, error) {
	var h Hash
	data, err := c.ReceiveData()
	if err != nil {
		return h, err
	}
	copy(h[:], data)
	return h, nil
}
