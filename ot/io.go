//
// io.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

import "math/big"

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)
}

// SendString sends a string value over io.
func SendString(io IO, val string) error {
	return io.SendData([]byte(val))
}

// ReceiveString receives a string value from io.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReceiveBigInt receives a big.Int value from io, encoded as its
// big-endian byte representation.
func ReceiveBigInt(io IO) (*big.Int, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	return big.NewInt(0).SetBytes(data), nil
}

// SendLabel sends a wire label over io.
func SendLabel(io IO, l Label) error {
	var buf LabelData
	return io.SendData(l.Bytes(&buf))
}

// ReceiveLabel receives a wire label from io.
func ReceiveLabel(io IO) (Label, error) {
	var label Label
	data, err := io.ReceiveData()
	if err != nil {
		return label, err
	}
	label.SetBytes(data)
	return label, nil
}
