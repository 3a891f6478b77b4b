//
// protocol_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"crypto/rand"
	"testing"

	"github.com/oblivious-labs/halfgate/ot"
)

var primitiveTests = []interface{}{
	byte(42),
	uint16(43),
	uint32(44),
	"Hello, world!",
}

func writer(t *testing.T, c *Conn) {
	t.Helper()
	for _, test := range primitiveTests {
		var err error
		switch d := test.(type) {
		case byte:
			err = c.SendByte(d)
		case uint16:
			err = c.SendUint16(int(d))
		case uint32:
			err = c.SendUint32(int(d))
		case string:
			err = c.SendString(d)
		}
		if err != nil {
			t.Errorf("send: %v", err)
		}
	}
	if err := c.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
}

func TestProtocol(t *testing.T) {
	p0, p1 := Pipe()

	go writer(t, p0)

	c := p1

	for _, test := range primitiveTests {
		switch d := test.(type) {
		case byte:
			v, err := c.ReceiveByte()
			if err != nil {
				t.Fatalf("ReceiveByte: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveByte: got %v, expected %v", v, d)
			}

		case uint16:
			v, err := c.ReceiveUint16()
			if err != nil {
				t.Fatalf("ReceiveUint16: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint16: got %v, expected %v", v, d)
			}

		case uint32:
			v, err := c.ReceiveUint32()
			if err != nil {
				t.Fatalf("ReceiveUint32: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint32: got %v, expected %v", v, d)
			}

		case string:
			v, err := c.ReceiveString()
			if err != nil {
				t.Fatalf("ReceiveString: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveString: got %v, expected %v", v, d)
			}
		}
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func randomLabels(t *testing.T, n int) []ot.Label {
	t.Helper()
	labels := make([]ot.Label, n)
	for i := range labels {
		l, err := ot.NewLabel(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		labels[i] = l
	}
	return labels
}

func TestKosMessages(t *testing.T) {
	p0, p1 := Pipe()

	us := make([]byte, 128*16)
	rand.Read(us)
	go func() {
		if err := (StartExtend{Count: 128}).Send(p0); err != nil {
			t.Error(err)
		}
		if err := (Extend{Us: us}).Send(p0); err != nil {
			t.Error(err)
		}
		if err := p0.Flush(); err != nil {
			t.Error(err)
		}
	}()

	se, err := ReceiveStartExtend(p1)
	if err != nil {
		t.Fatal(err)
	}
	if se.Count != 128 {
		t.Fatalf("got count %d, want 128", se.Count)
	}

	ext, err := ReceiveExtend(p1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ext.Us) != len(us) {
		t.Fatalf("got %d bytes, want %d", len(ext.Us), len(us))
	}
	for i := range us {
		if ext.Us[i] != us[i] {
			t.Fatalf("Extend byte %d mismatch", i)
		}
	}
}

func TestGateBatchMessage(t *testing.T) {
	p0, p1 := Pipe()

	rows := randomLabels(t, 256)
	go func() {
		if err := (EncryptedGateBatch{Rows: rows}).Send(p0); err != nil {
			t.Error(err)
		}
		if err := p0.Flush(); err != nil {
			t.Error(err)
		}
	}()

	batch, err := ReceiveEncryptedGateBatch(p1)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Rows) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(batch.Rows), len(rows))
	}
	for i := range rows {
		if !batch.Rows[i].Equal(rows[i]) {
			t.Fatalf("row %d mismatch", i)
		}
	}
}

func TestEncodingCommitmentMessage(t *testing.T) {
	p0, p1 := Pipe()

	pairs := make([]EncodingCommitmentPair, 4)
	for i := range pairs {
		rand.Read(pairs[i].H0[:])
		rand.Read(pairs[i].H1[:])
	}

	go func() {
		if err := (EncodingCommitmentMsg{Pairs: pairs}).Send(p0); err != nil {
			t.Error(err)
		}
		if err := p0.Flush(); err != nil {
			t.Error(err)
		}
	}()

	msg, err := ReceiveEncodingCommitmentMsg(p1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Pairs) != len(pairs) {
		t.Fatalf("got %d pairs, want %d", len(msg.Pairs), len(pairs))
	}
	for i := range pairs {
		if msg.Pairs[i] != pairs[i] {
			t.Fatalf("pair %d mismatch", i)
		}
	}
}
