//
// co_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/rand"
	"sync"
	"testing"
)

func TestCOTransfer(t *testing.T) {
	l0, _ := NewLabel(rand.Reader)
	l1, _ := NewLabel(rand.Reader)

	sender := NewCOSender()
	receiver := NewCOReceiver(sender.Curve())

	var l0Buf, l1Buf LabelData
	l0Data := l0.Bytes(&l0Buf)
	l1Data := l1.Bytes(&l1Buf)

	sXfer, err := sender.NewTransfer(l0Data, l1Data)
	if err != nil {
		t.Fatalf("COSender.NewTransfer: %v", err)
	}
	rXfer, err := receiver.NewTransfer(1)
	if err != nil {
		t.Fatalf("COReceiver.NewTransfer: %v", err)
	}

	rXfer.ReceiveA(sXfer.A())
	sXfer.ReceiveB(rXfer.B())
	result := rXfer.ReceiveE(sXfer.E())

	if !bytes.Equal(result, l1Data) {
		t.Fatal("CO transfer returned the wrong label for bit=1")
	}
}

func TestCOTransferBitZero(t *testing.T) {
	l0, _ := NewLabel(rand.Reader)
	l1, _ := NewLabel(rand.Reader)

	sender := NewCOSender()
	receiver := NewCOReceiver(sender.Curve())

	var l0Buf, l1Buf LabelData
	l0Data := l0.Bytes(&l0Buf)
	l1Data := l1.Bytes(&l1Buf)

	sXfer, err := sender.NewTransfer(l0Data, l1Data)
	if err != nil {
		t.Fatalf("COSender.NewTransfer: %v", err)
	}
	rXfer, err := receiver.NewTransfer(0)
	if err != nil {
		t.Fatalf("COReceiver.NewTransfer: %v", err)
	}

	rXfer.ReceiveA(sXfer.A())
	sXfer.ReceiveB(rXfer.B())
	result := rXfer.ReceiveE(sXfer.E())

	if !bytes.Equal(result, l0Data) {
		t.Fatal("CO transfer returned the wrong label for bit=0")
	}
	if bytes.Equal(result, l1Data) {
		t.Fatal("CO transfer leaked the unselected label")
	}
}

func TestCOFullOT(t *testing.T) {
	const n = 8

	wires := make([]Wire, n)
	flags := make([]bool, n)
	for i := 0; i < n; i++ {
		l0, _ := NewLabel(rand.Reader)
		l1, _ := NewLabel(rand.Reader)
		wires[i] = Wire{L0: l0, L1: l1}
		flags[i] = i%2 == 0
	}

	sIO, rIO := NewPipe()

	sender := NewCO()
	receiver := NewCO()

	var wg sync.WaitGroup
	var sendErr, initErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sender.InitSender(sIO); err != nil {
			initErr = err
			return
		}
		sendErr = sender.Send(wires)
	}()

	if err := receiver.InitReceiver(rIO); err != nil {
		t.Fatalf("InitReceiver: %v", err)
	}
	result := make([]Label, n)
	recvErr := receiver.Receive(flags, result)
	wg.Wait()

	if initErr != nil {
		t.Fatalf("InitSender: %v", initErr)
	}
	if sendErr != nil {
		t.Fatalf("Send: %v", sendErr)
	}
	if recvErr != nil {
		t.Fatalf("Receive: %v", recvErr)
	}

	for i := 0; i < n; i++ {
		want := wires[i].L0
		if flags[i] {
			want = wires[i].L1
		}
		if !result[i].Equal(want) {
			t.Fatalf("wire %d: got %s, want %s", i, result[i], want)
		}
	}
}
