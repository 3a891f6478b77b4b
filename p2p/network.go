//
// Copyright (c) 2020 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
	"time"
)

// Listen opens addr and accepts exactly one inbound connection,
// returning a Conn wrapping it. A two-party session has exactly one
// peer on each side, so there's no id-keyed peer registry here, just
// a single accept.
func Listen(addr string) (*Conn, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	nc, err := listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(nc), nil
}

// Dial connects to addr, retrying with backoff until timeout elapses,
// and returns a Conn wrapping the connection. A Follower started
// before its Leader's listener is up is a normal startup race in a
// two-process deployment, hence the retry.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	deadline := time.Now().Add(timeout)
	delay := 50 * time.Millisecond
	for {
		nc, err := net.Dial("tcp", addr)
		if err == nil {
			return NewConn(nc), nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(delay)
		if delay < time.Second {
			delay *= 2
		}
	}
}
