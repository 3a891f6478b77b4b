//
// value.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package encoding implements typed wire-label encodings for the
// garbled-circuit engine: zero-label ("Full") encodings, the
// evaluator's one-label-per-wire ("Active") encodings, decodings, and
// commitments that bind a Full encoding so it can be verified later.
package encoding

import "fmt"

// Primitive is a scalar plaintext element type.
type Primitive int

// Primitive types, matching the value model of the garbled circuit
// engine.
const (
	Bit Primitive = iota
	U8
	U16
	U32
	U64
	U128
)

func (p Primitive) String() string {
	switch p {
	case Bit:
		return "bit"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// BitLength returns the number of wires a value of this primitive
// type occupies.
func (p Primitive) BitLength() int {
	switch p {
	case Bit:
		return 1
	case U8:
		return 8
	case U16:
		return 16
	case U32:
		return 32
	case U64:
		return 64
	case U128:
		return 128
	default:
		panic(fmt.Sprintf("encoding: unknown primitive %d", int(p)))
	}
}

// ValueType describes a value's shape: either a single Primitive
// (Len == 1) or a fixed-length array of Primitive elements (Len > 1).
type ValueType struct {
	Elem Primitive
	Len  int
}

// ScalarType returns the ValueType of a single Primitive value.
func ScalarType(p Primitive) ValueType {
	return ValueType{Elem: p, Len: 1}
}

// ArrayType returns the ValueType of a fixed-length array of
// Primitive elements.
func ArrayType(p Primitive, n int) ValueType {
	return ValueType{Elem: p, Len: n}
}

// IsArray reports whether the type is a compound array (as opposed to
// a bare scalar).
func (t ValueType) IsArray() bool {
	return t.Len != 1
}

// BitLength returns the total number of wires (bits) the type
// occupies.
func (t ValueType) BitLength() int {
	return t.Elem.BitLength() * t.Len
}

// Equal reports whether two value types describe the same shape.
func (t ValueType) Equal(o ValueType) bool {
	return t.Elem == o.Elem && t.Len == o.Len
}

func (t ValueType) String() string {
	if t.Len == 1 {
		return t.Elem.String()
	}
	return fmt.Sprintf("[%s;%d]", t.Elem, t.Len)
}

// TypeError is returned when an operation observes a ValueType that
// disagrees with what it expected.
type TypeError struct {
	Expected ValueType
	Got      ValueType
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("encoding: unexpected type: got %s, expected %s",
		e.Got, e.Expected)
}

// DecodeError is returned by Decode when the active encoding and the
// decoding disagree in length or type.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("encoding: decode error: %s", e.Reason)
}
