//
// otp.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import "github.com/oblivious-labs/halfgate/encoding"

// OTPCircuit builds the synthetic one-time-pad circuit used by the
// additive share split in decode_shared: two inputs of type ty named
// "value" and "mask", and one output of type ty computed bitwise as
// value XOR mask. It has no AND gates, so garbling and evaluating it
// costs a single free-XOR pass per bit.
func OTPCircuit(ty encoding.ValueType) (*Circuit, error) {
	n := ty.BitLength()

	valueFeeds := make([]Wire, n)
	maskFeeds := make([]Wire, n)
	outFeeds := make([]Wire, n)
	gates := make([]Gate, n)

	for i := 0; i < n; i++ {
		valueFeeds[i] = Wire(i)
		maskFeeds[i] = Wire(n + i)
		outFeeds[i] = Wire(2*n + i)
		gates[i] = Gate{
			Op:     XOR,
			Input0: valueFeeds[i],
			Input1: maskFeeds[i],
			Output: outFeeds[i],
		}
	}

	inputs := []IORef{
		{Name: "value", Type: ty, Feeds: valueFeeds},
		{Name: "mask", Type: ty, Feeds: maskFeeds},
	}
	outputs := []IORef{
		{Name: "masked", Type: ty, Feeds: outFeeds},
	}

	return NewCircuit(3*n, gates, inputs, outputs)
}
