//
// encoding_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package encoding

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/oblivious-labs/halfgate/ot"
)

func testEncoder(t *testing.T) *Encoder {
	t.Helper()
	var seed [SeedSize]byte
	if _, err := rand.Read(seed[:]); err != nil {
		t.Fatal(err)
	}
	return NewEncoder(seed)
}

func TestEncodeTypeDeterministic(t *testing.T) {
	enc := testEncoder(t)

	a, err := enc.EncodeType(7, ScalarType(U32))
	if err != nil {
		t.Fatal(err)
	}
	b, err := enc.EncodeType(7, ScalarType(U32))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Zero {
		if !a.Zero[i].Equal(b.Zero[i]) {
			t.Fatalf("encode_type must be deterministic in (seed, id, ty): bit %d differs", i)
		}
	}
}

func TestEncodeTypeDistinctIDs(t *testing.T) {
	enc := testEncoder(t)

	a, _ := enc.EncodeType(1, ScalarType(U8))
	b, _ := enc.EncodeType(2, ScalarType(U8))

	same := true
	for i := range a.Zero {
		if !a.Zero[i].Equal(b.Zero[i]) {
			same = false
		}
	}
	if same {
		t.Fatal("distinct ids must not produce identical encodings")
	}
}

func TestEncodeTypeBitLength(t *testing.T) {
	enc := testEncoder(t)

	ty := ArrayType(U16, 4)
	full, err := enc.EncodeType(0, ty)
	if err != nil {
		t.Fatal(err)
	}
	if len(full.Zero) != ty.BitLength() {
		t.Fatalf("got %d zero-labels, want %d", len(full.Zero), ty.BitLength())
	}
}

func TestSelectAndDecode(t *testing.T) {
	enc := testEncoder(t)
	delta, err := ot.NewDelta(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	ty := ScalarType(U32)
	full, err := enc.EncodeType(1, ty)
	if err != nil {
		t.Fatal(err)
	}

	value := big.NewInt(0xdeadbeef)
	active := full.Select(delta, value)

	decoding := full.Decoding()
	decoded, err := decoding.Decode(active)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Cmp(value) != 0 {
		t.Fatalf("decode mismatch: got %x, want %x", decoded, value)
	}
}

func TestSelectLSBMatchesDelta(t *testing.T) {
	enc := testEncoder(t)
	delta, _ := ot.NewDelta(rand.Reader)

	full, err := enc.EncodeType(2, ScalarType(U8))
	if err != nil {
		t.Fatal(err)
	}

	for i := range full.Zero {
		zeroLSB := full.Zero[i].LSB()
		oneLSB := full.One(delta, i).LSB()
		if zeroLSB^oneLSB != 1 {
			t.Fatalf("bit %d: lsb(L0) xor lsb(L1) must equal 1", i)
		}
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	enc := testEncoder(t)
	delta, _ := ot.NewDelta(rand.Reader)

	full8, _ := enc.EncodeType(3, ScalarType(U8))
	full16, _ := enc.EncodeType(4, ScalarType(U16))

	active := full16.Select(delta, big.NewInt(1))
	decoding := full8.Decoding()

	if _, err := decoding.Decode(active); err == nil {
		t.Fatal("expected a type error decoding a mismatched type")
	}
}

func TestCommitVerify(t *testing.T) {
	enc := testEncoder(t)
	delta, _ := ot.NewDelta(rand.Reader)

	full, err := enc.EncodeType(5, ScalarType(U64))
	if err != nil {
		t.Fatal(err)
	}

	commitment := Commit(full, delta)

	value := big.NewInt(12345)
	active := full.Select(delta, value)

	if err := commitment.Verify(active); err != nil {
		t.Fatalf("Verify of a genuine active encoding must succeed: %v", err)
	}
}

func TestCommitVerifyRejectsForgedLabel(t *testing.T) {
	enc := testEncoder(t)
	delta, _ := ot.NewDelta(rand.Reader)

	full, err := enc.EncodeType(6, ScalarType(U8))
	if err != nil {
		t.Fatal(err)
	}
	commitment := Commit(full, delta)

	active := full.Select(delta, big.NewInt(0))
	forged, _ := ot.NewLabel(rand.Reader)
	active.Labels[0] = forged

	if err := commitment.Verify(active); err == nil {
		t.Fatal("Verify must reject a forged label")
	}
}
