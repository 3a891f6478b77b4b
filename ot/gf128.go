//
// gf128.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// GF(2^128) arithmetic over the reduction polynomial
// f(x) = x^128 + x^7 + x^2 + x + 1, used by the KOS correlated-OT
// extension's batched consistency check (inner_product_reduced).

package ot

// clmul64 computes the 128-bit carry-less (GF(2)) product of two
// 64-bit words, split into its low and high 64-bit halves.
func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>uint(i))&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << uint(i)
				hi ^= a >> uint(64-i)
			}
		}
	}
	return
}

// shl128 shifts a 128-bit label left by n bits (0 <= n < 64),
// discarding any bits shifted out past bit 127.
func shl128(l Label, n uint) Label {
	if n == 0 {
		return l
	}
	return Label{
		D0: (l.D0 << n) | (l.D1 >> (64 - n)),
		D1: l.D1 << n,
	}
}

// mul128NoReduce computes the unreduced 256-bit carry-less product of
// two 128-bit labels, returned as the low and high 128-bit halves.
func mul128NoReduce(a, b Label) (lo, hi Label) {
	// a = a.D0:a.D1 (D0 high 64 bits, D1 low 64 bits), likewise for b.
	t0lo, t0hi := clmul64(a.D1, b.D1) // a0*b0
	t1lo, t1hi := clmul64(a.D0, b.D1) // a1*b0
	t2lo, t2hi := clmul64(a.D1, b.D0) // a0*b1
	t3lo, t3hi := clmul64(a.D0, b.D0) // a1*b1

	midLo := t1lo ^ t2lo
	midHi := t1hi ^ t2hi

	lo = Label{
		D0: t0hi ^ midLo,
		D1: t0lo,
	}
	hi = Label{
		D0: t3hi,
		D1: t3lo ^ midHi,
	}
	return
}

// reduce128 reduces a 256-bit carry-less product (hi:lo) modulo
// f(x) = x^128 + x^7 + x^2 + x + 1, following the standard
// shift-and-fold reduction (the same trick used by Gueron-style GHASH
// reductions, adapted to natural bit order rather than GCM's
// bit-reflected order).
func reduce128(lo, hi Label) Label {
	// x^128 = x^7 + x^2 + x + 1 (mod f). hi contributes hi * x^128,
	// which reduces to hi * (x^7+x^2+x+1); that product has degree
	// at most 134, so the part at or above bit 128 (at most 7 bits)
	// needs one further fold.
	clo := shl128(hi, 7)
	clo.Xor(shl128(hi, 2))
	clo.Xor(shl128(hi, 1))
	clo.Xor(hi)

	ovf7 := hi.D0 >> 57
	ovf2 := hi.D0 >> 62
	ovf1 := hi.D0 >> 63
	chi := (ovf7 ^ ovf2 ^ ovf1) & 0x7f

	chiR := Label{D1: (chi << 7) ^ (chi << 2) ^ (chi << 1) ^ chi}

	result := lo
	result.Xor(clo)
	result.Xor(chiR)
	return result
}

// Mul128 returns a*b in GF(2^128) (reduced modulo f(x) =
// x^128+x^7+x^2+x+1).
func Mul128(a, b Label) Label {
	lo, hi := mul128NoReduce(a, b)
	return reduce128(lo, hi)
}

// InnerProductReduced computes sum_i a[i]*b[i] in GF(2^128), reducing
// each term before accumulating. It is used by the KOS sender and
// receiver to derive the batched consistency-check value over a
// chosen random vector (spec's "inner_product_reduced").
func InnerProductReduced(a, b []Label) Label {
	if len(a) != len(b) {
		panic("ot: InnerProductReduced: mismatched vector lengths")
	}
	var acc Label
	for i := range a {
		acc.Xor(Mul128(a[i], b[i]))
	}
	return acc
}

// vectorInnPrdtSumNoRed computes the GF(2^128) inner product of
// vectors a and b without reducing each term before summing — the
// 256-bit partial sums are accumulated first and reduced once at the
// end via reduce128. Equivalent to InnerProductReduced but defers
// reduction, matching the batching style of a hardware PCLMUL
// pipeline.
func vectorInnPrdtSumNoRed(a, b []Label) (Label, Label) {
	var rlo, rhi Label

	n := len(a)
	for i := 0; i < n; i++ {
		lo, hi := mul128NoReduce(a[i], b[i])
		rlo.Xor(lo)
		rhi.Xor(hi)
	}
	return rlo, rhi
}
