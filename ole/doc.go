//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ole implements oblivious linear evaluation over the P-256
// field: sender holds a, receiver holds b, and they obtain correlated
// values (x, y) satisfying
//
//	y = a*b + x mod p
//
// with the sender learning only x and the receiver learning only y.
// Each OLE instance is Gilboa's OT-based multiplication over a
// chosen-message OT (ot.COT): for every one of the FieldBits bits of
// the receiver's b, the sender offers a random field element r_k and
// r_k + a*2^k mod p, each carried as two 128-bit OT wires, and the
// receiver selects by its bit. The sender's mask x is the sum of its
// r_k; no further round trip follows the OT.
//
// A2M and M2A layer exact share-conversion formulas on top of a single
// OLE instance; see Sender.M2A, Receiver.M2A, Sender.A2M and
// Receiver.A2M.
package ole
