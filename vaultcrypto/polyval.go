package vaultcrypto

import "encoding/binary"

// polyvalMessage computes POLYVAL(H, blocks) per RFC 8452 §3, where
// blocks is aad zero-padded to a 16-byte boundary, followed by
// plaintext zero-padded to a 16-byte boundary, followed by a final
// 16-byte block holding the bit lengths of aad and plaintext as two
// little-endian uint64s.
func polyvalMessage(h, aad, plaintext []byte) []byte {
	acc := make([]byte, 16)

	for _, block := range padded16(aad) {
		xorInto(acc, block)
		acc = polyvalMul(acc, h)
	}

	for _, block := range padded16(plaintext) {
		xorInto(acc, block)
		acc = polyvalMul(acc, h)
	}

	var lenBlock [16]byte
	binary.LittleEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.LittleEndian.PutUint64(lenBlock[8:16], uint64(len(plaintext))*8)

	xorInto(acc, lenBlock[:])
	acc = polyvalMul(acc, h)

	return acc
}

// padded16 splits data into 16-byte blocks, zero-padding the final one.
// It returns no blocks for empty input.
func padded16(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	n := (len(data) + 15) / 16
	blocks := make([][]byte, n)

	for i := 0; i < n; i++ {
		block := make([]byte, 16)
		copy(block, data[i*16:min(len(data), (i+1)*16)])
		blocks[i] = block
	}

	return blocks
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// polyvalMul computes POLYVAL's dot(x, h) = x*h*t^-128 on two 16-byte
// field elements in GF(2^128) under POLYVAL's convention (bit i of byte
// i/8 is the coefficient of t^i, i.e. natural little-endian integer bit
// order) reduced modulo t^128 + t^127 + t^126 + t^121 + 1.
func polyvalMul(x, h []byte) []byte {
	xlo := binary.LittleEndian.Uint64(x[0:8])
	xhi := binary.LittleEndian.Uint64(x[8:16])
	vlo := binary.LittleEndian.Uint64(h[0:8])
	vhi := binary.LittleEndian.Uint64(h[8:16])

	var rlo, rhi uint64

	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = (xlo >> uint(i)) & 1
		} else {
			bit = (xhi >> uint(i-64)) & 1
		}

		if bit == 1 {
			rlo ^= vlo
			rhi ^= vhi
		}

		carry := vhi >> 63
		vhi = (vhi << 1) | (vlo >> 63)
		vlo <<= 1

		if carry == 1 {
			vlo ^= 1
			vhi ^= (1 << 57) | (1 << 62) | (1 << 63)
		}
	}

	// dot(a, b) is a*b*t^-128: divide by t 128 times, folding in the
	// field polynomial whenever the low bit is set.
	for i := 0; i < 128; i++ {
		lsb := rlo & 1
		rlo = (rlo >> 1) | (rhi << 63)
		rhi >>= 1

		if lsb == 1 {
			rhi ^= (1 << 63) | (1 << 62) | (1 << 61) | (1 << 56)
		}
	}

	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:8], rlo)
	binary.LittleEndian.PutUint64(out[8:16], rhi)

	return out
}
