// Package pow converts between compact "bits" and full proof-of-work targets.
//
// Bits are held in wire order: a 3-byte little-endian coefficient followed by a 1-byte exponent,
// so that target = coefficient * 256^(exponent-3).
package pow

import (
	"encoding/binary"
	"math/big"
)

// TwoWeeks is the retarget period in seconds.
const TwoWeeks int64 = 60 * 60 * 24 * 14

var (
	// LowestBits is the compact form of MaxTarget.
	LowestBits = [4]byte{0xff, 0xff, 0x00, 0x1d}
	// MaxTarget is 0xffff * 256^(0x1d-3), the easiest allowed target.
	MaxTarget = BitsToTarget(LowestBits)

	maxTargetFloat = new(big.Float).SetInt(MaxTarget)
)

// BitsFromUint32 converts the numeric compact form (e.g. 0x1d00ffff) to wire-order bits.
func BitsFromUint32(v uint32) [4]byte {
	var bits [4]byte
	binary.LittleEndian.PutUint32(bits[:], v)
	return bits
}

// BitsUint32 is the inverse of BitsFromUint32.
func BitsUint32(bits [4]byte) uint32 {
	return binary.LittleEndian.Uint32(bits[:])
}

// BitsToTarget expands compact bits into a target.
func BitsToTarget(bits [4]byte) *big.Int {
	exponent := int(bits[3])
	coefficient := new(big.Int).SetUint64(uint64(bits[0]) | uint64(bits[1])<<8 | uint64(bits[2])<<16)
	if exponent < 3 {
		return coefficient.Rsh(coefficient, uint(8*(3-exponent)))
	}
	return coefficient.Lsh(coefficient, uint(8*(exponent-3)))
}

// TargetToBits compresses a target, prepending a zero byte to the coefficient when its
// high bit would otherwise be set.
func TargetToBits(target *big.Int) [4]byte {
	if target.Sign() <= 0 {
		return [4]byte{}
	}
	raw := target.Bytes()

	var coefficient [3]byte
	var exponent int
	if raw[0] > 0x7f {
		exponent = len(raw) + 1
		copy(coefficient[1:], raw)
	} else {
		exponent = len(raw)
		copy(coefficient[:], raw)
	}
	// copy truncates to the coefficient width; shorter targets leave trailing zeros,
	// which BitsToTarget shifts back out for exponents below 3.
	return [4]byte{coefficient[2], coefficient[1], coefficient[0], byte(exponent)}
}

// Difficulty is MaxTarget divided by target.
func Difficulty(target *big.Int) *big.Float {
	t := new(big.Float).SetInt(target)
	return new(big.Float).Quo(maxTargetFloat, t)
}

// CalculateNewBits retargets previous by actualTimespan seconds, clamping the timespan to a
// factor of four in either direction and the result to MaxTarget.
func CalculateNewBits(previous [4]byte, actualTimespan int64) [4]byte {
	if actualTimespan > TwoWeeks*4 {
		actualTimespan = TwoWeeks * 4
	}
	if actualTimespan < TwoWeeks/4 {
		actualTimespan = TwoWeeks / 4
	}
	target := BitsToTarget(previous)
	target.Mul(target, big.NewInt(actualTimespan))
	target.Quo(target, big.NewInt(TwoWeeks))
	if target.Cmp(MaxTarget) > 0 {
		target.Set(MaxTarget)
	}
	return TargetToBits(target)
}
