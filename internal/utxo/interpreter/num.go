package interpreter

import (
	"fmt"
)

// maxNumSize bounds numeric stack elements taken by arithmetic opcodes.
const maxNumSize = 4

// encodeNum renders n as a minimal little-endian sign-magnitude element. Zero is empty.
func encodeNum(n int64) []byte {
	if n == 0 {
		return []byte{}
	}
	negative := n < 0
	abs := uint64(n)
	if negative {
		abs = uint64(-n)
	}
	var out []byte
	for abs > 0 {
		out = append(out, byte(abs&0xff))
		abs >>= 8
	}
	if out[len(out)-1]&0x80 != 0 {
		if negative {
			out = append(out, 0x80)
		} else {
			out = append(out, 0x00)
		}
	} else if negative {
		out[len(out)-1] |= 0x80
	}
	return out
}

// decodeNum is the inverse of encodeNum.
func decodeNum(element []byte) (int64, error) {
	if len(element) > maxNumSize {
		return 0, fmt.Errorf("numeric element of %d bytes", len(element))
	}
	if len(element) == 0 {
		return 0, nil
	}
	var result int64
	last := len(element) - 1
	for i := last; i >= 0; i-- {
		b := element[i]
		if i == last {
			b &= 0x7f
		}
		result = result<<8 | int64(b)
	}
	if element[last]&0x80 != 0 {
		return -result, nil
	}
	return result, nil
}

// asBool treats empty, zero and negative zero as false.
func asBool(element []byte) bool {
	for i, b := range element {
		if b != 0 {
			return !(i == len(element)-1 && b == 0x80)
		}
	}
	return false
}

func boolElement(v bool) []byte {
	if v {
		return encodeNum(1)
	}
	return encodeNum(0)
}
