package interpreter

import (
	"bytes"
	"crypto/sha1"
	"errors"

	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"golang.org/x/crypto/ripemd160"
)

type opFunc func(e *execution) error

var opcodes = map[byte]opFunc{
	txscript.OP_0:         pushNum(0),
	txscript.OP_1NEGATE:   pushNum(-1),
	txscript.OP_NOP:       nop,
	txscript.OP_VERIFY:    opVerify,
	txscript.OP_RETURN:    opReturn,
	txscript.OP_TOALTSTACK: func(e *execution) error {
		top, err := e.pop()
		if err != nil {
			return err
		}
		e.alt = append(e.alt, top)
		return nil
	},
	txscript.OP_FROMALTSTACK: func(e *execution) error {
		if len(e.alt) == 0 {
			return errStackUnderflow
		}
		e.push(e.alt[len(e.alt)-1])
		e.alt = e.alt[:len(e.alt)-1]
		return nil
	},
	txscript.OP_DROP: func(e *execution) error {
		_, err := e.pop()
		return err
	},
	txscript.OP_2DROP: func(e *execution) error {
		if len(e.stack) < 2 {
			return errStackUnderflow
		}
		e.stack = e.stack[:len(e.stack)-2]
		return nil
	},
	txscript.OP_DUP: func(e *execution) error {
		top, err := e.peek(0)
		if err != nil {
			return err
		}
		e.push(top)
		return nil
	},
	txscript.OP_2DUP: func(e *execution) error {
		if len(e.stack) < 2 {
			return errStackUnderflow
		}
		e.stack = append(e.stack, e.stack[len(e.stack)-2:]...)
		return nil
	},
	txscript.OP_NIP: func(e *execution) error {
		if len(e.stack) < 2 {
			return errStackUnderflow
		}
		e.stack = append(e.stack[:len(e.stack)-2], e.stack[len(e.stack)-1])
		return nil
	},
	txscript.OP_OVER: func(e *execution) error {
		second, err := e.peek(1)
		if err != nil {
			return err
		}
		e.push(second)
		return nil
	},
	txscript.OP_SWAP: func(e *execution) error {
		if len(e.stack) < 2 {
			return errStackUnderflow
		}
		n := len(e.stack)
		e.stack[n-1], e.stack[n-2] = e.stack[n-2], e.stack[n-1]
		return nil
	},
	txscript.OP_SIZE: func(e *execution) error {
		top, err := e.peek(0)
		if err != nil {
			return err
		}
		e.push(encodeNum(int64(len(top))))
		return nil
	},
	txscript.OP_EQUAL: opEqual,
	txscript.OP_EQUALVERIFY: func(e *execution) error {
		if err := opEqual(e); err != nil {
			return err
		}
		return opVerify(e)
	},

	txscript.OP_1ADD:      unary(func(a int64) int64 { return a + 1 }),
	txscript.OP_1SUB:      unary(func(a int64) int64 { return a - 1 }),
	txscript.OP_NEGATE:    unary(func(a int64) int64 { return -a }),
	txscript.OP_ABS:       unary(func(a int64) int64 { return max(a, -a) }),
	txscript.OP_NOT:       unary(func(a int64) int64 { return boolNum(a == 0) }),
	txscript.OP_0NOTEQUAL: unary(func(a int64) int64 { return boolNum(a != 0) }),

	txscript.OP_ADD:                binary(func(a, b int64) int64 { return a + b }),
	txscript.OP_SUB:                binary(func(a, b int64) int64 { return a - b }),
	txscript.OP_BOOLAND:            binary(func(a, b int64) int64 { return boolNum(a != 0 && b != 0) }),
	txscript.OP_BOOLOR:             binary(func(a, b int64) int64 { return boolNum(a != 0 || b != 0) }),
	txscript.OP_NUMEQUAL:           binary(func(a, b int64) int64 { return boolNum(a == b) }),
	txscript.OP_NUMNOTEQUAL:        binary(func(a, b int64) int64 { return boolNum(a != b) }),
	txscript.OP_LESSTHAN:           binary(func(a, b int64) int64 { return boolNum(a < b) }),
	txscript.OP_GREATERTHAN:        binary(func(a, b int64) int64 { return boolNum(a > b) }),
	txscript.OP_LESSTHANOREQUAL:    binary(func(a, b int64) int64 { return boolNum(a <= b) }),
	txscript.OP_GREATERTHANOREQUAL: binary(func(a, b int64) int64 { return boolNum(a >= b) }),
	txscript.OP_MIN:                binary(func(a, b int64) int64 { return min(a, b) }),
	txscript.OP_MAX:                binary(func(a, b int64) int64 { return max(a, b) }),
	txscript.OP_NUMEQUALVERIFY: func(e *execution) error {
		if err := binary(func(a, b int64) int64 { return boolNum(a == b) })(e); err != nil {
			return err
		}
		return opVerify(e)
	},
	txscript.OP_WITHIN: func(e *execution) error {
		upper, err := e.popNum()
		if err != nil {
			return err
		}
		lower, err := e.popNum()
		if err != nil {
			return err
		}
		x, err := e.popNum()
		if err != nil {
			return err
		}
		e.push(boolElement(lower <= x && x < upper))
		return nil
	},

	txscript.OP_RIPEMD160: hashOp(func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	}),
	txscript.OP_SHA1: hashOp(func(b []byte) []byte {
		sum := sha1.Sum(b)
		return sum[:]
	}),
	txscript.OP_SHA256:  hashOp(hashing.Sha256),
	txscript.OP_HASH160: hashOp(hashing.Hash160),
	txscript.OP_HASH256: hashOp(hashing.Hash256),

	txscript.OP_CODESEPARATOR: nop,
	txscript.OP_CHECKSIG:      opCheckSig,
	txscript.OP_CHECKSIGVERIFY: func(e *execution) error {
		if err := opCheckSig(e); err != nil {
			return err
		}
		return opVerify(e)
	},
	txscript.OP_CHECKMULTISIG: opCheckMultiSig,
	txscript.OP_CHECKMULTISIGVERIFY: func(e *execution) error {
		if err := opCheckMultiSig(e); err != nil {
			return err
		}
		return opVerify(e)
	},

	// Locktime checks need the spending transaction context and pass through unchanged.
	txscript.OP_NOP1:                nop,
	txscript.OP_CHECKLOCKTIMEVERIFY: nop,
	txscript.OP_CHECKSEQUENCEVERIFY: nop,
	txscript.OP_NOP4:                nop,
	txscript.OP_NOP5:                nop,
	txscript.OP_NOP6:                nop,
	txscript.OP_NOP7:                nop,
	txscript.OP_NOP8:                nop,
	txscript.OP_NOP9:                nop,
	txscript.OP_NOP10:               nop,
}

func init() {
	for n := int64(1); n <= 16; n++ {
		opcodes[byte(txscript.OP_1-1+n)] = pushNum(n)
	}
}

func nop(*execution) error { return nil }

func opReturn(*execution) error {
	return errors.New("OP_RETURN")
}

func pushNum(n int64) opFunc {
	return func(e *execution) error {
		e.push(encodeNum(n))
		return nil
	}
}

func opVerify(e *execution) error {
	top, err := e.pop()
	if err != nil {
		return err
	}
	if !asBool(top) {
		return errors.New("verify failed")
	}
	return nil
}

func opEqual(e *execution) error {
	a, err := e.pop()
	if err != nil {
		return err
	}
	b, err := e.pop()
	if err != nil {
		return err
	}
	e.push(boolElement(bytes.Equal(a, b)))
	return nil
}

func boolNum(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func unary(f func(a int64) int64) opFunc {
	return func(e *execution) error {
		a, err := e.popNum()
		if err != nil {
			return err
		}
		e.push(encodeNum(f(a)))
		return nil
	}
}

// binary pops b then a and pushes f(a, b).
func binary(f func(a, b int64) int64) opFunc {
	return func(e *execution) error {
		b, err := e.popNum()
		if err != nil {
			return err
		}
		a, err := e.popNum()
		if err != nil {
			return err
		}
		e.push(encodeNum(f(a, b)))
		return nil
	}
}

func hashOp(f func([]byte) []byte) opFunc {
	return func(e *execution) error {
		top, err := e.pop()
		if err != nil {
			return err
		}
		e.push(f(top))
		return nil
	}
}
