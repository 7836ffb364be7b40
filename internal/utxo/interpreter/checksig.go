package interpreter

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// maxMultiSigKeys bounds the key count of OP_CHECKMULTISIG.
const maxMultiSigKeys = 20

// checkSignature verifies a DER signature carrying a trailing sighash-type byte against sec.
// Malformed signatures or keys verify as false.
func (e *execution) checkSignature(sigWithType, sec []byte) bool {
	if len(sigWithType) == 0 {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigWithType[:len(sigWithType)-1])
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(sec)
	if err != nil {
		return false
	}
	return sig.Verify(e.z, pub)
}

func opCheckSig(e *execution) error {
	sec, err := e.pop()
	if err != nil {
		return err
	}
	sig, err := e.pop()
	if err != nil {
		return err
	}
	e.push(boolElement(e.checkSignature(sig, sec)))
	return nil
}

// opCheckMultiSig consumes n keys, m signatures and the extra dummy element. Signatures must
// appear in the same order as their keys.
func opCheckMultiSig(e *execution) error {
	n, err := e.popNum()
	if err != nil {
		return err
	}
	if n < 0 || n > maxMultiSigKeys {
		return fmt.Errorf("key count %d", n)
	}
	keys := make([][]byte, n)
	for i := n - 1; i >= 0; i-- {
		if keys[i], err = e.pop(); err != nil {
			return err
		}
	}

	m, err := e.popNum()
	if err != nil {
		return err
	}
	if m < 0 || m > n {
		return fmt.Errorf("signature count %d of %d keys", m, n)
	}
	sigs := make([][]byte, m)
	for i := m - 1; i >= 0; i-- {
		if sigs[i], err = e.pop(); err != nil {
			return err
		}
	}

	if _, err := e.pop(); err != nil {
		return fmt.Errorf("missing dummy element: %w", err)
	}

	valid := true
	k := 0
	for _, sig := range sigs {
		matched := false
		for k < len(keys) {
			key := keys[k]
			k++
			if e.checkSignature(sig, key) {
				matched = true
				break
			}
		}
		if !matched {
			valid = false
			break
		}
	}
	e.push(boolElement(valid))
	return nil
}
