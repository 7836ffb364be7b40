package script

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/encoding"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// Script is raw script bytes without the length prefix. Keeping the raw form makes every parsed
// script re-encode byte for byte.
type Script []byte

// New serializes cmds, choosing the minimal push opcode for each data element.
func New(cmds ...Command) (Script, error) {
	var buf []byte
	for _, cmd := range cmds {
		var err error
		if buf, err = cmd.encode(buf); err != nil {
			return nil, err
		}
	}
	if buf == nil {
		buf = []byte{}
	}
	return Script(buf), nil
}

// Commands parses s.
func (s Script) Commands() ([]Command, error) {
	return decodeCommands(s)
}

// Serialize returns s with its varint length prefix, the form used as BIP143 script code.
func (s Script) Serialize() []byte {
	w := &encoding.Writer{}
	w.VarBytes(s)
	return w.Result()
}

// Equal compares raw bytes.
func (s Script) Equal(other Script) bool {
	return bytes.Equal(s, other)
}

// String disassembles s; unparsable scripts are rendered with an error marker.
func (s Script) String() string {
	asm, err := txscript.DisasmString(s)
	if err != nil {
		return asm + " [error]"
	}
	return asm
}

// P2PKH builds OP_DUP OP_HASH160 <h160> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKH(h160 []byte) Script {
	s := make(Script, 0, 25)
	s = append(s, txscript.OP_DUP, txscript.OP_HASH160, txscript.OP_DATA_20)
	s = append(s, h160...)
	return append(s, txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
}

// P2SH builds OP_HASH160 <h160> OP_EQUAL.
func P2SH(h160 []byte) Script {
	s := make(Script, 0, 23)
	s = append(s, txscript.OP_HASH160, txscript.OP_DATA_20)
	s = append(s, h160...)
	return append(s, txscript.OP_EQUAL)
}

// P2WPKH builds OP_0 <h160>.
func P2WPKH(h160 []byte) Script {
	return append(Script{txscript.OP_0, txscript.OP_DATA_20}, h160...)
}

// P2WSH builds OP_0 <sha256>.
func P2WSH(s256 []byte) Script {
	return append(Script{txscript.OP_0, txscript.OP_DATA_32}, s256...)
}

// IsP2PKH matches the pay-to-public-key-hash template.
func (s Script) IsP2PKH() bool {
	return len(s) == 25 &&
		s[0] == txscript.OP_DUP &&
		s[1] == txscript.OP_HASH160 &&
		s[2] == txscript.OP_DATA_20 &&
		s[23] == txscript.OP_EQUALVERIFY &&
		s[24] == txscript.OP_CHECKSIG
}

// IsP2SH matches the pay-to-script-hash template.
func (s Script) IsP2SH() bool {
	return len(s) == 23 &&
		s[0] == txscript.OP_HASH160 &&
		s[1] == txscript.OP_DATA_20 &&
		s[22] == txscript.OP_EQUAL
}

// IsP2WPKH matches a version 0 witness program of 20 bytes.
func (s Script) IsP2WPKH() bool {
	return len(s) == 22 && s[0] == txscript.OP_0 && s[1] == txscript.OP_DATA_20
}

// IsP2WSH matches a version 0 witness program of 32 bytes.
func (s Script) IsP2WSH() bool {
	return len(s) == 34 && s[0] == txscript.OP_0 && s[1] == txscript.OP_DATA_32
}

// Hash160 returns the 20-byte hash embedded in a P2PKH, P2SH or P2WPKH script.
func (s Script) Hash160() ([]byte, error) {
	switch {
	case s.IsP2PKH():
		return s[3:23], nil
	case s.IsP2SH(), s.IsP2WPKH():
		return s[2:22], nil
	default:
		return nil, fmt.Errorf("%w: script has no embedded hash160", model.ErrMalformedInput)
	}
}

// Address renders the address for a standard output script.
func (s Script) Address(network model.Network) (string, error) {
	switch {
	case s.IsP2PKH():
		return hashing.P2PKHAddress(s[3:23], network)
	case s.IsP2SH():
		return hashing.P2SHAddress(s[2:22], network)
	case s.IsP2WPKH():
		addr, err := btcutil.NewAddressWitnessPubKeyHash(s[2:], network.Params())
		if err != nil {
			return "", fmt.Errorf("witness pubkey hash address: %w", err)
		}
		return addr.EncodeAddress(), nil
	case s.IsP2WSH():
		addr, err := btcutil.NewAddressWitnessScriptHash(s[2:], network.Params())
		if err != nil {
			return "", fmt.Errorf("witness script hash address: %w", err)
		}
		return addr.EncodeAddress(), nil
	default:
		return "", fmt.Errorf("%w: non-standard script", model.ErrMalformedInput)
	}
}

// LastPush returns the data of the final command, which must be a push.
func (s Script) LastPush() ([]byte, error) {
	cmds, err := s.Commands()
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 || !cmds[len(cmds)-1].IsPush() {
		return nil, fmt.Errorf("%w: script does not end with a push", model.ErrMalformedInput)
	}
	return cmds[len(cmds)-1].Data, nil
}
