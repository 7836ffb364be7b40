package transaction

import (
	"fmt"
	"math/big"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/encoding"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/script"
)

// SigHashAll commits to every input and output.
const SigHashAll uint32 = 1

// SigHash computes the legacy signature hash for input i. scriptCode replaces that input's
// unlocking script (the redeem script for P2SH, otherwise the spent output's locking script);
// every other input is serialized with an empty unlocking script.
func (tx *Tx) SigHash(i int, scriptCode script.Script) (*big.Int, error) {
	if err := tx.checkIndex(i); err != nil {
		return nil, err
	}
	w := &encoding.Writer{}
	w.Uint32(tx.Version)
	w.VarInt(uint64(len(tx.Inputs)))
	for j, in := range tx.Inputs {
		if j == i {
			in.write(w, scriptCode)
			continue
		}
		in.write(w, nil)
	}
	w.VarInt(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		out.write(w)
	}
	w.Uint32(tx.LockTime)
	w.Uint32(SigHashAll)
	return new(big.Int).SetBytes(hashing.Hash256(w.Result())), nil
}

// SigHashBIP143 computes the witness signature hash for input i spending amount.
// scriptCode is given without its length prefix; see WitnessScriptCode.
func (tx *Tx) SigHashBIP143(i int, scriptCode script.Script, amount uint64) (*big.Int, error) {
	if err := tx.checkIndex(i); err != nil {
		return nil, err
	}
	in := tx.Inputs[i]

	w := &encoding.Writer{}
	w.Uint32(tx.Version)
	w.Bytes(tx.HashPrevouts())
	w.Bytes(tx.HashSequence())
	w.Hash(in.PrevTx)
	w.Uint32(in.PrevIndex)
	w.Bytes(scriptCode.Serialize())
	w.Uint64(amount)
	w.Uint32(in.Sequence)
	w.Bytes(tx.HashOutputs())
	w.Uint32(tx.LockTime)
	w.Uint32(SigHashAll)
	return new(big.Int).SetBytes(hashing.Hash256(w.Result())), nil
}

// WitnessScriptCode selects the BIP143 script code: the witness script when present, otherwise
// a P2PKH script over the hash embedded in the redeem script or, failing that, in the spent
// output's locking script.
func WitnessScriptCode(witnessScript, redeemScript, prevScriptPubKey script.Script) (script.Script, error) {
	switch {
	case len(witnessScript) > 0:
		return witnessScript, nil
	case len(redeemScript) > 0:
		return keyHashScriptCode(redeemScript)
	default:
		return keyHashScriptCode(prevScriptPubKey)
	}
}

// keyHashScriptCode wraps the second element of a witness program in a P2PKH script.
func keyHashScriptCode(program script.Script) (script.Script, error) {
	cmds, err := program.Commands()
	if err != nil {
		return nil, err
	}
	if len(cmds) < 2 || !cmds[1].IsPush() {
		return nil, fmt.Errorf("%w: witness program has no key hash", model.ErrMalformedInput)
	}
	return script.P2PKH(cmds[1].Data), nil
}

// HashPrevouts is hash256 over every outpoint. It is computed once together with HashSequence.
func (tx *Tx) HashPrevouts() []byte {
	tx.prevoutsOnce.Do(tx.computePrevouts)
	return tx.hashPrevouts
}

// HashSequence is hash256 over every input sequence.
func (tx *Tx) HashSequence() []byte {
	tx.prevoutsOnce.Do(tx.computePrevouts)
	return tx.hashSequence
}

// HashOutputs is hash256 over every serialized output.
func (tx *Tx) HashOutputs() []byte {
	tx.outputsOnce.Do(func() {
		w := &encoding.Writer{}
		for _, out := range tx.Outputs {
			out.write(w)
		}
		tx.hashOutputs = hashing.Hash256(w.Result())
	})
	return tx.hashOutputs
}

func (tx *Tx) computePrevouts() {
	prevouts := &encoding.Writer{}
	sequences := &encoding.Writer{}
	for _, in := range tx.Inputs {
		prevouts.Hash(in.PrevTx)
		prevouts.Uint32(in.PrevIndex)
		sequences.Uint32(in.Sequence)
	}
	tx.hashPrevouts = hashing.Hash256(prevouts.Result())
	tx.hashSequence = hashing.Hash256(sequences.Result())
}

func (tx *Tx) checkIndex(i int) error {
	if i < 0 || i >= len(tx.Inputs) {
		return fmt.Errorf("%w: %d of %d", model.ErrInputIndex, i, len(tx.Inputs))
	}
	return nil
}
