package transaction

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/script"
	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/safe"
	"go.uber.org/zap"
)

// Verifier checks fees and input scripts of transactions whose previous outputs it resolves.
type Verifier struct {
	resolver  Resolver
	evaluator Evaluator
	metrics   VerifierMetrics
	logger    *zap.Logger
}

// NewVerifier wires a verifier. metrics may be nil.
func NewVerifier(resolver Resolver, evaluator Evaluator, logger *zap.Logger, metrics VerifierMetrics) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		resolver:  resolver,
		evaluator: evaluator,
		metrics:   metrics,
		logger:    logger.Named("verifier"),
	}
}

// Fee is the resolved input value minus the output value. It may be negative.
func (v *Verifier) Fee(ctx context.Context, tx *Tx) (fee int64, err error) {
	started := time.Now()
	defer func() { v.observe("fee", err == nil, err, started) }()

	var in, out uint64
	for i, txIn := range tx.Inputs {
		prev, err := v.prevOutput(ctx, tx, txIn)
		if err != nil {
			return 0, fmt.Errorf("fee input %d: %w", i, err)
		}
		if in, err = safe.AddUint64(in, prev.Amount); err != nil {
			return 0, fmt.Errorf("fee input sum: %w", err)
		}
	}
	for _, txOut := range tx.Outputs {
		if out, err = safe.AddUint64(out, txOut.Amount); err != nil {
			return 0, fmt.Errorf("fee output sum: %w", err)
		}
	}

	inSigned, err := safe.Int64(in)
	if err != nil {
		return 0, fmt.Errorf("fee input sum: %w", err)
	}
	outSigned, err := safe.Int64(out)
	if err != nil {
		return 0, fmt.Errorf("fee output sum: %w", err)
	}
	return inSigned - outSigned, nil
}

// Verify reports whether the fee is non-negative and every input verifies. It stops at the
// first failing input.
func (v *Verifier) Verify(ctx context.Context, tx *Tx) (valid bool, err error) {
	started := time.Now()
	defer func() { v.observe("verify", valid, err, started) }()

	fee, err := v.Fee(ctx, tx)
	if err != nil {
		return false, err
	}
	if fee < 0 {
		v.logger.Debug("negative fee", zap.String("txid", tx.ID()), zap.Int64("fee", fee))
		return false, nil
	}
	for i := range tx.Inputs {
		ok, err := v.verifyInput(ctx, tx, i)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// VerifyInput classifies the spent output, computes the matching sighash and evaluates the
// combined scripts. A script that fails to evaluate is false with a nil error; unlocking data
// that cannot be parsed (truncated pushes, a P2SH spend without a trailing redeem push, a
// witness spend without its witness script) is an error wrapping model.ErrMalformedInput.
func (v *Verifier) VerifyInput(ctx context.Context, tx *Tx, i int) (valid bool, err error) {
	started := time.Now()
	defer func() { v.observe("verify_input", valid, err, started) }()

	return v.verifyInput(ctx, tx, i)
}

func (v *Verifier) verifyInput(ctx context.Context, tx *Tx, i int) (bool, error) {
	if err := tx.checkIndex(i); err != nil {
		return false, err
	}
	in := tx.Inputs[i]
	prev, err := v.prevOutput(ctx, tx, in)
	if err != nil {
		return false, fmt.Errorf("verify input %d: %w", i, err)
	}

	z, witness, err := tx.inputSigHash(i, prev)
	if err != nil {
		return false, fmt.Errorf("verify input %d: %w", i, err)
	}

	sigCmds, err := in.ScriptSig.Commands()
	if err != nil {
		return false, fmt.Errorf("verify input %d: unlocking script: %w", i, err)
	}
	pkCmds, err := prev.ScriptPubKey.Commands()
	if err != nil {
		return false, fmt.Errorf("verify input %d: locking script: %w", i, err)
	}

	cmds := make([]script.Command, 0, len(sigCmds)+len(pkCmds))
	cmds = append(cmds, sigCmds...)
	cmds = append(cmds, pkCmds...)
	if !v.evaluator.Evaluate(cmds, z, witness) {
		v.logger.Debug("script evaluation failed", zap.String("txid", tx.ID()), zap.Int("input", i))
		return false, nil
	}
	return true, nil
}

// inputSigHash picks the sighash algorithm and witness for input i from the spent output's type.
func (tx *Tx) inputSigHash(i int, prev *TxOut) (*big.Int, script.Witness, error) {
	in := tx.Inputs[i]
	pk := prev.ScriptPubKey

	switch {
	case pk.IsP2SH():
		raw, err := in.ScriptSig.LastPush()
		if err != nil {
			return nil, nil, fmt.Errorf("redeem script: %w", err)
		}
		redeem := script.Script(raw)
		switch {
		case redeem.IsP2WPKH():
			return tx.witnessSigHash(i, nil, redeem, pk, prev.Amount)
		case redeem.IsP2WSH():
			ws, ok := in.Witness.Last()
			if !ok {
				return nil, nil, fmt.Errorf("%w: p2sh-p2wsh input without witness script", model.ErrMalformedInput)
			}
			return tx.witnessSigHash(i, ws, nil, pk, prev.Amount)
		default:
			z, err := tx.SigHash(i, redeem)
			return z, nil, err
		}
	case pk.IsP2WPKH():
		return tx.witnessSigHash(i, nil, nil, pk, prev.Amount)
	case pk.IsP2WSH():
		ws, ok := in.Witness.Last()
		if !ok {
			return nil, nil, fmt.Errorf("%w: p2wsh input without witness script", model.ErrMalformedInput)
		}
		return tx.witnessSigHash(i, ws, nil, pk, prev.Amount)
	default:
		z, err := tx.SigHash(i, pk)
		return z, nil, err
	}
}

func (tx *Tx) witnessSigHash(i int, witnessScript, redeem, pk script.Script, amount uint64) (*big.Int, script.Witness, error) {
	code, err := WitnessScriptCode(witnessScript, redeem, pk)
	if err != nil {
		return nil, nil, err
	}
	z, err := tx.SigHashBIP143(i, code, amount)
	if err != nil {
		return nil, nil, err
	}
	return z, tx.Inputs[i].Witness, nil
}

// SignInput signs input i with the legacy sighash over the spent locking script, installs
// [signature||SIGHASH_ALL, pubkey] as its unlocking script and re-verifies it.
// Callers must not sign the same input concurrently.
func (v *Verifier) SignInput(ctx context.Context, tx *Tx, i int, signer Signer) (bool, error) {
	if err := tx.checkIndex(i); err != nil {
		return false, err
	}
	in := tx.Inputs[i]
	prev, err := v.prevOutput(ctx, tx, in)
	if err != nil {
		return false, fmt.Errorf("sign input %d: %w", i, err)
	}
	z, err := tx.SigHash(i, prev.ScriptPubKey)
	if err != nil {
		return false, err
	}
	sig, err := signWithType(signer, z)
	if err != nil {
		return false, fmt.Errorf("sign input %d: %w", i, err)
	}
	scriptSig, err := script.New(script.Push(sig), script.Push(signer.PublicKey()))
	if err != nil {
		return false, fmt.Errorf("sign input %d: %w", i, err)
	}
	in.ScriptSig = scriptSig
	return v.VerifyInput(ctx, tx, i)
}

// SignWitnessInput signs a P2WPKH input with the BIP143 sighash and installs the
// [signature||SIGHASH_ALL, pubkey] witness. The transaction switches to the witness format.
func (v *Verifier) SignWitnessInput(ctx context.Context, tx *Tx, i int, signer Signer) (bool, error) {
	if err := tx.checkIndex(i); err != nil {
		return false, err
	}
	in := tx.Inputs[i]
	prev, err := v.prevOutput(ctx, tx, in)
	if err != nil {
		return false, fmt.Errorf("sign witness input %d: %w", i, err)
	}
	if !prev.ScriptPubKey.IsP2WPKH() {
		return false, fmt.Errorf("%w: input %d does not spend p2wpkh", model.ErrMalformedInput, i)
	}
	code, err := WitnessScriptCode(nil, nil, prev.ScriptPubKey)
	if err != nil {
		return false, err
	}
	z, err := tx.SigHashBIP143(i, code, prev.Amount)
	if err != nil {
		return false, err
	}
	sig, err := signWithType(signer, z)
	if err != nil {
		return false, fmt.Errorf("sign witness input %d: %w", i, err)
	}
	in.ScriptSig = script.Script{}
	in.Witness = script.NewWitness(sig, signer.PublicKey())
	tx.Segwit = true
	return v.VerifyInput(ctx, tx, i)
}

func signWithType(signer Signer, z *big.Int) ([]byte, error) {
	der, err := signer.Sign(z)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 0, len(der)+1)
	sig = append(sig, der...)
	return append(sig, byte(SigHashAll)), nil
}

func (v *Verifier) prevOutput(ctx context.Context, tx *Tx, in *TxIn) (*TxOut, error) {
	id := in.PrevTxID()
	prev, err := v.resolver.Resolve(ctx, tx.Network, id)
	if err != nil {
		if errors.Is(err, model.ErrResolution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", model.ErrResolution, id, err)
	}
	if uint64(in.PrevIndex) >= uint64(len(prev.Outputs)) {
		return nil, fmt.Errorf("%w: %s has no output %d", model.ErrResolution, id, in.PrevIndex)
	}
	return prev.Outputs[in.PrevIndex], nil
}

func (v *Verifier) observe(operation string, valid bool, err error, started time.Time) {
	if v.metrics == nil {
		return
	}
	v.metrics.ObserveVerify(operation, valid, err, started)
}
