// Package interpreter evaluates Bitcoin scripts, including P2SH redeem scripts and version 0
// witness programs.
package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/script"
	"go.uber.org/zap"
)

var (
	errStackUnderflow = errors.New("stack underflow")
	errUnbalancedIf   = errors.New("unbalanced conditional")
)

// Interpreter evaluates combined unlocking and locking commands. It holds no per-evaluation
// state and is safe for concurrent use.
type Interpreter struct {
	logger *zap.Logger
}

// New returns an interpreter. A nil logger discards evaluation diagnostics.
func New(logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{logger: logger.Named("interpreter")}
}

// Evaluate runs cmds against sighash z. The witness feeds the P2WPKH and P2WSH expansions.
// Any fault evaluates to false.
func (i *Interpreter) Evaluate(cmds []script.Command, z *big.Int, witness script.Witness) bool {
	if z == nil || z.Sign() < 0 || z.BitLen() > 256 {
		i.logger.Debug("sighash out of range")
		return false
	}
	e := &execution{
		cmds:    append([]script.Command(nil), cmds...),
		z:       z.FillBytes(make([]byte, 32)),
		witness: witness,
	}
	if err := e.run(); err != nil {
		i.logger.Debug("script evaluation failed", zap.Error(err))
		return false
	}
	if len(e.stack) == 0 {
		i.logger.Debug("script evaluation left an empty stack")
		return false
	}
	if !asBool(e.stack[len(e.stack)-1]) {
		i.logger.Debug("script evaluation left false on the stack")
		return false
	}
	return true
}

type execution struct {
	cmds    []script.Command
	stack   [][]byte
	alt     [][]byte
	conds   []bool
	z       []byte
	witness script.Witness
}

func (e *execution) run() error {
	for len(e.cmds) > 0 {
		cmd := e.cmds[0]
		e.cmds = e.cmds[1:]

		if isConditional(cmd) {
			if err := e.conditional(cmd.Opcode); err != nil {
				return err
			}
			continue
		}
		if !e.executing() {
			continue
		}

		if cmd.IsPush() {
			e.push(cmd.Data)
			if err := e.expandTemplates(cmd.Data); err != nil {
				return err
			}
			continue
		}

		op, ok := opcodes[cmd.Opcode]
		if !ok {
			return fmt.Errorf("unsupported opcode %#02x", cmd.Opcode)
		}
		if err := op(e); err != nil {
			return fmt.Errorf("opcode %#02x: %w", cmd.Opcode, err)
		}
	}
	if len(e.conds) != 0 {
		return errUnbalancedIf
	}
	return nil
}

// expandTemplates recognises the P2SH and witness program patterns right after a push.
func (e *execution) expandTemplates(pushed []byte) error {
	if e.isP2SHTail() {
		return e.expandP2SH(pushed)
	}
	if len(e.stack) == 2 && len(e.stack[0]) == 0 {
		switch len(e.stack[1]) {
		case 20:
			return e.expandP2WPKH()
		case 32:
			return e.expandP2WSH()
		}
	}
	return nil
}

// isP2SHTail reports whether the remaining commands are exactly OP_HASH160 <20 bytes> OP_EQUAL.
func (e *execution) isP2SHTail() bool {
	return len(e.cmds) == 3 &&
		!e.cmds[0].IsPush() && e.cmds[0].Opcode == txscript.OP_HASH160 &&
		e.cmds[1].IsPush() && len(e.cmds[1].Data) == 20 &&
		!e.cmds[2].IsPush() && e.cmds[2].Opcode == txscript.OP_EQUAL
}

func (e *execution) expandP2SH(redeem []byte) error {
	want := e.cmds[1].Data
	e.cmds = nil

	top, err := e.pop()
	if err != nil {
		return err
	}
	if !bytes.Equal(hashing.Hash160(top), want) {
		return errors.New("redeem script hash mismatch")
	}
	cmds, err := script.Script(redeem).Commands()
	if err != nil {
		return fmt.Errorf("redeem script: %w", err)
	}
	e.cmds = cmds
	return nil
}

func (e *execution) expandP2WPKH() error {
	h160 := e.stack[1]
	e.stack = e.stack[:0]
	cmds, err := script.P2PKH(h160).Commands()
	if err != nil {
		return err
	}
	e.cmds = append(e.cmds, e.witness.Commands()...)
	e.cmds = append(e.cmds, cmds...)
	return nil
}

func (e *execution) expandP2WSH() error {
	s256 := e.stack[1]
	e.stack = e.stack[:0]
	witnessScript, ok := e.witness.Last()
	if !ok {
		return errors.New("p2wsh spend without witness script")
	}
	if !bytes.Equal(hashing.Sha256(witnessScript), s256) {
		return errors.New("witness script hash mismatch")
	}
	cmds, err := script.Script(witnessScript).Commands()
	if err != nil {
		return fmt.Errorf("witness script: %w", err)
	}
	e.cmds = append(e.cmds, e.witness[:len(e.witness)-1].Commands()...)
	e.cmds = append(e.cmds, cmds...)
	return nil
}

func isConditional(cmd script.Command) bool {
	if cmd.IsPush() {
		return false
	}
	switch cmd.Opcode {
	case txscript.OP_IF, txscript.OP_NOTIF, txscript.OP_ELSE, txscript.OP_ENDIF:
		return true
	}
	return false
}

func (e *execution) executing() bool {
	for _, c := range e.conds {
		if !c {
			return false
		}
	}
	return true
}

func (e *execution) conditional(opcode byte) error {
	switch opcode {
	case txscript.OP_IF, txscript.OP_NOTIF:
		if !e.executing() {
			e.conds = append(e.conds, false)
			return nil
		}
		top, err := e.pop()
		if err != nil {
			return err
		}
		branch := asBool(top)
		if opcode == txscript.OP_NOTIF {
			branch = !branch
		}
		e.conds = append(e.conds, branch)
	case txscript.OP_ELSE:
		if len(e.conds) == 0 {
			return errUnbalancedIf
		}
		e.conds[len(e.conds)-1] = !e.conds[len(e.conds)-1]
	case txscript.OP_ENDIF:
		if len(e.conds) == 0 {
			return errUnbalancedIf
		}
		e.conds = e.conds[:len(e.conds)-1]
	}
	return nil
}

func (e *execution) push(element []byte) {
	e.stack = append(e.stack, element)
}

func (e *execution) pop() ([]byte, error) {
	if len(e.stack) == 0 {
		return nil, errStackUnderflow
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return top, nil
}

func (e *execution) popNum() (int64, error) {
	top, err := e.pop()
	if err != nil {
		return 0, err
	}
	return decodeNum(top)
}

// peek returns the element depth positions below the top.
func (e *execution) peek(depth int) ([]byte, error) {
	if depth >= len(e.stack) {
		return nil, errStackUnderflow
	}
	return e.stack[len(e.stack)-1-depth], nil
}
