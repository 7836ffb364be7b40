// Package transaction parses, serializes, hashes, verifies and signs Bitcoin transactions.
package transaction

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/encoding"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/script"
)

const (
	// DefaultSequence is the sequence assigned by NewTxIn.
	DefaultSequence uint32 = 0xffffffff
	// CoinbaseIndex is the previous index of a coinbase input.
	CoinbaseIndex uint32 = 0xffffffff

	witnessMarker byte = 0x00
	witnessFlag   byte = 0x01

	// maxPrealloc caps slice capacity taken from untrusted counts.
	maxPrealloc = 1024
)

// Tx is a transaction. A Tx must not be copied after the first sighash computation.
type Tx struct {
	Version  uint32
	Inputs   []*TxIn
	Outputs  []*TxOut
	LockTime uint32
	Segwit   bool
	Network  model.Network

	prevoutsOnce sync.Once
	hashPrevouts []byte
	hashSequence []byte

	outputsOnce sync.Once
	hashOutputs []byte
}

// TxIn spends a previous output. PrevTx is in display order.
type TxIn struct {
	PrevTx    [32]byte
	PrevIndex uint32
	ScriptSig script.Script
	Sequence  uint32
	Witness   script.Witness
}

// TxOut is an amount in satoshis locked by ScriptPubKey.
type TxOut struct {
	Amount       uint64
	ScriptPubKey script.Script
}

// NewTxIn returns an input with an empty unlocking script and the default sequence.
func NewTxIn(prevTx [32]byte, prevIndex uint32) *TxIn {
	return &TxIn{
		PrevTx:    prevTx,
		PrevIndex: prevIndex,
		ScriptSig: script.Script{},
		Sequence:  DefaultSequence,
	}
}

// PrevTxID is the hex id of the transaction being spent.
func (in *TxIn) PrevTxID() string {
	return hex.EncodeToString(in.PrevTx[:])
}

// Parse decodes a legacy or witness transaction. The byte after the version selects the format:
// 0x00 is the witness marker, anything else starts the legacy input count.
func Parse(r io.Reader, network model.Network) (*Tx, error) {
	rd := encoding.NewReader(r)
	version, err := rd.Uint32("version")
	if err != nil {
		return nil, fmt.Errorf("parse tx: %w", err)
	}
	first, err := rd.Byte("marker")
	if err != nil {
		return nil, fmt.Errorf("parse tx: %w", err)
	}

	if first == witnessMarker {
		if err := readFlag(rd); err != nil {
			return nil, fmt.Errorf("parse tx: %w", err)
		}
		inputs, err := rd.VarInt("input count")
		if err != nil {
			return nil, fmt.Errorf("parse tx: %w", err)
		}
		return parseBody(rd, version, inputs, true, network)
	}

	inputs, err := rd.VarIntAfter(first, "input count")
	if err != nil {
		return nil, fmt.Errorf("parse tx: %w", err)
	}
	return parseBody(rd, version, inputs, false, network)
}

// ParseBytes parses raw transaction bytes and rejects trailing data.
func ParseBytes(raw []byte, network model.Network) (*Tx, error) {
	r := bytes.NewReader(raw)
	tx, err := Parse(r, network)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after transaction", model.ErrMalformedInput, r.Len())
	}
	return tx, nil
}

// ParseHex parses a hex encoded transaction.
func ParseHex(s string, network model.Network) (*Tx, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode hex: %w", model.ErrMalformedInput, err)
	}
	return ParseBytes(raw, network)
}

// ParseLegacy decodes the pre-witness format.
func ParseLegacy(r io.Reader, network model.Network) (*Tx, error) {
	rd := encoding.NewReader(r)
	version, err := rd.Uint32("version")
	if err != nil {
		return nil, fmt.Errorf("parse legacy tx: %w", err)
	}
	inputs, err := rd.VarInt("input count")
	if err != nil {
		return nil, fmt.Errorf("parse legacy tx: %w", err)
	}
	return parseBody(rd, version, inputs, false, network)
}

// ParseSegwit decodes the witness format and requires the 0x00 0x01 marker and flag.
func ParseSegwit(r io.Reader, network model.Network) (*Tx, error) {
	rd := encoding.NewReader(r)
	version, err := rd.Uint32("version")
	if err != nil {
		return nil, fmt.Errorf("parse segwit tx: %w", err)
	}
	marker, err := rd.Byte("marker")
	if err != nil {
		return nil, fmt.Errorf("parse segwit tx: %w", err)
	}
	if marker != witnessMarker {
		return nil, fmt.Errorf("%w: witness marker %#02x", model.ErrMalformedInput, marker)
	}
	if err := readFlag(rd); err != nil {
		return nil, fmt.Errorf("parse segwit tx: %w", err)
	}
	inputs, err := rd.VarInt("input count")
	if err != nil {
		return nil, fmt.Errorf("parse segwit tx: %w", err)
	}
	return parseBody(rd, version, inputs, true, network)
}

func readFlag(rd *encoding.Reader) error {
	flag, err := rd.Byte("flag")
	if err != nil {
		return err
	}
	if flag != witnessFlag {
		return fmt.Errorf("%w: unsupported witness flag %#02x", model.ErrMalformedInput, flag)
	}
	return nil
}

func parseBody(rd *encoding.Reader, version uint32, inputCount uint64, segwit bool, network model.Network) (*Tx, error) {
	tx := &Tx{
		Version: version,
		Segwit:  segwit,
		Network: network,
		Inputs:  make([]*TxIn, 0, min(inputCount, maxPrealloc)),
	}
	for i := uint64(0); i < inputCount; i++ {
		in, err := parseTxIn(rd)
		if err != nil {
			return nil, fmt.Errorf("parse input %d: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, in)
	}

	outputCount, err := rd.VarInt("output count")
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]*TxOut, 0, min(outputCount, maxPrealloc))
	for i := uint64(0); i < outputCount; i++ {
		out, err := parseTxOut(rd)
		if err != nil {
			return nil, fmt.Errorf("parse output %d: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, out)
	}

	if segwit {
		for i, in := range tx.Inputs {
			if in.Witness, err = parseWitness(rd); err != nil {
				return nil, fmt.Errorf("parse witness %d: %w", i, err)
			}
		}
	}

	if tx.LockTime, err = rd.Uint32("locktime"); err != nil {
		return nil, err
	}
	return tx, nil
}

func parseTxIn(rd *encoding.Reader) (*TxIn, error) {
	var (
		in  TxIn
		err error
	)
	if in.PrevTx, err = rd.Hash("prev tx"); err != nil {
		return nil, err
	}
	if in.PrevIndex, err = rd.Uint32("prev index"); err != nil {
		return nil, err
	}
	sig, err := rd.VarBytes("script sig")
	if err != nil {
		return nil, err
	}
	in.ScriptSig = script.Script(sig)
	if in.Sequence, err = rd.Uint32("sequence"); err != nil {
		return nil, err
	}
	return &in, nil
}

func parseTxOut(rd *encoding.Reader) (*TxOut, error) {
	amount, err := rd.Uint64("amount")
	if err != nil {
		return nil, err
	}
	pk, err := rd.VarBytes("script pubkey")
	if err != nil {
		return nil, err
	}
	return &TxOut{Amount: amount, ScriptPubKey: script.Script(pk)}, nil
}

func parseWitness(rd *encoding.Reader) (script.Witness, error) {
	count, err := rd.VarInt("witness item count")
	if err != nil {
		return nil, err
	}
	w := make(script.Witness, 0, min(count, maxPrealloc))
	for j := uint64(0); j < count; j++ {
		item, err := rd.VarBytes("witness item")
		if err != nil {
			return nil, err
		}
		if len(item) == 0 {
			w = append(w, script.WitnessItem{Empty: true})
			continue
		}
		w = append(w, script.WitnessItem{Data: item})
	}
	return w, nil
}

// Serialize encodes tx in the format it was parsed or built with.
func (tx *Tx) Serialize() []byte {
	if tx.Segwit {
		return tx.SerializeSegwit()
	}
	return tx.SerializeLegacy()
}

// SerializeLegacy encodes tx without marker, flag or witness data.
func (tx *Tx) SerializeLegacy() []byte {
	w := &encoding.Writer{}
	w.Uint32(tx.Version)
	tx.writeInputsOutputs(w)
	w.Uint32(tx.LockTime)
	return w.Result()
}

// SerializeSegwit encodes tx with marker, flag and one witness stack per input.
func (tx *Tx) SerializeSegwit() []byte {
	w := &encoding.Writer{}
	w.Uint32(tx.Version)
	w.Byte(witnessMarker)
	w.Byte(witnessFlag)
	tx.writeInputsOutputs(w)
	for _, in := range tx.Inputs {
		w.VarInt(uint64(len(in.Witness)))
		for _, item := range in.Witness {
			w.VarBytes(item.Bytes())
		}
	}
	w.Uint32(tx.LockTime)
	return w.Result()
}

func (tx *Tx) writeInputsOutputs(w *encoding.Writer) {
	w.VarInt(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		in.write(w, in.ScriptSig)
	}
	w.VarInt(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		out.write(w)
	}
}

// write encodes in with scriptSig substituted for its unlocking script.
func (in *TxIn) write(w *encoding.Writer, scriptSig script.Script) {
	w.Hash(in.PrevTx)
	w.Uint32(in.PrevIndex)
	w.VarBytes(scriptSig)
	w.Uint32(in.Sequence)
}

func (out *TxOut) write(w *encoding.Writer) {
	w.Uint64(out.Amount)
	w.VarBytes(out.ScriptPubKey)
}

// Serialize encodes the output as amount followed by the length-prefixed script.
func (out *TxOut) Serialize() []byte {
	w := &encoding.Writer{}
	out.write(w)
	return w.Result()
}

// Hash is the double hash of the legacy serialization in display order. Witness data never
// contributes, so segwit transactions hash the same with or without their witnesses.
func (tx *Tx) Hash() [32]byte {
	return [32]byte(hashing.Reverse(hashing.Hash256(tx.SerializeLegacy())))
}

// ID is the hex transaction identifier.
func (tx *Tx) ID() string {
	h := tx.Hash()
	return hex.EncodeToString(h[:])
}

// IsCoinbase reports a single input spending the null outpoint.
func (tx *Tx) IsCoinbase() bool {
	if len(tx.Inputs) != 1 {
		return false
	}
	in := tx.Inputs[0]
	return in.PrevTx == [32]byte{} && in.PrevIndex == CoinbaseIndex
}

// CoinbaseHeight decodes the first push of the coinbase unlocking script as a little-endian integer.
func (tx *Tx) CoinbaseHeight() (uint64, error) {
	if !tx.IsCoinbase() {
		return 0, model.ErrNotCoinbase
	}
	cmds, err := tx.Inputs[0].ScriptSig.Commands()
	if err != nil {
		return 0, fmt.Errorf("coinbase height: %w", err)
	}
	if len(cmds) == 0 || !cmds[0].IsPush() {
		return 0, fmt.Errorf("%w: coinbase script does not start with a push", model.ErrMalformedInput)
	}
	height, err := encoding.LittleEndianToInt(cmds[0].Data)
	if err != nil {
		return 0, fmt.Errorf("coinbase height: %w", err)
	}
	return height, nil
}
