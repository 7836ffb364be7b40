// Package block parses and inspects 80-byte block headers.
package block

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/encoding"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/merkle"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/pow"
)

// HeaderSize is the serialized header length.
const HeaderSize = 80

var (
	// GenesisHeader is the mainnet genesis block header.
	GenesisHeader = mustDecodeHex("0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c")
	// TestnetGenesisHeader is the testnet3 genesis block header.
	TestnetGenesisHeader = mustDecodeHex("0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4adae5494dffff001d1aa4ae18")
)

// Header is a block header. PrevBlock, MerkleRoot and TxHashes are in display (reversed) order.
type Header struct {
	Version    uint32
	PrevBlock  [32]byte
	MerkleRoot [32]byte
	Timestamp  uint32
	Bits       [4]byte
	Nonce      [4]byte
	// TxHashes is supplied by the caller for ValidateMerkleRoot; it is not part of the wire header.
	TxHashes [][32]byte
}

// Parse reads one header from r.
func Parse(r io.Reader) (*Header, error) {
	rd := encoding.NewReader(r)
	h := &Header{}
	var err error
	if h.Version, err = rd.Uint32("version"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.PrevBlock, err = rd.Hash("prev block"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.MerkleRoot, err = rd.Hash("merkle root"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.Timestamp, err = rd.Uint32("timestamp"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.Bits, err = rd.Fixed4("bits"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if h.Nonce, err = rd.Fixed4("nonce"); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	return h, nil
}

// ParseBytes parses a header from exactly HeaderSize bytes.
func ParseBytes(raw []byte) (*Header, error) {
	if len(raw) > HeaderSize {
		return nil, fmt.Errorf("%w: header has %d trailing bytes", model.ErrMalformedInput, len(raw)-HeaderSize)
	}
	return Parse(bytes.NewReader(raw))
}

// Serialize returns the 80-byte wire form.
func (h *Header) Serialize() []byte {
	w := &encoding.Writer{}
	w.Uint32(h.Version)
	w.Hash(h.PrevBlock)
	w.Hash(h.MerkleRoot)
	w.Uint32(h.Timestamp)
	w.Bytes(h.Bits[:])
	w.Bytes(h.Nonce[:])
	return w.Result()
}

// Hash returns the block hash in display order.
func (h *Header) Hash() [32]byte {
	var out [32]byte
	copy(out[:], hashing.Reverse(hashing.Hash256(h.Serialize())))
	return out
}

// ID is the hex block identifier.
func (h *Header) ID() string {
	id := h.Hash()
	return hex.EncodeToString(id[:])
}

// BIP9 reports whether the top three version bits are 001.
func (h *Header) BIP9() bool {
	return h.Version>>29 == 0b001
}

// BIP91 reports whether version bit 4 is set.
func (h *Header) BIP91() bool {
	return h.Version>>4&1 == 1
}

// BIP141 reports whether version bit 1 is set.
func (h *Header) BIP141() bool {
	return h.Version>>1&1 == 1
}

// Target expands the header bits.
func (h *Header) Target() *big.Int {
	return pow.BitsToTarget(h.Bits)
}

// Difficulty is the header target relative to the lowest difficulty.
func (h *Header) Difficulty() *big.Float {
	return pow.Difficulty(h.Target())
}

// CheckPoW reports whether the double hash, read as a little-endian number, is below the target.
func (h *Header) CheckPoW() bool {
	proof := new(big.Int).SetBytes(hashing.Reverse(hashing.Hash256(h.Serialize())))
	return proof.Cmp(h.Target()) < 0
}

// ValidateMerkleRoot rebuilds the Merkle root from TxHashes and compares it to MerkleRoot.
func (h *Header) ValidateMerkleRoot() (bool, error) {
	leaves := make([][]byte, len(h.TxHashes))
	for i, txHash := range h.TxHashes {
		leaves[i] = hashing.Reverse(txHash[:])
	}
	root, err := merkle.Root(leaves)
	if err != nil {
		return false, fmt.Errorf("validate merkle root: %w", err)
	}
	return bytes.Equal(hashing.Reverse(root), h.MerkleRoot[:]), nil
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
