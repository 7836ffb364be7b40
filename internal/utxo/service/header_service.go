package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/block"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/pow"
	"go.uber.org/zap"
)

// HeaderReport summarizes a parsed block header.
type HeaderReport struct {
	ID         string
	Version    uint32
	Timestamp  uint32
	Bits       uint32
	Target     *big.Int
	Difficulty *big.Float
	BIP9       bool
	BIP91      bool
	BIP141     bool
	PoW        bool
	// MerkleValid is nil when no transaction hashes were supplied.
	MerkleValid *bool
}

// HeaderService inspects headers given raw or fetched from a node by height.
type HeaderService struct {
	source HeaderSource
	logger *zap.Logger
}

// NewHeaderService builds a HeaderService. source may be nil when only raw headers are inspected.
func NewHeaderService(source HeaderSource, logger *zap.Logger) *HeaderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeaderService{source: source, logger: logger.Named("headers")}
}

// Inspect parses an 80-byte header. txids, in display order, are checked against its Merkle root.
func (s *HeaderService) Inspect(raw []byte, txids []string) (HeaderReport, error) {
	h, err := block.ParseBytes(raw)
	if err != nil {
		return HeaderReport{}, err
	}
	report := HeaderReport{
		ID:         h.ID(),
		Version:    h.Version,
		Timestamp:  h.Timestamp,
		Bits:       pow.BitsUint32(h.Bits),
		Target:     h.Target(),
		Difficulty: h.Difficulty(),
		BIP9:       h.BIP9(),
		BIP91:      h.BIP91(),
		BIP141:     h.BIP141(),
		PoW:        h.CheckPoW(),
	}
	if len(txids) == 0 {
		return report, nil
	}

	h.TxHashes = make([][32]byte, len(txids))
	for i, txid := range txids {
		hash, err := chainhash.NewHashFromStr(txid)
		if err != nil {
			return HeaderReport{}, fmt.Errorf("tx hash %d: %w", i, err)
		}
		h.TxHashes[i] = hashing.Reverse32(*hash)
	}
	valid, err := h.ValidateMerkleRoot()
	if err != nil {
		return HeaderReport{}, err
	}
	report.MerkleValid = &valid
	return report, nil
}

// InspectHeight fetches the header at height from the node and inspects it.
func (s *HeaderService) InspectHeight(ctx context.Context, height int64, txids []string) (HeaderReport, error) {
	if s.source == nil {
		return HeaderReport{}, errors.New("no header source configured")
	}
	if err := ctx.Err(); err != nil {
		return HeaderReport{}, err
	}
	hash, err := s.source.GetBlockHash(height)
	if err != nil {
		return HeaderReport{}, fmt.Errorf("get block hash %d: %w", height, err)
	}
	header, err := s.source.GetBlockHeader(hash)
	if err != nil {
		return HeaderReport{}, fmt.Errorf("get block header %s: %w", hash, err)
	}
	var buf bytes.Buffer
	if err := header.Serialize(&buf); err != nil {
		return HeaderReport{}, fmt.Errorf("serialize header %s: %w", hash, err)
	}
	report, err := s.Inspect(buf.Bytes(), txids)
	if err != nil {
		return HeaderReport{}, err
	}
	if report.ID != hash.String() {
		return HeaderReport{}, fmt.Errorf("header at height %d hashes to %s, node reported %s", height, report.ID, hash)
	}
	s.logger.Debug("header fetched", zap.Int64("height", height), zap.String("id", report.ID))
	return report, nil
}
