package service

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/transaction"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	TxVerifier interface {
		Fee(ctx context.Context, tx *transaction.Tx) (int64, error)
		Verify(ctx context.Context, tx *transaction.Tx) (bool, error)
	}
	// Prefetcher warms the previous-transaction cache before verification fans out.
	Prefetcher interface {
		Prefetch(ctx context.Context, network model.Network, txids []string, workers int) error
	}
	HeaderSource interface {
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockHeader(blockHash *chainhash.Hash) (*wire.BlockHeader, error)
	}
)
