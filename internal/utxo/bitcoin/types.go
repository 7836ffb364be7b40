package bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RawTransactionClient is the slice of the node RPC API used by NodeFetcher.
	RawTransactionClient interface {
		GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
	}
	// HTTPMetrics records metrics for REST calls.
	HTTPMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
