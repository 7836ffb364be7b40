package chain

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Fetcher downloads the serialized transaction with the given id.
	Fetcher interface {
		Fetch(ctx context.Context, network model.Network, txid string) ([]byte, error)
	}
	// Store persists serialized transactions between runs.
	Store interface {
		Get(ctx context.Context, network model.Network, txid string) ([]byte, bool, error)
		Put(ctx context.Context, network model.Network, txid string, raw []byte) error
	}
	ResolverMetrics interface {
		ObserveResolve(source string, err error, started time.Time)
	}
)
