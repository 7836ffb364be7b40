// Package bitcoin provides transaction transports (node RPC, REST) and persisted stores for the
// previous-transaction resolver.
package bitcoin

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// NodeFetcher implements chain.Fetcher against a bitcoind-compatible JSON-RPC node.
type NodeFetcher struct {
	rpc     RawTransactionClient
	network model.Network
}

// NewNodeFetcher creates a fetcher bound to the node's network.
func NewNodeFetcher(rpc RawTransactionClient, network model.Network) *NodeFetcher {
	return &NodeFetcher{rpc: rpc, network: network}
}

// Fetch returns the transaction in witness serialization when it carries witnesses.
func (f *NodeFetcher) Fetch(ctx context.Context, network model.Network, txid string) ([]byte, error) {
	if network != f.network {
		return nil, fmt.Errorf("node serves %s, requested %s", f.network, network)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("parse txid %s: %w", txid, err)
	}
	tx, err := f.rpc.GetRawTransaction(hash)
	if err != nil {
		return nil, fmt.Errorf("get raw transaction %s: %w", txid, err)
	}

	var buf bytes.Buffer
	if err := tx.MsgTx().Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize transaction %s: %w", txid, err)
	}
	return buf.Bytes(), nil
}
