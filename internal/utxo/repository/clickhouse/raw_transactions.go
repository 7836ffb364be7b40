package clickhouse

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

const rawTransactionQuery = `
SELECT raw
FROM utxo_raw_transactions FINAL
WHERE coin = ? AND network = ? AND txid = CAST(? AS FixedString(64))
LIMIT 1`

const rawTransactionsByTxIDsQuery = `
SELECT
	txid,
	raw
FROM utxo_raw_transactions FINAL
WHERE coin = ? AND network = ? AND txid IN ?`

const insertRawTransactionsQuery = `
INSERT INTO utxo_raw_transactions (
	coin,
	network,
	txid,
	raw
) VALUES`

// Get implements chain.Store.
func (r *Repository) Get(ctx context.Context, network model.Network, txid string) (raw []byte, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("get_raw_transaction", r.coin, network, err, start)
	}()

	rows, err := r.conn.Query(ctx, rawTransactionQuery, string(r.coin), string(network), txid)
	if err != nil {
		return nil, false, fmt.Errorf("query raw transaction: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, false, fmt.Errorf("iterate raw transaction: %w", err)
		}
		return nil, false, nil
	}
	var encoded string
	if err = rows.Scan(&encoded); err != nil {
		return nil, false, fmt.Errorf("scan raw transaction: %w", err)
	}
	if raw, err = hex.DecodeString(encoded); err != nil {
		return nil, false, fmt.Errorf("%w: stored transaction %s: %w", model.ErrMalformedInput, txid, err)
	}
	return raw, true, nil
}

// RawTransactions returns the stored serializations among txids, keyed by id. Missing ids are
// absent from the result.
func (r *Repository) RawTransactions(ctx context.Context, network model.Network, txids []string) (result map[string][]byte, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("raw_transactions_by_txids", r.coin, network, err, start)
	}()

	result = make(map[string][]byte, len(txids))
	if len(txids) == 0 {
		return result, nil
	}

	rows, err := r.conn.Query(ctx, rawTransactionsByTxIDsQuery, string(r.coin), string(network), txids)
	if err != nil {
		return nil, fmt.Errorf("query raw transactions by txids: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var txid, encoded string
		if err = rows.Scan(&txid, &encoded); err != nil {
			return nil, fmt.Errorf("scan raw transaction: %w", err)
		}
		raw, decodeErr := hex.DecodeString(encoded)
		if decodeErr != nil {
			err = fmt.Errorf("%w: stored transaction %s: %w", model.ErrMalformedInput, txid, decodeErr)
			return nil, err
		}
		result[txid] = raw
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw transactions: %w", err)
	}
	return result, nil
}

// Put implements chain.Store.
func (r *Repository) Put(ctx context.Context, network model.Network, txid string, raw []byte) error {
	return r.InsertRawTransactions(ctx, []model.RawTransaction{{
		Coin:    r.coin,
		Network: network,
		TxID:    txid,
		Raw:     raw,
	}})
}

// InsertRawTransactions stores transactions in one batch. Rows with an existing key replace the
// older version on merge.
func (r *Repository) InsertRawTransactions(ctx context.Context, txs []model.RawTransaction) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_raw_transactions", r.coin, firstNetwork(txs), err, start)
	}()

	if len(txs) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertRawTransactionsQuery)
	if err != nil {
		return fmt.Errorf("prepare raw transactions batch: %w", err)
	}

	for _, tx := range txs {
		if err = batch.Append(
			string(tx.Coin),
			string(tx.Network),
			tx.TxID,
			hex.EncodeToString(tx.Raw),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append raw transaction: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert raw transactions: %w", err)
	}
	return nil
}

func firstNetwork(txs []model.RawTransaction) model.Network {
	if len(txs) == 0 {
		return ""
	}
	return txs[0].Network
}
