// Package chain resolves previous transactions for input verification.
package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/transaction"
	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/workerpool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	sourceCache = "cache"
	sourceStore = "store"
	sourceFetch = "fetch"
)

// TransactionResolver caches parsed transactions by network and id. Concurrent misses for the
// same key share one store lookup and one fetch.
type TransactionResolver struct {
	fetcher Fetcher
	store   Store
	metrics ResolverMetrics
	logger  *zap.Logger

	mu    sync.RWMutex
	local map[string]*transaction.Tx
	group singleflight.Group
}

// NewTransactionResolver constructs a resolver. store and metrics may be nil.
func NewTransactionResolver(fetcher Fetcher, store Store, metrics ResolverMetrics, logger *zap.Logger) *TransactionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionResolver{
		fetcher: fetcher,
		store:   store,
		metrics: metrics,
		logger:  logger.Named("tx_resolver"),
		local:   make(map[string]*transaction.Tx),
	}
}

// Resolve returns the transaction, consulting the cache, then the store, then the fetcher.
func (r *TransactionResolver) Resolve(ctx context.Context, network model.Network, txid string) (*transaction.Tx, error) {
	txid, err := normalizeTxID(txid)
	if err != nil {
		return nil, err
	}
	k := cacheKey(network, txid)

	started := time.Now()
	if tx, ok := r.cached(k); ok {
		r.observe(sourceCache, nil, started)
		return tx, nil
	}

	v, err, _ := r.group.Do(k, func() (any, error) {
		if tx, ok := r.cached(k); ok {
			return tx, nil
		}
		if tx, ok := r.fromStore(ctx, network, txid); ok {
			r.remember(k, tx)
			return tx, nil
		}
		return r.fetch(ctx, network, txid, k)
	})
	if err != nil {
		return nil, err
	}
	return v.(*transaction.Tx), nil
}

// ResolveFresh skips the cache and the store and replaces any cached copy with the fetched one.
func (r *TransactionResolver) ResolveFresh(ctx context.Context, network model.Network, txid string) (*transaction.Tx, error) {
	txid, err := normalizeTxID(txid)
	if err != nil {
		return nil, err
	}
	k := cacheKey(network, txid)
	v, err, _ := r.group.Do("fresh/"+k, func() (any, error) {
		return r.fetch(ctx, network, txid, k)
	})
	if err != nil {
		return nil, err
	}
	return v.(*transaction.Tx), nil
}

// Seed inserts a transaction that is already known, keyed by its own id.
func (r *TransactionResolver) Seed(tx *transaction.Tx) {
	r.remember(cacheKey(tx.Network, tx.ID()), tx)
}

// Prefetch resolves txids with up to workers concurrent lookups. Duplicate ids are fetched once.
func (r *TransactionResolver) Prefetch(ctx context.Context, network model.Network, txids []string, workers int) error {
	if workers <= 0 {
		workers = 1
	}
	seen := make(map[string]struct{}, len(txids))
	unique := make([]string, 0, len(txids))
	for _, txid := range txids {
		if _, dup := seen[txid]; dup {
			continue
		}
		seen[txid] = struct{}{}
		unique = append(unique, txid)
	}

	return workerpool.Process(ctx, workers, unique, func(ctx context.Context, txid string) error {
		_, err := r.Resolve(ctx, network, txid)
		return err
	}, nil)
}

// Snapshot returns the cached transactions of network as hex id to hex serialization.
func (r *TransactionResolver) Snapshot(network model.Network) map[string]string {
	prefix := string(network) + "/"

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.local))
	for k, tx := range r.local {
		if txid, ok := strings.CutPrefix(k, prefix); ok {
			out[txid] = hex.EncodeToString(tx.Serialize())
		}
	}
	return out
}

// Load seeds the cache from a Snapshot. Entries that do not parse or do not hash to their key
// are skipped; the rest are loaded and the skipped ones are reported together.
func (r *TransactionResolver) Load(network model.Network, entries map[string]string) error {
	var errs []error
	for txid, raw := range entries {
		id, err := normalizeTxID(txid)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tx, err := transaction.ParseHex(raw, network)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: cached %s: %w", model.ErrResolution, id, err))
			continue
		}
		if tx.ID() != id {
			errs = append(errs, fmt.Errorf("%w: cached entry %s holds %s", model.ErrResolution, id, tx.ID()))
			continue
		}
		r.remember(cacheKey(network, id), tx)
	}
	return errors.Join(errs...)
}

func (r *TransactionResolver) fromStore(ctx context.Context, network model.Network, txid string) (*transaction.Tx, bool) {
	if r.store == nil {
		return nil, false
	}
	started := time.Now()
	raw, ok, err := r.store.Get(ctx, network, txid)
	if err != nil {
		r.observe(sourceStore, err, started)
		r.logger.Warn("store lookup failed", zap.String("txid", txid), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	tx, err := parseVerified(raw, network, txid)
	r.observe(sourceStore, err, started)
	if err != nil {
		r.logger.Warn("ignoring stored transaction", zap.String("txid", txid), zap.Error(err))
		return nil, false
	}
	return tx, true
}

func (r *TransactionResolver) fetch(ctx context.Context, network model.Network, txid, k string) (tx *transaction.Tx, err error) {
	started := time.Now()
	defer func() { r.observe(sourceFetch, err, started) }()

	raw, err := r.fetcher.Fetch(ctx, network, txid)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", model.ErrResolution, txid, err)
	}
	tx, err = parseVerified(raw, network, txid)
	if err != nil {
		return nil, err
	}
	r.remember(k, tx)

	if r.store != nil {
		if err := r.store.Put(ctx, network, txid, raw); err != nil {
			r.logger.Warn("persist transaction failed", zap.String("txid", txid), zap.Error(err))
		}
	}
	r.logger.Debug("fetched transaction", zap.String("network", string(network)), zap.String("txid", txid))
	return tx, nil
}

// parseVerified parses raw and checks that it hashes to the requested id.
func parseVerified(raw []byte, network model.Network, txid string) (*transaction.Tx, error) {
	tx, err := transaction.ParseBytes(raw, network)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", model.ErrResolution, txid, err)
	}
	if got := tx.ID(); got != txid {
		return nil, fmt.Errorf("%w: requested %s, received %s", model.ErrResolution, txid, got)
	}
	return tx, nil
}

func (r *TransactionResolver) cached(k string) (*transaction.Tx, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.local[k]
	return tx, ok
}

func (r *TransactionResolver) remember(k string, tx *transaction.Tx) {
	r.mu.Lock()
	r.local[k] = tx
	r.mu.Unlock()
}

func (r *TransactionResolver) observe(source string, err error, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveResolve(source, err, started)
}

func cacheKey(network model.Network, txid string) string {
	return string(network) + "/" + txid
}

func normalizeTxID(txid string) (string, error) {
	txid = strings.ToLower(strings.TrimSpace(txid))
	if len(txid) != 64 {
		return "", fmt.Errorf("%w: txid %q is not 64 hex characters", model.ErrResolution, txid)
	}
	if _, err := hex.DecodeString(txid); err != nil {
		return "", fmt.Errorf("%w: txid %q: %w", model.ErrResolution, txid, err)
	}
	return txid, nil
}
