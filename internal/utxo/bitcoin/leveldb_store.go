package bitcoin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/batcher"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

const (
	levelDBFlushSize     = 256
	levelDBFlushInterval = time.Second
)

type levelDBEntry struct {
	key []byte
	raw []byte
}

// LevelDBStore persists transactions keyed "network/txid". Writes are batched in the background
// and stay visible to Get until they reach the database.
type LevelDBStore struct {
	db     *leveldb.DB
	writes *batcher.Batcher[levelDBEntry]

	mu      sync.RWMutex
	pending map[string][]byte
}

// OpenLevelDBStore opens or creates the database at path. Close must be called to flush writes.
func OpenLevelDBStore(ctx context.Context, path string, logger *zap.Logger) (*LevelDBStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	s := &LevelDBStore{db: db, pending: make(map[string][]byte)}
	s.writes = batcher.New(logger.Named("leveldb_store"), s.flush, levelDBFlushSize, levelDBFlushInterval, 0)
	s.writes.Start(ctx)
	return s, nil
}

// Get implements chain.Store.
func (s *LevelDBStore) Get(_ context.Context, network model.Network, txid string) ([]byte, bool, error) {
	key := levelDBKey(network, txid)

	s.mu.RLock()
	raw, ok := s.pending[string(key)]
	s.mu.RUnlock()
	if ok {
		return raw, true, nil
	}

	raw, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return raw, true, nil
}

// Put implements chain.Store.
func (s *LevelDBStore) Put(ctx context.Context, network model.Network, txid string, raw []byte) error {
	entry := levelDBEntry{key: levelDBKey(network, txid), raw: append([]byte(nil), raw...)}

	s.mu.Lock()
	s.pending[string(entry.key)] = entry.raw
	s.mu.Unlock()

	if err := s.writes.Add(ctx, entry); err != nil {
		s.mu.Lock()
		delete(s.pending, string(entry.key))
		s.mu.Unlock()
		return fmt.Errorf("queue leveldb write: %w", err)
	}
	return nil
}

// TxIDs lists the stored ids of network, including writes not yet flushed.
func (s *LevelDBStore) TxIDs(network model.Network) ([]string, error) {
	prefix := string(network) + "/"
	seen := make(map[string]struct{})
	var ids []string

	s.mu.RLock()
	for key := range s.pending {
		if txid, ok := strings.CutPrefix(key, prefix); ok {
			seen[txid] = struct{}{}
			ids = append(ids, txid)
		}
	}
	s.mu.RUnlock()

	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	for iter.Next() {
		txid := strings.TrimPrefix(string(iter.Key()), prefix)
		if _, dup := seen[txid]; !dup {
			ids = append(ids, txid)
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leveldb iterate %s: %w", network, err)
	}
	return ids, nil
}

// Close flushes queued writes and closes the database.
func (s *LevelDBStore) Close() error {
	flushErr := s.writes.Stop()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close leveldb: %w", err)
	}
	return flushErr
}

func (s *LevelDBStore) flush(_ context.Context, entries []levelDBEntry) error {
	batch := new(leveldb.Batch)
	for _, e := range entries {
		batch.Put(e.key, e.raw)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldb write batch of %d: %w", len(entries), err)
	}

	s.mu.Lock()
	for _, e := range entries {
		delete(s.pending, string(e.key))
	}
	s.mu.Unlock()
	return nil
}

func levelDBKey(network model.Network, txid string) []byte {
	return []byte(string(network) + "/" + txid)
}
