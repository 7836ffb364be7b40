package bitcoin

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// FileStore keeps one network's transactions in a JSON object mapping hex id to hex
// serialization. Changes reach disk on Flush.
type FileStore struct {
	path    string
	network model.Network

	mu      sync.RWMutex
	entries map[string]string
	dirty   bool
}

// OpenFileStore loads path when it exists and starts empty otherwise.
func OpenFileStore(path string, network model.Network) (*FileStore, error) {
	s := &FileStore{path: path, network: network, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("%w: cache file %s: %w", model.ErrMalformedInput, path, err)
	}
	return s, nil
}

// Get implements chain.Store.
func (s *FileStore) Get(_ context.Context, network model.Network, txid string) ([]byte, bool, error) {
	if network != s.network {
		return nil, false, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[txid]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	raw, err := hex.DecodeString(entry)
	if err != nil {
		return nil, false, fmt.Errorf("%w: cached %s: %w", model.ErrMalformedInput, txid, err)
	}
	return raw, true, nil
}

// Put implements chain.Store.
func (s *FileStore) Put(_ context.Context, network model.Network, txid string, raw []byte) error {
	if network != s.network {
		return fmt.Errorf("file store holds %s, got %s", s.network, network)
	}
	s.mu.Lock()
	s.entries[txid] = hex.EncodeToString(raw)
	s.dirty = true
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of the stored hex id to hex serialization map.
func (s *FileStore) Entries() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Merge adds entries, for example a resolver snapshot.
func (s *FileStore) Merge(entries map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		if s.entries[k] != v {
			s.entries[k] = v
			s.dirty = true
		}
	}
}

// Flush writes the file with sorted keys and four-space indentation when anything changed.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	s.dirty = false
	return nil
}
