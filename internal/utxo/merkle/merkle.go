// Package merkle builds Merkle roots over hashes given in their native (wire) byte order.
package merkle

import (
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// Parent hashes the concatenation of two children.
func Parent(left, right []byte) []byte {
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	return hashing.Hash256(buf)
}

// ParentLevel pairs hashes left to right, pairing an odd trailing hash with itself.
// The caller's slice is never modified.
func ParentLevel(hashes [][]byte) ([][]byte, error) {
	if len(hashes) < 2 {
		return nil, fmt.Errorf("%w: parent level needs at least 2 hashes, got %d", model.ErrMalformedInput, len(hashes))
	}
	parents := make([][]byte, 0, (len(hashes)+1)/2)
	for i := 0; i < len(hashes); i += 2 {
		right := hashes[i]
		if i+1 < len(hashes) {
			right = hashes[i+1]
		}
		parents = append(parents, Parent(hashes[i], right))
	}
	return parents, nil
}

// Root reduces hashes to a single root. A single hash is its own root.
func Root(hashes [][]byte) ([]byte, error) {
	if len(hashes) == 0 {
		return nil, fmt.Errorf("%w: merkle root of empty list", model.ErrMalformedInput)
	}
	level := hashes
	for len(level) > 1 {
		var err error
		if level, err = ParentLevel(level); err != nil {
			return nil, err
		}
	}
	return level[0], nil
}
