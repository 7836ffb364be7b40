// Package encoding implements the fixed-width little-endian and varint primitives of the
// Bitcoin wire format.
package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/safe"
)

// LittleEndianToInt decodes up to 8 little-endian bytes.
func LittleEndianToInt(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: %d bytes exceed uint64", model.ErrEncodingRange, len(b))
	}
	var buf [8]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// IntToLittleEndian encodes v into exactly length bytes.
func IntToLittleEndian(v uint64, length int) ([]byte, error) {
	if err := safe.FitsBytes(v, length); err != nil {
		return nil, err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	out := make([]byte, length)
	copy(out, buf[:length])
	return out, nil
}
