package encoding

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// MaxVarBytes bounds any length-prefixed field so a corrupt prefix cannot force a huge allocation.
const MaxVarBytes = 4_000_000

// Reader decodes wire fields from a stream. Every short read is reported as model.ErrMalformedInput.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Bytes reads exactly n bytes.
func (r *Reader) Bytes(n int, field string) ([]byte, error) {
	if n < 0 || n > MaxVarBytes {
		return nil, fmt.Errorf("%w: %s length %d out of bounds", model.ErrMalformedInput, field, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, malformed(field, err)
	}
	return buf, nil
}

// Byte reads a single byte.
func (r *Reader) Byte(field string) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, malformed(field, err)
	}
	return b[0], nil
}

// Uint32 reads a 4-byte little-endian integer.
func (r *Reader) Uint32(field string) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, malformed(field, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Uint64 reads an 8-byte little-endian integer.
func (r *Reader) Uint64(field string) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, malformed(field, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Fixed4 reads 4 raw bytes.
func (r *Reader) Fixed4(field string) ([4]byte, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return b, malformed(field, err)
	}
	return b, nil
}

// Hash reads a 32-byte wire hash and returns it in display (reversed) order.
func (r *Reader) Hash(field string) ([32]byte, error) {
	var wire [32]byte
	if _, err := io.ReadFull(r.r, wire[:]); err != nil {
		return wire, malformed(field, err)
	}
	var out [32]byte
	for i := range wire {
		out[i] = wire[31-i]
	}
	return out, nil
}

// VarInt reads a canonical varint.
func (r *Reader) VarInt(field string) (uint64, error) {
	v, err := ReadCanonicalVarInt(r.r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// VarIntAfter finishes a canonical varint whose discriminator byte was already consumed.
func (r *Reader) VarIntAfter(first byte, field string) (uint64, error) {
	v, err := readVarIntTail(r.r, first, true)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// VarBytes reads a varint length followed by that many bytes.
func (r *Reader) VarBytes(field string) ([]byte, error) {
	n, err := r.VarInt(field)
	if err != nil {
		return nil, err
	}
	if n > MaxVarBytes {
		return nil, fmt.Errorf("%w: %s length %d out of bounds", model.ErrMalformedInput, field, n)
	}
	return r.Bytes(int(n), field)
}
