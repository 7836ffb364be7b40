package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

const (
	varIntUint16 = 0xfd
	varIntUint32 = 0xfe
	varIntUint64 = 0xff
)

// ReadVarInt decodes a varint, accepting non-minimal encodings.
func ReadVarInt(r io.Reader) (uint64, error) {
	first, err := readByte(r)
	if err != nil {
		return 0, err
	}
	return readVarIntTail(r, first, false)
}

// ReadCanonicalVarInt decodes a varint and rejects encodings longer than necessary.
func ReadCanonicalVarInt(r io.Reader) (uint64, error) {
	first, err := readByte(r)
	if err != nil {
		return 0, err
	}
	return readVarIntTail(r, first, true)
}

// EncodeVarInt returns the minimal varint encoding of v.
func EncodeVarInt(v uint64) []byte {
	switch {
	case v < varIntUint16:
		return []byte{byte(v)}
	case v <= 0xffff:
		buf := []byte{varIntUint16, 0, 0}
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		return buf
	case v <= 0xffffffff:
		buf := []byte{varIntUint32, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = varIntUint64
		binary.LittleEndian.PutUint64(buf[1:], v)
		return buf
	}
}

// EncodeVarIntBig encodes an arbitrary precision value, failing outside [0, 2^64).
func EncodeVarIntBig(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return nil, fmt.Errorf("%w: integer too large for varint: %v", model.ErrEncodingRange, v)
	}
	return EncodeVarInt(v.Uint64()), nil
}

func readVarIntTail(r io.Reader, first byte, canonical bool) (uint64, error) {
	var (
		width int
		floor uint64
	)
	switch first {
	case varIntUint16:
		width, floor = 2, varIntUint16
	case varIntUint32:
		width, floor = 4, 0x10000
	case varIntUint64:
		width, floor = 8, 0x100000000
	default:
		return uint64(first), nil
	}

	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		return 0, malformed("varint payload", err)
	}
	v := binary.LittleEndian.Uint64(buf[:])
	if canonical && v < floor {
		return 0, fmt.Errorf("%w: non-canonical varint 0x%02x for %d", model.ErrMalformedInput, first, v)
	}
	return v, nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, malformed("varint discriminator", err)
	}
	return b[0], nil
}

func malformed(field string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: read %s: %w", model.ErrMalformedInput, field, err)
}
