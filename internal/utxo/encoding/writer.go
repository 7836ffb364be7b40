package encoding

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates wire fields. Writes to the underlying buffer cannot fail.
type Writer struct {
	buf bytes.Buffer
}

// Uint32 appends a 4-byte little-endian integer.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Uint64 appends an 8-byte little-endian integer.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// Bytes appends raw bytes.
func (w *Writer) Bytes(b []byte) {
	w.buf.Write(b)
}

// Byte appends one byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Hash appends a display-order hash in wire order.
func (w *Writer) Hash(h [32]byte) {
	for i := 31; i >= 0; i-- {
		w.buf.WriteByte(h[i])
	}
}

// VarInt appends the minimal varint encoding of v.
func (w *Writer) VarInt(v uint64) {
	w.buf.Write(EncodeVarInt(v))
}

// VarBytes appends a varint length prefix and b.
func (w *Writer) VarBytes(b []byte) {
	w.VarInt(uint64(len(b)))
	w.buf.Write(b)
}

// Result returns the accumulated bytes.
func (w *Writer) Result() []byte {
	return w.buf.Bytes()
}
