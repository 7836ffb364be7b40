package hashing

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

const (
	checksumLen = 4
	// AddressPayloadLen is a version byte followed by a 20-byte hash.
	AddressPayloadLen = 21
)

// EncodeBase58 encodes b, mapping each leading zero byte to a leading '1'.
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecodeBase58 decodes s and rejects characters outside the alphabet.
func DecodeBase58(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) == 0 && s != "" {
		return nil, fmt.Errorf("%w: invalid base58 string %q", model.ErrMalformedInput, s)
	}
	return decoded, nil
}

// EncodeBase58Checksum appends the first 4 bytes of hash256(payload) and base58-encodes the result.
func EncodeBase58Checksum(payload []byte) string {
	buf := make([]byte, 0, len(payload)+checksumLen)
	buf = append(buf, payload...)
	buf = append(buf, Hash256(payload)[:checksumLen]...)
	return EncodeBase58(buf)
}

// DecodeBase58Checksum returns the 21-byte payload of a checksummed address string.
func DecodeBase58Checksum(s string) ([]byte, error) {
	combined, err := DecodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(combined) != AddressPayloadLen+checksumLen {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", model.ErrMalformedInput, len(combined), AddressPayloadLen+checksumLen)
	}
	payload, checksum := combined[:AddressPayloadLen], combined[AddressPayloadLen:]
	if want := Hash256(payload)[:checksumLen]; !bytes.Equal(checksum, want) {
		return nil, fmt.Errorf("%w: got %x, want %x", model.ErrChecksumMismatch, checksum, want)
	}
	return payload, nil
}
