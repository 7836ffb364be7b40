// Package keys signs sighashes with secp256k1 private keys.
package keys

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/hashing"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

var errInvalidSecret = errors.New("invalid private key secret")

// PrivateKey signs with deterministic (RFC 6979) low-S ECDSA.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// NewPrivateKey builds a key from a big-endian secret in [1, n).
func NewPrivateKey(secret []byte) (*PrivateKey, error) {
	if len(secret) == 0 || len(secret) > 32 {
		return nil, fmt.Errorf("%w: %d bytes", errInvalidSecret, len(secret))
	}
	s := new(big.Int).SetBytes(secret)
	if s.Sign() == 0 || s.Cmp(btcec.S256().N) >= 0 {
		return nil, fmt.Errorf("%w: out of curve order", errInvalidSecret)
	}
	key, _ := btcec.PrivKeyFromBytes(s.FillBytes(make([]byte, 32)))
	return &PrivateKey{key: key}, nil
}

// NewPrivateKeyFromInt is NewPrivateKey for a numeric secret.
func NewPrivateKeyFromInt(secret *big.Int) (*PrivateKey, error) {
	if secret == nil || secret.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive", errInvalidSecret)
	}
	return NewPrivateKey(secret.Bytes())
}

// GeneratePrivateKey returns a random key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// Sign returns the DER signature of the 32-byte sighash z.
func (k *PrivateKey) Sign(z *big.Int) ([]byte, error) {
	if z == nil || z.Sign() < 0 || z.BitLen() > 256 {
		return nil, fmt.Errorf("%w: sighash must fit 32 bytes", model.ErrEncodingRange)
	}
	sig := ecdsa.Sign(k.key, z.FillBytes(make([]byte, 32)))
	return sig.Serialize(), nil
}

// PublicKey is the compressed SEC encoding.
func (k *PrivateKey) PublicKey() []byte {
	return k.key.PubKey().SerializeCompressed()
}

// Hash160 hashes the compressed public key.
func (k *PrivateKey) Hash160() []byte {
	return hashing.Hash160(k.PublicKey())
}

// Address is the P2PKH address of the compressed public key.
func (k *PrivateKey) Address(network model.Network) (string, error) {
	return hashing.P2PKHAddress(k.Hash160(), network)
}

// BTCEC exposes the underlying key for interop with btcd signing helpers.
func (k *PrivateKey) BTCEC() *btcec.PrivateKey {
	return k.key
}
