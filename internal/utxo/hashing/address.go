package hashing

import (
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// P2PKHAddress renders a pay-to-public-key-hash address for h160.
func P2PKHAddress(h160 []byte, network model.Network) (string, error) {
	return address(network.Params().PubKeyHashAddrID, h160)
}

// P2SHAddress renders a pay-to-script-hash address for h160.
func P2SHAddress(h160 []byte, network model.Network) (string, error) {
	return address(network.Params().ScriptHashAddrID, h160)
}

// DecodeAddress splits a base58 address into its version byte and 20-byte hash.
func DecodeAddress(s string) (byte, []byte, error) {
	payload, err := DecodeBase58Checksum(s)
	if err != nil {
		return 0, nil, fmt.Errorf("decode address: %w", err)
	}
	return payload[0], payload[1:], nil
}

func address(version byte, h160 []byte) (string, error) {
	if len(h160) != 20 {
		return "", fmt.Errorf("%w: hash160 must be 20 bytes, got %d", model.ErrMalformedInput, len(h160))
	}
	payload := make([]byte, 0, AddressPayloadLen)
	payload = append(payload, version)
	payload = append(payload, h160...)
	return EncodeBase58Checksum(payload), nil
}
