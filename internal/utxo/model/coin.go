package model

import "github.com/btcsuite/btcd/chaincfg"

// Coin names the chain a component serves.
type Coin string

// Network selects mainnet or testnet encodings and resolver endpoints.
type Network string

var (
	BTC Coin = "BTC"
)

var (
	Testnet Network = "testnet"
	Mainnet Network = "mainnet"
)

// IsTestnet reports whether n selects testnet parameters.
func (n Network) IsTestnet() bool {
	return n == Testnet
}

// OrDefault returns Mainnet for an empty network.
func (n Network) OrDefault() Network {
	if n == "" {
		return Mainnet
	}
	return n
}

// Params returns the chain parameters carrying address versions and genesis data for n.
func (n Network) Params() *chaincfg.Params {
	if n.IsTestnet() {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}
