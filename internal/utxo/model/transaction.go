package model

// RawTransaction is a serialized transaction as kept by persistent stores.
type RawTransaction struct {
	Coin    Coin
	Network Network
	TxID    string
	Raw     []byte
}
