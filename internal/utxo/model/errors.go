package model

import (
	"errors"

	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/safe"
)

var (
	// ErrMalformedInput marks truncated streams, bad varints and unexpected marker/flag bytes.
	ErrMalformedInput = errors.New("malformed input")
	// ErrChecksumMismatch marks a base58 payload whose trailing checksum does not verify.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrEncodingRange marks an integer too large for its target representation.
	ErrEncodingRange = safe.ErrOutOfRange
	// ErrResolution marks a previous transaction that could not be found or did not match its id.
	ErrResolution = errors.New("previous transaction resolution failed")
	// ErrInputIndex marks an input index outside the transaction's inputs.
	ErrInputIndex = errors.New("input index out of range")
	// ErrNotCoinbase is returned by coinbase-only queries on regular transactions.
	ErrNotCoinbase = errors.New("transaction is not a coinbase")
)
