package transaction

import (
	"context"
	"math/big"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/script"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Resolver returns the transaction with the given id. Failures wrap model.ErrResolution.
	Resolver interface {
		Resolve(ctx context.Context, network model.Network, txid string) (*Tx, error)
	}
	// Evaluator executes the combined unlocking and locking commands against sighash z.
	Evaluator interface {
		Evaluate(cmds []script.Command, z *big.Int, witness script.Witness) bool
	}
	// Signer signs a sighash and exposes the matching SEC public key.
	Signer interface {
		Sign(z *big.Int) ([]byte, error)
		PublicKey() []byte
	}
	VerifierMetrics interface {
		ObserveVerify(operation string, valid bool, err error, started time.Time)
	}
)
