// Package service composes the transaction and header primitives into batch operations used by
// the command line tools.
package service

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/transaction"
	"github.com/goodnatureofminers/blockinsight7000-txcore/pkg/workerpool"
	"go.uber.org/zap"
)

// TxReport is the outcome of checking one transaction. Err is set when the fee or the scripts
// could not be evaluated, which is distinct from an invalid transaction.
type TxReport struct {
	TxID     string
	Coinbase bool
	Fee      int64
	Valid    bool
	Err      error
}

// VerifyService checks a batch of transactions concurrently.
type VerifyService struct {
	verifier    TxVerifier
	prefetcher  Prefetcher
	network     model.Network
	workerCount int
	logger      *zap.Logger
}

// NewVerifyService builds a VerifyService. prefetcher may be nil.
func NewVerifyService(
	verifier TxVerifier,
	prefetcher Prefetcher,
	network model.Network,
	workerCount int,
	logger *zap.Logger,
) (*VerifyService, error) {
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &VerifyService{
		verifier:    verifier,
		prefetcher:  prefetcher,
		network:     network.OrDefault(),
		workerCount: workerCount,
		logger:      logger.With(zap.String("network", string(network.OrDefault()))),
	}, nil
}

// Run returns one report per transaction, in input order. It fails only when ctx is canceled.
func (s *VerifyService) Run(ctx context.Context, txs []*transaction.Tx) ([]TxReport, error) {
	if s.prefetcher != nil {
		if err := s.prefetcher.Prefetch(ctx, s.network, PreviousTxIDs(txs), s.workerCount); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("prefetch failed, resolving on demand", zap.Error(err))
		}
	}

	return workerpool.Map(ctx, s.workerCount, txs, func(ctx context.Context, tx *transaction.Tx) (TxReport, error) {
		return s.check(ctx, tx), nil
	})
}

func (s *VerifyService) check(ctx context.Context, tx *transaction.Tx) TxReport {
	report := TxReport{TxID: tx.ID(), Coinbase: tx.IsCoinbase()}
	if report.Coinbase {
		// Coinbase inputs spend nothing; there is no fee or script to check.
		report.Valid = true
		return report
	}

	fee, err := s.verifier.Fee(ctx, tx)
	if err != nil {
		report.Err = err
		s.logger.Warn("fee computation failed", zap.String("txid", report.TxID), zap.Error(err))
		return report
	}
	report.Fee = fee

	valid, err := s.verifier.Verify(ctx, tx)
	if err != nil {
		report.Err = err
		s.logger.Warn("verification failed", zap.String("txid", report.TxID), zap.Error(err))
		return report
	}
	report.Valid = valid
	s.logger.Debug("transaction checked",
		zap.String("txid", report.TxID),
		zap.Int64("fee", fee),
		zap.Bool("valid", valid),
	)
	return report
}

// PreviousTxIDs lists the outpoint transaction ids spent by the non-coinbase transactions.
func PreviousTxIDs(txs []*transaction.Tx) []string {
	var ids []string
	for _, tx := range txs {
		if tx.IsCoinbase() {
			continue
		}
		for _, in := range tx.Inputs {
			ids = append(ids, in.PrevTxID())
		}
	}
	return ids
}
