package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/metrics"
	rpcclient2 "github.com/goodnatureofminers/blockinsight7000-txcore/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/bitcoin"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/chain"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/interpreter"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/service"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/transaction"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	Network     model.Network `long:"network" env:"TXCORE_NETWORK" description:"network name" choice:"mainnet" choice:"testnet" default:"mainnet"`
	Source      string        `long:"source" env:"TXCORE_SOURCE" description:"where previous transactions are fetched from" choice:"rpc" choice:"rest" default:"rpc"`
	RPCURL      string        `long:"rpc-url" env:"TXCORE_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string        `long:"rpc-user" env:"TXCORE_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string        `long:"rpc-password" env:"TXCORE_RPC_PASSWORD" description:"Bitcoin RPC password"`
	RESTMainnet string        `long:"rest-mainnet-url" env:"TXCORE_REST_MAINNET_URL" description:"mainnet REST base URL" default:"http://127.0.0.1:8332"`
	RESTTestnet string        `long:"rest-testnet-url" env:"TXCORE_REST_TESTNET_URL" description:"testnet REST base URL" default:"http://127.0.0.1:18332"`
	RESTLayout  string        `long:"rest-layout" env:"TXCORE_REST_LAYOUT" description:"REST path layout" choice:"bitcoind" choice:"esplora" default:"bitcoind"`
	RESTRPS     int           `long:"rest-rps" env:"TXCORE_REST_RPS" description:"REST requests per second, 0 for unlimited" default:"0"`
	RESTRetries int           `long:"rest-retries" env:"TXCORE_REST_RETRIES" description:"REST attempts per transaction" default:"3"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"TXCORE_HTTP_TIMEOUT" description:"HTTP timeout for REST requests" default:"30s"`
	CacheFile   string        `long:"cache-file" env:"TXCORE_CACHE_FILE" description:"JSON file caching fetched transactions"`
	LevelDBPath string        `long:"leveldb-path" env:"TXCORE_LEVELDB_PATH" description:"LevelDB directory caching fetched transactions, overrides --cache-file"`
	Clickhouse  string        `long:"clickhouse-dsn" env:"TXCORE_CLICKHOUSE_DSN" description:"ClickHouse DSN storing fetched transactions, overrides --leveldb-path and --cache-file"`
	TxFile      string        `long:"tx-file" env:"TXCORE_TX_FILE" description:"file with one transaction hex per line"`
	Workers     int           `long:"workers" env:"TXCORE_WORKERS" description:"concurrent verifications" default:"8"`
	MetricsAddr string        `long:"metrics-addr" env:"TXCORE_METRICS_ADDR" description:"address for metrics server, empty to disable"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	args, err := flags.ParseArgs(&cfg, os.Args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, args[1:], logger); err != nil {
		logger.Fatal("verify-tx failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, args []string, logger *zap.Logger) error {
	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, logger)
	}

	hexes, err := readTransactions(cfg.TxFile, args)
	if err != nil {
		return err
	}
	if len(hexes) == 0 {
		return errors.New("no transactions given, pass hex arguments or --tx-file")
	}
	txs := make([]*transaction.Tx, 0, len(hexes))
	for i, s := range hexes {
		tx, err := transaction.ParseHex(s, cfg.Network)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}

	fetcher, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	var store chain.Store
	var fileStore *bitcoin.FileStore
	var repo *clickhouse.Repository
	switch {
	case cfg.Clickhouse != "":
		repo, err = clickhouse.NewRepository(cfg.Clickhouse, model.BTC, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("close clickhouse repository", zap.Error(err))
			}
		}()
		store = repo
	case cfg.LevelDBPath != "":
		levelStore, err := bitcoin.OpenLevelDBStore(ctx, cfg.LevelDBPath, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := levelStore.Close(); err != nil {
				logger.Error("close leveldb store", zap.Error(err))
			}
		}()
		if ids, err := levelStore.TxIDs(cfg.Network); err == nil {
			logger.Info("leveldb store opened", zap.Int("transactions", len(ids)))
		}
		store = levelStore
	case cfg.CacheFile != "":
		fileStore, err = bitcoin.OpenFileStore(cfg.CacheFile, cfg.Network)
		if err != nil {
			return err
		}
		store = fileStore
	}

	resolver := chain.NewTransactionResolver(
		fetcher,
		store,
		metrics.NewTxResolver(model.BTC, cfg.Network),
		logger,
	)
	if fileStore != nil {
		if err := resolver.Load(cfg.Network, fileStore.Entries()); err != nil {
			logger.Warn("cache file holds unusable entries", zap.Error(err))
		}
		defer func() {
			fileStore.Merge(resolver.Snapshot(cfg.Network))
			if err := fileStore.Flush(); err != nil {
				logger.Error("flush cache file", zap.Error(err))
			}
		}()
	}
	if repo != nil {
		stored, err := repo.RawTransactions(ctx, cfg.Network, service.PreviousTxIDs(txs))
		if err != nil {
			logger.Warn("bulk load from clickhouse failed", zap.Error(err))
		} else if err := resolver.Load(cfg.Network, hexEntries(stored)); err != nil {
			logger.Warn("clickhouse holds unusable entries", zap.Error(err))
		}
	}
	for _, tx := range txs {
		resolver.Seed(tx)
	}

	verifier := transaction.NewVerifier(
		resolver,
		interpreter.New(logger),
		logger,
		metrics.NewVerifier(model.BTC, cfg.Network),
	)
	svc, err := service.NewVerifyService(verifier, resolver, cfg.Network, cfg.Workers, logger)
	if err != nil {
		return err
	}

	reports, err := svc.Run(ctx, txs)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range reports {
		switch {
		case r.Err != nil:
			invalid++
			fmt.Printf("%s error %v\n", r.TxID, r.Err)
		case r.Coinbase:
			fmt.Printf("%s coinbase\n", r.TxID)
		default:
			if !r.Valid {
				invalid++
			}
			fmt.Printf("%s fee=%d valid=%t\n", r.TxID, r.Fee, r.Valid)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d transactions failed verification", invalid, len(reports))
	}
	return nil
}

func newFetcher(cfg config, logger *zap.Logger) (chain.Fetcher, func(), error) {
	if cfg.Source == "rest" {
		layout := bitcoin.BitcoindRESTPath
		if cfg.RESTLayout == "esplora" {
			layout = bitcoin.EsploraPath
		}
		fetcher := bitcoin.NewRESTFetcher(bitcoin.RESTConfig{
			BaseURLs: map[model.Network]string{
				model.Mainnet: cfg.RESTMainnet,
				model.Testnet: cfg.RESTTestnet,
			},
			PathFormat: layout,
			RPS:        cfg.RESTRPS,
			Retries:    cfg.RESTRetries,
			Timeout:    cfg.HTTPTimeout,
		}, metrics.NewHTTPClient(model.BTC, cfg.Network), logger)
		return fetcher, func() {}, nil
	}

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("init utxo rpc client: %w", err)
	}
	rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(model.BTC, cfg.Network))
	return bitcoin.NewNodeFetcher(rpc, cfg.Network), func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}, nil
}

func hexEntries(raw map[string][]byte) map[string]string {
	entries := make(map[string]string, len(raw))
	for txid, b := range raw {
		entries[txid] = hex.EncodeToString(b)
	}
	return entries
}

func readTransactions(path string, args []string) ([]string, error) {
	hexes := append([]string(nil), args...)
	if path == "" {
		return hexes, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tx file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			hexes = append(hexes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tx file: %w", err)
	}
	return hexes, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	cfg := &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	return rpcclient.New(cfg, nil)
}
