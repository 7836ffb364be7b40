package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/metrics"
	rpcclient2 "github.com/goodnatureofminers/blockinsight7000-txcore/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/service"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Network     model.Network `long:"network" env:"TXCORE_NETWORK" description:"network name" choice:"mainnet" choice:"testnet" default:"mainnet"`
	Header      string        `long:"header" description:"80-byte header hex; when empty the header is fetched by --height"`
	Height      int64         `long:"height" description:"block height to fetch from the node" default:"-1"`
	TxIDs       []string      `long:"txid" description:"transaction id in block order, repeat to check the merkle root"`
	RPCURL      string        `long:"rpc-url" env:"TXCORE_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string        `long:"rpc-user" env:"TXCORE_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string        `long:"rpc-password" env:"TXCORE_RPC_PASSWORD" description:"Bitcoin RPC password"`
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

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.Header == "" && cfg.Height < 0 {
		logger.Fatal("either --header or --height is required")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("inspect-header failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	var (
		report service.HeaderReport
		err    error
	)
	if cfg.Header != "" {
		raw, decodeErr := hex.DecodeString(strings.TrimSpace(cfg.Header))
		if decodeErr != nil {
			return fmt.Errorf("%w: header hex: %w", model.ErrMalformedInput, decodeErr)
		}
		report, err = service.NewHeaderService(nil, logger).Inspect(raw, cfg.TxIDs)
	} else {
		rpcClient, rpcErr := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
		if rpcErr != nil {
			return fmt.Errorf("init utxo rpc client: %w", rpcErr)
		}
		defer func() {
			rpcClient.Shutdown()
			rpcClient.WaitForShutdown()
		}()
		rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(model.BTC, cfg.Network))
		report, err = service.NewHeaderService(rpc, logger).InspectHeight(ctx, cfg.Height, cfg.TxIDs)
	}
	if err != nil {
		return err
	}

	fmt.Printf("id         %s\n", report.ID)
	fmt.Printf("version    %#08x (bip9=%t bip91=%t bip141=%t)\n", report.Version, report.BIP9, report.BIP91, report.BIP141)
	fmt.Printf("timestamp  %d\n", report.Timestamp)
	fmt.Printf("bits       %#08x\n", report.Bits)
	fmt.Printf("target     %064x\n", report.Target)
	fmt.Printf("difficulty %s\n", report.Difficulty.Text('f', 8))
	fmt.Printf("pow        %t\n", report.PoW)
	if report.MerkleValid != nil {
		fmt.Printf("merkle     %t\n", *report.MerkleValid)
	}
	if !report.PoW || (report.MerkleValid != nil && !*report.MerkleValid) {
		return errors.New("header failed validation")
	}
	return nil
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
