package bitcoin

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	// BitcoindRESTPath is the bitcoind REST interface layout.
	BitcoindRESTPath = "%s/rest/tx/%s.hex"
	// EsploraPath is the Esplora API layout.
	EsploraPath = "%s/tx/%s/hex"

	defaultRetries      = 3
	defaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 10 * time.Second
	maxResponseBytes    = 8 << 20
)

var errNotFound = errors.New("transaction not found")

// RESTConfig configures a RESTFetcher. Zero values select defaults.
type RESTConfig struct {
	BaseURLs     map[model.Network]string
	PathFormat   string
	RPS          int
	Retries      int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// RESTFetcher implements chain.Fetcher over an HTTP endpoint that returns raw transaction hex.
type RESTFetcher struct {
	client   *http.Client
	baseURLs map[model.Network]string
	path     string
	limiter  ratelimit.Limiter
	retries  int
	backoff  time.Duration
	sleep    func(context.Context, time.Duration) error
	metrics  HTTPMetrics
	logger   *zap.Logger
}

// NewRESTFetcher creates a fetcher. metrics may be nil.
func NewRESTFetcher(cfg RESTConfig, metrics HTTPMetrics, logger *zap.Logger) *RESTFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := cfg.PathFormat
	if path == "" {
		path = BitcoindRESTPath
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limiter = ratelimit.New(cfg.RPS)
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURLs := make(map[model.Network]string, len(cfg.BaseURLs))
	for network, base := range cfg.BaseURLs {
		baseURLs[network] = strings.TrimRight(base, "/")
	}
	return &RESTFetcher{
		client:   &http.Client{Timeout: timeout},
		baseURLs: baseURLs,
		path:     path,
		limiter:  limiter,
		retries:  retries,
		backoff:  backoff,
		sleep:    clock.SleepWithContext,
		metrics:  metrics,
		logger:   logger.Named("rest_fetcher"),
	}
}

// Fetch downloads and hex-decodes the transaction. Server errors and rate limiting are retried
// with a linear backoff; a missing transaction is not.
func (f *RESTFetcher) Fetch(ctx context.Context, network model.Network, txid string) ([]byte, error) {
	base, ok := f.baseURLs[network]
	if !ok || base == "" {
		return nil, fmt.Errorf("no endpoint configured for %s", network)
	}
	url := fmt.Sprintf(f.path, base, txid)

	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		raw, retry, err := f.fetchOnce(ctx, url)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retry || attempt == f.retries {
			break
		}
		f.logger.Warn("fetch failed, retrying",
			zap.String("txid", txid),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err := f.sleep(ctx, clock.LinearBackoff(f.backoff, attempt, maxRetryBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", txid, lastErr)
}

func (f *RESTFetcher) fetchOnce(ctx context.Context, url string) (raw []byte, retry bool, err error) {
	f.limiter.Take()
	started := time.Now()
	defer func() {
		if f.metrics != nil {
			f.metrics.Observe("get_tx_hex", err, started)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err = hex.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, false, fmt.Errorf("%w: unexpected response: %w", model.ErrMalformedInput, err)
	}
	return raw, false, nil
}
