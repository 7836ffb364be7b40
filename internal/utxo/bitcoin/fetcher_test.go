package bitcoin

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

func genesisCoinbase(t *testing.T) (string, []byte) {
	t.Helper()
	msg := chaincfg.MainNetParams.GenesisBlock.Transactions[0]
	var buf bytes.Buffer
	if err := msg.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return msg.TxHash().String(), buf.Bytes()
}

func TestNodeFetcher_Fetch(t *testing.T) {
	txid, raw := genesisCoinbase(t)

	tests := []struct {
		name    string
		network model.Network
		txid    string
		setup   func(*MockRawTransactionClient)
		want    []byte
		wantErr bool
	}{
		{
			name:    "success",
			network: model.Mainnet,
			txid:    txid,
			setup: func(c *MockRawTransactionClient) {
				c.EXPECT().GetRawTransaction(gomock.Any()).
					DoAndReturn(func(h *chainhash.Hash) (*btcutil.Tx, error) {
						if h.String() != txid {
							return nil, fmt.Errorf("unexpected hash %s", h)
						}
						return btcutil.NewTx(chaincfg.MainNetParams.GenesisBlock.Transactions[0]), nil
					})
			},
			want: raw,
		},
		{
			name:    "rpc error",
			network: model.Mainnet,
			txid:    txid,
			setup: func(c *MockRawTransactionClient) {
				c.EXPECT().GetRawTransaction(gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantErr: true,
		},
		{
			name:    "network mismatch",
			network: model.Testnet,
			txid:    txid,
			setup:   func(*MockRawTransactionClient) {},
			wantErr: true,
		},
		{
			name:    "invalid txid",
			network: model.Mainnet,
			txid:    "xyz",
			setup:   func(*MockRawTransactionClient) {},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			t.Cleanup(ctrl.Finish)

			client := NewMockRawTransactionClient(ctrl)
			tt.setup(client)

			got, err := NewNodeFetcher(client, model.Mainnet).Fetch(context.Background(), tt.network, tt.txid)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Fatalf("Fetch() = %x, want %x", got, tt.want)
			}
		})
	}
}

func newTestRESTFetcher(base string, metrics HTTPMetrics) *RESTFetcher {
	f := NewRESTFetcher(RESTConfig{
		BaseURLs: map[model.Network]string{model.Mainnet: base + "/"},
		Retries:  3,
	}, metrics, nil)
	f.sleep = func(context.Context, time.Duration) error { return nil }
	return f
}

func TestRESTFetcher_Fetch(t *testing.T) {
	txid, raw := genesisCoinbase(t)

	tests := []struct {
		name      string
		responses []int
		body      string
		wantCalls int32
		wantErr   bool
		wantIs    error
	}{
		{name: "success", responses: []int{http.StatusOK}, body: hex.EncodeToString(raw) + "\n", wantCalls: 1},
		{name: "retries server errors", responses: []int{http.StatusBadGateway, http.StatusTooManyRequests, http.StatusOK}, body: hex.EncodeToString(raw), wantCalls: 3},
		{name: "gives up after retries", responses: []int{http.StatusInternalServerError}, wantCalls: 3, wantErr: true},
		{name: "not found is final", responses: []int{http.StatusNotFound}, wantCalls: 1, wantErr: true, wantIs: errNotFound},
		{name: "unexpected body", responses: []int{http.StatusOK}, body: "<html>", wantCalls: 1, wantErr: true, wantIs: model.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/rest/tx/"+txid+".hex" {
					http.Error(w, "bad path "+r.URL.Path, http.StatusBadRequest)
					return
				}
				n := calls.Add(1)
				status := tt.responses[min(int(n), len(tt.responses))-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			t.Cleanup(srv.Close)

			got, err := newTestRESTFetcher(srv.URL, nil).Fetch(context.Background(), model.Mainnet, txid)
			if calls.Load() != tt.wantCalls {
				t.Fatalf("server saw %d calls, want %d", calls.Load(), tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("Fetch() error = %v, want %v", err, tt.wantIs)
			}
			if tt.wantErr {
				return
			}
			if !bytes.Equal(got, raw) {
				t.Fatalf("Fetch() = %x, want %x", got, raw)
			}
		})
	}
}

func TestRESTFetcher_EsploraPathAndMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	txid, raw := genesisCoinbase(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tx/"+txid+"/hex" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(hex.EncodeToString(raw)))
	}))
	t.Cleanup(srv.Close)

	metrics := NewMockHTTPMetrics(ctrl)
	metrics.EXPECT().Observe("get_tx_hex", nil, gomock.AssignableToTypeOf(time.Time{}))

	f := NewRESTFetcher(RESTConfig{
		BaseURLs:   map[model.Network]string{model.Testnet: srv.URL + "/api"},
		PathFormat: EsploraPath,
		RPS:        100,
	}, metrics, nil)
	got, err := f.Fetch(context.Background(), model.Testnet, txid)
	if err != nil || !bytes.Equal(got, raw) {
		t.Fatalf("Fetch() = %x, %v", got, err)
	}

	if _, err := f.Fetch(context.Background(), model.Mainnet, txid); err == nil {
		t.Fatalf("Fetch() without a mainnet endpoint succeeded")
	}
}

func TestRESTFetcher_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	f := newTestRESTFetcher(srv.URL, nil)
	f.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	if _, err := f.Fetch(ctx, model.Mainnet, "00"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
}
