package gas

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPC answers eth_gasPrice with a canned hex value, echoing the caller's
// request id as the JSON-RPC spec requires.
func fakeRPC(t *testing.T, gasPriceHex string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_gasPrice", req.Method)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  gasPriceHex,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOracle_EstimateCost(t *testing.T) {
	// 100 gwei.
	srv := fakeRPC(t, "0x174876e800")
	defer srv.Close()

	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	defer client.Close()

	oracle := NewOracle(client, 500_000, slog.New(slog.DiscardHandler))

	cost, err := oracle.EstimateCost(context.Background())

	require.NoError(t, err)
	// 100e9 wei * 5e5 units = 5e16 wei = 0.05 native units.
	assert.InDelta(t, 0.05, cost, 1e-12)
}

func TestOracle_UnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := ethclient.Dial(srv.URL)
	require.NoError(t, err)
	defer client.Close()

	oracle := NewOracle(client, 500_000, slog.New(slog.DiscardHandler))

	_, err = oracle.EstimateCost(context.Background())

	assert.Error(t, err)
}
