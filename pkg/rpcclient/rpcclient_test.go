package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	knownKey = solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	owner    = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	data     = []byte{1, 1, 0, 0, 0, 0, 0, 0, 0x2a}
)

func accountJSON() string {
	return fmt.Sprintf(`{"lamports":1224960,"owner":%q,"data":[%q,"base64"],"executable":false,"rentEpoch":361}`,
		owner.String(), base64.StdEncoding.EncodeToString(data))
}

// newServer answers getAccountInfo and getMultipleAccounts for knownKey
// only.
func newServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Params) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		lookup := func(raw json.RawMessage) string {
			var key string
			if err := json.Unmarshal(raw, &key); err == nil && key == knownKey.String() {
				return accountJSON()
			}
			return "null"
		}

		var value string
		switch req.Method {
		case "getAccountInfo":
			value = lookup(req.Params[0])
		case "getMultipleAccounts":
			var keys []json.RawMessage
			if err := json.Unmarshal(req.Params[0], &keys); err != nil {
				http.Error(w, "bad params", http.StatusBadRequest)
				return
			}
			value = "["
			for i, k := range keys {
				if i > 0 {
					value += ","
				}
				value += lookup(k)
			}
			value += "]"
		default:
			t.Errorf("unexpected method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":{"context":{"slot":100},"value":%s}}`, req.ID, value)
	}))
}

func TestRpcClient_GetAccount(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	client := NewRpcClient(srv.URL)

	acct, err := client.GetAccount(context.Background(), knownKey)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, knownKey, acct.Key)
	assert.Equal(t, uint64(1224960), acct.Lamports)
	assert.Equal(t, owner, acct.Owner)
	assert.Equal(t, data, acct.Data)
	assert.Equal(t, uint64(361), acct.RentEpoch)
	assert.False(t, acct.Executable)
}

func TestRpcClient_GetAccount_NotFound(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	client := NewRpcClient(srv.URL)

	acct, err := client.GetAccount(context.Background(), owner)
	assert.NoError(t, err)
	assert.Nil(t, acct)
}

func TestRpcClient_GetAccounts(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()
	client := NewRpcClient(srv.URL)

	accts, err := client.GetAccounts(context.Background(), owner, knownKey)
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Nil(t, accts[0])
	require.NotNil(t, accts[1])
	assert.Equal(t, data, accts[1].Data)
}
