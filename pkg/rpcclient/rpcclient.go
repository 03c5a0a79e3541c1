// Package rpcclient fetches live accounts from a Solana JSON-RPC endpoint
// so their layouts can be inspected offline.
package rpcclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/QuarksBlueFoot/jiminy/pkg/accounts"
)

type RpcClient struct {
	client *rpc.Client
}

func NewRpcClient(endpoint string) *RpcClient {
	client := rpc.New(endpoint)
	return &RpcClient{client: client}
}

// GetAccount returns the account at key, or nil if it does not exist.
func (fetcher *RpcClient) GetAccount(ctx context.Context, key solana.PublicKey) (*accounts.Account, error) {
	res, err := fetcher.client.GetAccountInfo(ctx, key)
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", key, err)
	}
	return toAccount(key, res.Value), nil
}

// GetAccounts fetches keys in one request. Missing accounts are nil in the
// returned slice.
func (fetcher *RpcClient) GetAccounts(ctx context.Context, keys ...solana.PublicKey) ([]*accounts.Account, error) {
	res, err := fetcher.client.GetMultipleAccounts(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("getMultipleAccounts: %w", err)
	}
	if len(res.Value) != len(keys) {
		return nil, fmt.Errorf("getMultipleAccounts: %d results for %d keys", len(res.Value), len(keys))
	}
	out := make([]*accounts.Account, len(keys))
	for i, v := range res.Value {
		if v != nil {
			out[i] = toAccount(keys[i], v)
		}
	}
	return out, nil
}

func toAccount(key solana.PublicKey, v *rpc.Account) *accounts.Account {
	acct := &accounts.Account{
		Key:        key,
		Lamports:   v.Lamports,
		Owner:      v.Owner,
		Executable: v.Executable,
	}
	if v.Data != nil {
		acct.Data = v.Data.GetBinary()
	}
	if v.RentEpoch != nil && v.RentEpoch.IsUint64() {
		acct.RentEpoch = v.RentEpoch.Uint64()
	}
	return acct
}
