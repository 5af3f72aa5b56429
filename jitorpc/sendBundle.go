package jitorpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
	"github.com/scatkit/jitobundle/pkg"
)

// SendBundle submits the signed transactions as one atomic bundle and returns
// the block engine's bundle id. Acceptance does not mean the bundle landed.
func (cl *JitoClient) SendBundle(ctx context.Context, signedTxs []*solana.Transaction,
) (bundleID string, err error) {
	if len(signedTxs) == 0 {
		return "", ErrEmptyBundle
	}
	if len(signedTxs) > MaxBundleSize {
		return "", ErrBundleTooLarge
	}

	encodedTxs, err := pkg.EncodeTransactions(signedTxs)
	if err != nil {
		return "", err
	}

	payload := &jsonrpc.RPCPayload{
		JSONRPC: "2.0",
		Method:  "sendBundle",
		Params:  []interface{}{encodedTxs, map[string]string{"encoding": "base64"}},
	}

	resp, err := cl.jitoRPC.MakeCallWithHeader(ctx, cl.bundlesPath(), payload)
	if err != nil {
		return "", err
	}

	if err := resp.GetObject(&bundleID); err != nil {
		return "", fmt.Errorf("failed to unmarshal bundle id: %w", err)
	}
	if bundleID == "" {
		bundleID = resp.BundleID
	}
	if bundleID == "" {
		return "", ErrMissingBundleID
	}

	return bundleID, nil
}
