package jitorpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
)

func (cl *JitoClient) GetTipAccounts(ctx context.Context) ([]solana.PublicKey, error) {
	payload := &jsonrpc.RPCPayload{
		Method:  "getTipAccounts",
		JSONRPC: "2.0",
		Params:  []interface{}{},
	}

	resp, err := cl.jitoRPC.MakeCall(ctx, cl.bundlesPath(), payload)
	if err != nil {
		return nil, err
	}

	var tipAccounts []string
	if err := resp.GetObject(&tipAccounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tip accounts: %w", err)
	}

	if len(tipAccounts) == 0 {
		return nil, ErrNoTipAccounts
	}

	out := make([]solana.PublicKey, 0, len(tipAccounts))
	for _, account := range tipAccounts {
		key, err := solana.PublicKeyFromBase58(account)
		if err != nil {
			return nil, fmt.Errorf("invalid tip account %q: %w", account, err)
		}
		out = append(out, key)
	}

	return out, nil
}

type TipAccount struct {
	Address solana.PublicKey `json:"address"`
}

func (cl *JitoClient) GetRandomTipAccount(ctx context.Context) (*TipAccount, error) {
	tipAccounts, err := cl.GetTipAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return &TipAccount{Address: cl.pickTipAccount(tipAccounts)}, nil
}

func (cl *JitoClient) pickTipAccount(tipAccounts []solana.PublicKey) solana.PublicKey {
	return tipAccounts[cl.rand.Intn(len(tipAccounts))]
}

// NewTipInstruction transfers tipAmount lamports from the fee payer to a tip account.
func NewTipInstruction(tipAmount uint64, fromWallet solana.PublicKey, tipAccount solana.PublicKey) solana.Instruction {
	return system.NewTransferInstruction(tipAmount, fromWallet, tipAccount).Build()
}
