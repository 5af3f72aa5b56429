package bundle

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/scatkit/jitobundle/jitorpc"
	"github.com/scatkit/jitobundle/pkg"
)

var ErrEmptyBatch = errors.New("batch size must be at least 1")

// ExpiryReference bounds how long every transaction of a batch stays valid.
type ExpiryReference struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

type BlockhashGetter interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

func FetchExpiry(ctx context.Context, client BlockhashGetter, commitment rpc.CommitmentType) (ExpiryReference, error) {
	out, err := client.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return ExpiryReference{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return ExpiryReference{}, errors.New("latest blockhash response is empty")
	}
	return ExpiryReference{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

type Batch struct {
	Transactions []*solana.Transaction
	Expiry       ExpiryReference
}

// FirstSignature identifies the transaction the confirmation watcher follows.
func (b *Batch) FirstSignature() solana.Signature {
	if b == nil || len(b.Transactions) == 0 || len(b.Transactions[0].Signatures) == 0 {
		return solana.Signature{}
	}
	return b.Transactions[0].Signatures[0]
}

func MemoText(i int) string {
	return fmt.Sprintf("this is transaction %d", i)
}

// NewMemoInstruction writes text through the memo program with payer as its signer.
func NewMemoInstruction(text string, payer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(payer, true, true)},
		[]byte(text),
	)
}

// Build creates n signed transactions sharing one blockhash and fee payer.
// Transaction i carries the memo for i; only the last one also pays the tip.
func Build(payer *pkg.Keypair, expiry ExpiryReference, tipAccount solana.PublicKey, tipLamports uint64, n int,
) (*Batch, error) {
	if n < 1 {
		return nil, ErrEmptyBatch
	}

	txns := make([]*solana.Transaction, 0, n)
	for i := 0; i < n; i++ {
		instructions := []solana.Instruction{NewMemoInstruction(MemoText(i), payer.PubKey)}
		if i == n-1 {
			instructions = append(instructions, jitorpc.NewTipInstruction(tipLamports, payer.PubKey, tipAccount))
		}

		tx, err := solana.NewTransaction(
			instructions,
			expiry.Blockhash,
			solana.TransactionPayer(payer.PubKey),
		)
		if err != nil {
			return nil, fmt.Errorf("%d: failed to create transaction: %w", i, err)
		}

		if _, err = tx.Sign(payer.Signer()); err != nil {
			return nil, fmt.Errorf("%d: failed to sign transaction: %w", i, err)
		}

		txns = append(txns, tx)
	}

	return &Batch{Transactions: txns, Expiry: expiry}, nil
}
