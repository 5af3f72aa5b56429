package pkg

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// EncodeTransactions converts signed transactions to their base64 wire form, keeping their order.
func EncodeTransactions(transactions []*solana.Transaction) ([]string, error) {
	encoded := make([]string, 0, len(transactions))
	for i, tx := range transactions {
		txData, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%d: error encoding transaction [%w]", i, err)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(txData))
	}
	return encoded, nil
}

// DecodeTransaction is the inverse of EncodeTransactions. Nothing on the send path
// calls it; it is kept for inspecting an encoded bundle, as the tests do.
func DecodeTransaction(b64 string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return solana.TransactionFromDecoder(bin.NewBinDecoder(data))
}
