package pkg

import (
	"github.com/gagliardetto/solana-go"
)

type Keypair struct {
	PrivKey solana.PrivateKey
	PubKey  solana.PublicKey
}

// NewKeyPair creates a Keypair from a private key.
func NewKeyPair(privateKey solana.PrivateKey) *Keypair {
	return &Keypair{PrivKey: privateKey, PubKey: privateKey.PublicKey()}
}

// Signer returns the key getter expected by solana.Transaction.Sign.
func (kp *Keypair) Signer() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if kp.PubKey.Equals(key) {
			return &kp.PrivKey
		}
		return nil
	}
}
