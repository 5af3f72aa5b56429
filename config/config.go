package config

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/spf13/viper"

	"github.com/scatkit/jitobundle/jitorpc"
	"github.com/scatkit/jitobundle/pkg"
)

const (
	KeyPrivateKey  = "PRIVATE_KEY"
	KeyRPCURL      = "SOLANA_RPC_URL"
	KeyWSURL       = "SOLANA_WS_URL"
	KeyJitoURL     = "JITO_URL"
	KeyJitoUUID    = "JITO_UUID"
	KeyJitoProxy   = "JITO_PROXY"
	KeyBundleSize  = "BUNDLE_SIZE"
	KeyTipLamports = "TIP_LAMPORTS"
	KeyCommitment  = "COMMITMENT"
)

var (
	ErrMissingPrivateKey = errors.New(KeyPrivateKey + " is not set")
	ErrInvalidPrivateKey = errors.New(KeyPrivateKey + " is not a valid base58 secret key")
	ErrInvalidConfig     = errors.New("invalid config")
)

type Config struct {
	Payer       *pkg.Keypair
	RPCURL      string
	WSURL       string
	JitoURL     string
	JitoUUID    string
	JitoProxy   string
	BundleSize  int
	TipLamports uint64
	Commitment  rpc.CommitmentType
}

// New returns a viper instance bound to the process environment with testnet defaults.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(KeyRPCURL, rpc.TestNet_RPC)
	v.SetDefault(KeyWSURL, rpc.TestNet_WS)
	v.SetDefault(KeyJitoURL, jitorpc.TestnetBlockEngine)
	v.SetDefault(KeyBundleSize, 3)
	v.SetDefault(KeyTipLamports, jitorpc.MinTipLamports)
	v.SetDefault(KeyCommitment, string(rpc.CommitmentConfirmed))
	return v
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return FromViper(New())
}

// FromViper validates the settings held by v. It performs no network I/O.
func FromViper(v *viper.Viper) (*Config, error) {
	payer, err := parsePrivateKey(v.GetString(KeyPrivateKey))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Payer:       payer,
		RPCURL:      v.GetString(KeyRPCURL),
		WSURL:       v.GetString(KeyWSURL),
		JitoURL:     v.GetString(KeyJitoURL),
		JitoUUID:    v.GetString(KeyJitoUUID),
		JitoProxy:   v.GetString(KeyJitoProxy),
		BundleSize:  v.GetInt(KeyBundleSize),
		TipLamports: v.GetUint64(KeyTipLamports),
		Commitment:  rpc.CommitmentType(strings.ToLower(v.GetString(KeyCommitment))),
	}

	if cfg.BundleSize < 1 || cfg.BundleSize > jitorpc.MaxBundleSize {
		return nil, fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalidConfig, KeyBundleSize, jitorpc.MaxBundleSize, cfg.BundleSize)
	}
	if cfg.TipLamports < jitorpc.MinTipLamports {
		return nil, fmt.Errorf("%w: %s must be at least %d", ErrInvalidConfig, KeyTipLamports, jitorpc.MinTipLamports)
	}
	switch cfg.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return nil, fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, KeyCommitment, cfg.Commitment)
	}

	return cfg, nil
}

func parsePrivateKey(secret string) (*pkg.Keypair, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingPrivateKey
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, ed25519.PrivateKeySize, len(raw))
	}
	// The public half must be the one derived from the seed, or every signature is invalid.
	if !bytes.Equal(ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), raw) {
		return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidPrivateKey)
	}

	privKey, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}

	return pkg.NewKeyPair(privKey), nil
}
