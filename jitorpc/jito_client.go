package jitorpc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
)

const (
	TestnetBlockEngine = "https://dallas.testnet.block-engine.jito.wtf"
	MainnetBlockEngine = "https://mainnet.block-engine.jito.wtf"

	bundlesPath = "/api/v1/bundles"

	// MaxBundleSize is the block engine's cap on transactions per bundle.
	MaxBundleSize = 5
	// MinTipLamports is the smallest tip the block engine accepts.
	MinTipLamports = uint64(1000)
)

type JITORPC interface {
	MakeCall(ctx context.Context, path string, RPCPayload *jsonrpc.RPCPayload) (*jsonrpc.RPCResponse, error)
	MakeCallWithHeader(ctx context.Context, path string, RPCPayload *jsonrpc.RPCPayload) (*jsonrpc.RPCResponseWithHeader, error)
}

type JitoClient struct {
	jitoURL string
	jitoRPC JITORPC
	uuid    string
	rand    *rand.Rand
}

type Option func(cl *JitoClient)

// WithRand sets the source used to pick tip accounts.
func WithRand(r *rand.Rand) Option {
	return func(cl *JitoClient) {
		cl.rand = r
	}
}

func WithRPC(rpc JITORPC) Option {
	return func(cl *JitoClient) {
		cl.jitoRPC = rpc
	}
}

func NewJito(endpoint, uuid string, opts ...Option) *JitoClient {
	cl := &JitoClient{
		jitoURL: endpoint,
		jitoRPC: jsonrpc.NewClient(endpoint),
		uuid:    uuid,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (cl *JitoClient) URL() string {
	return cl.jitoURL
}

func (cl *JitoClient) bundlesPath() string {
	if cl.uuid != "" {
		return fmt.Sprintf("%s?uuid=%s", bundlesPath, cl.uuid)
	}
	return bundlesPath
}
