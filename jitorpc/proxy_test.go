package jitorpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
)

func TestParseProxyURL(t *testing.T) {
	u, err := parseProxyURL("10.0.0.1:8080:alice:s3cret")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "10.0.0.1:8080", u.Host)
	assert.Equal(t, "alice", u.User.Username())
	pass, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "s3cret", pass)

	_, err = parseProxyURL("10.0.0.1:8080")
	assert.Error(t, err)
}

func TestWithProxy(t *testing.T) {
	preset := jsonrpc.NewClient(TestnetBlockEngine)

	opt, err := WithProxy("")
	require.NoError(t, err)
	cl := NewJito(TestnetBlockEngine, "", WithRPC(preset), opt)
	assert.Same(t, preset, cl.jitoRPC, "empty proxy leaves the transport alone")

	opt, err = WithProxy("10.0.0.1:8080:alice:s3cret")
	require.NoError(t, err)
	cl = NewJito(TestnetBlockEngine, "", WithRPC(preset), opt)
	assert.NotSame(t, preset, cl.jitoRPC)

	_, err = WithProxy("nope")
	assert.Error(t, err)
}
