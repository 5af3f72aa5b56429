package jitorpc

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
)

// WithProxy routes block engine requests through an authenticated HTTP proxy
// given as IP:PORT:USERNAME:PASSWORD. An empty string leaves the client unchanged.
func WithProxy(proxyStr string) (Option, error) {
	if proxyStr == "" {
		return func(*JitoClient) {}, nil
	}
	proxyURL, err := parseProxyURL(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy string: %w", err)
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
	return func(cl *JitoClient) {
		cl.jitoRPC = jsonrpc.NewClientWithHTTP(cl.jitoURL, httpClient)
	}, nil
}

func parseProxyURL(proxyStr string) (*url.URL, error) {
	host, port, username, password, err := parseProxyString(proxyStr)
	if err != nil {
		return nil, err
	}
	return &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(host, port),
		User:   url.UserPassword(username, password),
	}, nil
}

func parseProxyString(proxyStr string) (host string, port string, username string, password string, err error) {
	parts := strings.Split(proxyStr, ":")
	if len(parts) != 4 {
		return "", "", "", "", fmt.Errorf("invalid proxy format, expected IP:PORT:USERNAME:PASSWORD")
	}
	return parts[0], parts[1], parts[2], parts[3], nil
}
