package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
)

// BundleIDHeader is set by the block engine on bundle-only submissions.
const BundleIDHeader = "x-bundle-id"

type RPCClient interface {
	MakeCall(ctx context.Context, path string, payload *RPCPayload) (*RPCResponse, error)
	MakeCallWithHeader(ctx context.Context, path string, payload *RPCPayload) (*RPCResponseWithHeader, error)
}

// HTTPClient is an abstraction for a HTTP client
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type rpcClient struct {
	endpoint   string
	httpClient HTTPClient
}

type RPCPayload struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      any         `json:"id"`
	JSONRPC string      `json:"jsonrpc"`
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      any             `json:"id"`
}

type RPCResponseWithHeader struct {
	RPCResponse
	BundleID string `json:"-"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var spewConf = spew.ConfigState{
	Indent:                " ",
	DisableMethods:        true,
	DisablePointerMethods: true,
	SortKeys:              true,
}

type HTTPError struct {
	Code int
	err  error
}

func (e *HTTPError) Error() string {
	return e.err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

// Error function is provided to be used as error object.
func (e *RPCError) Error() string {
	return spewConf.Sdump(e)
}

func NewClient(endpoint string) RPCClient {
	return NewClientWithHTTP(endpoint, &http.Client{})
}

func NewClientWithHTTP(endpoint string, httpClient HTTPClient) RPCClient {
	return &rpcClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}
}

func (client *rpcClient) MakeCall(ctx context.Context, path string, payload *RPCPayload,
) (*RPCResponse, error) {
	var rpcResponse *RPCResponse
	_, err := client.doCallWithCallbackOnHTTPResponse(ctx, path, payload,
		func(httpRequest *http.Request, httpResponse *http.Response) error {
			return decodeResponse(httpRequest, httpResponse, payload.Method, &rpcResponse)
		},
	)
	if err != nil {
		return nil, err
	}
	if rpcResponse.Error != nil {
		return rpcResponse, rpcResponse.Error
	}

	return rpcResponse, nil
}

func (client *rpcClient) MakeCallWithHeader(ctx context.Context, path string, payload *RPCPayload,
) (*RPCResponseWithHeader, error) {
	var rpcResponse *RPCResponse
	httpResp, err := client.doCallWithCallbackOnHTTPResponse(ctx, path, payload,
		func(httpRequest *http.Request, httpResponse *http.Response) error {
			return decodeResponse(httpRequest, httpResponse, payload.Method, &rpcResponse)
		},
	)
	if err != nil {
		return nil, err
	}

	out := &RPCResponseWithHeader{
		RPCResponse: *rpcResponse,
		BundleID:    httpResp.Header.Get(BundleIDHeader),
	}
	if rpcResponse.Error != nil {
		return out, rpcResponse.Error
	}

	return out, nil
}

func decodeResponse(httpRequest *http.Request, httpResponse *http.Response, method string, rpcResponse **RPCResponse) error {
	decoder := json.NewDecoder(httpResponse.Body)
	decoder.UseNumber()
	err := decoder.Decode(rpcResponse)
	// parsing error
	if err != nil {
		// if we have some http error, return it
		if httpResponse.StatusCode >= 400 {
			return &HTTPError{
				Code: httpResponse.StatusCode,
				err:  fmt.Errorf("rpc call %v() on %v status code: %v. could not decode body to rpc response: %w", method, httpRequest.URL.String(), httpResponse.StatusCode, err),
			}
		}
		return fmt.Errorf("rpc call %v() on %v status code: %v. could not decode body to rpc response: %w", method, httpRequest.URL.String(), httpResponse.StatusCode, err)
	}

	// response body empty
	if *rpcResponse == nil {
		if httpResponse.StatusCode >= 400 {
			return &HTTPError{
				Code: httpResponse.StatusCode,
				err:  fmt.Errorf("rpc call %v() on %v status code: %v. rpc response missing", method, httpRequest.URL.String(), httpResponse.StatusCode),
			}
		}
		return fmt.Errorf("rpc call %v() on %v status code: %v. rpc response missing", method, httpRequest.URL.String(), httpResponse.StatusCode)
	}

	if httpResponse.StatusCode >= 400 {
		err := fmt.Errorf("rpc call %v() on %v status code: %v", method, httpRequest.URL.String(), httpResponse.StatusCode)
		if (*rpcResponse).Error != nil {
			err = fmt.Errorf("%w: %w", err, (*rpcResponse).Error)
		}
		return &HTTPError{Code: httpResponse.StatusCode, err: err}
	}
	return nil
}

func (client *rpcClient) doCallWithCallbackOnHTTPResponse(
	ctx context.Context,
	path string,
	payload *RPCPayload,
	callback func(*http.Request, *http.Response) error,
) (*http.Response, error) {
	if payload == nil {
		return nil, errors.New("rpc payload is nil")
	}
	if payload.ID == nil {
		payload.ID = newID()
	}
	if payload.JSONRPC == "" {
		payload.JSONRPC = "2.0"
	}
	httpRequest, err := client.newRequest(ctx, path, payload)
	if err != nil {
		if httpRequest != nil {
			return nil, fmt.Errorf("rpc call %v() on %v: %w", payload.Method, httpRequest.URL.String(), err)
		}
		return nil, fmt.Errorf("rpc call %v(): %w", payload.Method, err)
	}
	httpResponse, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("rpc call %v() on %v: %w", payload.Method, httpRequest.URL.String(), err)
	}
	defer httpResponse.Body.Close()

	return httpResponse, callback(httpRequest, httpResponse)
}

func (client *rpcClient) newRequest(ctx context.Context, path string, req interface{}) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return request, err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	return request, nil
}

var integerID = new(atomic.Uint64)

func newID() any {
	return integerID.Add(1) // gives a unique id
}

func (rpcResponse *RPCResponse) GetObject(toType interface{}) error {
	if rpcResponse == nil {
		return errors.New("rpc response is nil")
	}
	rv := reflect.ValueOf(toType)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("expected a pointer got a value instead: %v", reflect.TypeOf(toType))
	}
	if rpcResponse.Result == nil {
		rpcResponse.Result = []byte(`null`)
	}

	return json.Unmarshal(rpcResponse.Result, toType)
}
