package jitorpc

import (
	"context"

	"github.com/scatkit/jitobundle/jitorpc/jsonrpc"
)

const (
	BundleStatusInvalid = "Invalid"
	BundleStatusPending = "Pending"
	BundleStatusFailed  = "Failed"
	BundleStatusLanded  = "Landed"
)

type InflightBundleStatus struct {
	BundleId   string `json:"bundle_id"`
	Status     string `json:"status"`
	LandedSlot uint64 `json:"landed_slot"`
}

type GetInflightBundleStatusesResponse struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value []InflightBundleStatus `json:"value"`
}

// GetInflightBundleStatuses reports bundles submitted within the last five minutes.
func (cl *JitoClient) GetInflightBundleStatuses(ctx context.Context, bundleIDs []string,
) (out *GetInflightBundleStatusesResponse, err error) {
	payload := &jsonrpc.RPCPayload{
		JSONRPC: "2.0",
		Method:  "getInflightBundleStatuses",
		Params: [][]string{
			bundleIDs,
		},
	}

	resp, err := cl.jitoRPC.MakeCall(ctx, cl.bundlesPath(), payload)
	if err != nil {
		return nil, err
	}

	err = resp.GetObject(&out)
	return
}

// Err maps a bundle status onto a rejection error. Pending and Landed are not errors.
func (s InflightBundleStatus) Err() error {
	switch s.Status {
	case BundleStatusPending, BundleStatusLanded:
		return nil
	case BundleStatusInvalid:
		return NewInvalidBundleError(s.BundleId)
	case BundleStatusFailed:
		return NewFailedBundleError(s.BundleId)
	default:
		return NewUnknownStatusError(s.BundleId, s.Status)
	}
}

// Find returns the status for bundleID, if the block engine reported one.
func (r *GetInflightBundleStatusesResponse) Find(bundleID string) (InflightBundleStatus, bool) {
	if r == nil {
		return InflightBundleStatus{}, false
	}
	for _, value := range r.Value {
		if value.BundleId == bundleID {
			return value, true
		}
	}
	return InflightBundleStatus{}, false
}
