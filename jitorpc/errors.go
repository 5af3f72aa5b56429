package jitorpc

import (
	"errors"
	"fmt"
)

var (
	ErrNoTipAccounts   = errors.New("received [] tip accounts")
	ErrEmptyBundle     = errors.New("bundle has no transactions")
	ErrBundleTooLarge  = fmt.Errorf("bundle exceeds %d transactions", MaxBundleSize)
	ErrMissingBundleID = errors.New("block engine returned an empty bundle id")
)

type BundleRejectionError struct {
	BundleID string
	Message  string
}

func (e BundleRejectionError) Error() string {
	return e.Message
}

func NewInvalidBundleError(bundleID string) error {
	return BundleRejectionError{
		BundleID: bundleID,
		Message:  fmt.Sprintf("bundle %s is invalid or unknown to the block engine", bundleID),
	}
}

func NewFailedBundleError(bundleID string) error {
	return BundleRejectionError{
		BundleID: bundleID,
		Message:  fmt.Sprintf("bundle %s failed to land", bundleID),
	}
}

func NewUnknownStatusError(bundleID, status string) error {
	return BundleRejectionError{
		BundleID: bundleID,
		Message:  fmt.Sprintf("bundle %s has unknown status %q", bundleID, status),
	}
}
