package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{"open to in progress", RequestStatusOpen, RequestStatusInProgress, true},
		{"open to paused", RequestStatusOpen, RequestStatusPaused, true},
		{"open to fulfilled skips handshake", RequestStatusOpen, RequestStatusFulfilled, false},
		{"in progress to fulfilled", RequestStatusInProgress, RequestStatusFulfilled, true},
		{"in progress back to open", RequestStatusInProgress, RequestStatusOpen, false},
		{"paused resumes", RequestStatusPaused, RequestStatusOpen, true},
		{"fulfilled is terminal", RequestStatusFulfilled, RequestStatusOpen, false},
		{"expired is terminal", RequestStatusExpired, RequestStatusOpen, false},
		{"flagged restores to open", RequestStatusFlagged, RequestStatusOpen, true},
		{"flagged restores to in progress", RequestStatusFlagged, RequestStatusInProgress, true},
		{"flagged cannot jump to fulfilled", RequestStatusFlagged, RequestStatusFulfilled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionRequest(tt.from, tt.to))
		})
	}
}

func TestOfferTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OfferStatus
		to      OfferStatus
		allowed bool
	}{
		{"available to in progress", OfferStatusAvailable, OfferStatusInProgress, true},
		{"available to claimed skips handshake", OfferStatusAvailable, OfferStatusClaimed, false},
		{"in progress to claimed", OfferStatusInProgress, OfferStatusClaimed, true},
		{"claimed is terminal", OfferStatusClaimed, OfferStatusAvailable, false},
		{"flagged restores to available", OfferStatusFlagged, OfferStatusAvailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionOffer(tt.from, tt.to))
		})
	}
}

func TestFlaggedReachableFromNonTerminalOnly(t *testing.T) {
	for _, from := range []RequestStatus{RequestStatusOpen, RequestStatusInProgress, RequestStatusPaused} {
		assert.True(t, CanTransitionRequest(from, RequestStatusFlagged), "from %s", from)
	}
	for _, from := range []RequestStatus{RequestStatusFulfilled, RequestStatusExpired} {
		assert.False(t, CanTransitionRequest(from, RequestStatusFlagged), "from %s", from)
	}

	assert.True(t, CanTransitionOffer(OfferStatusAvailable, OfferStatusFlagged))
	assert.True(t, CanTransitionOffer(OfferStatusInProgress, OfferStatusFlagged))
	assert.False(t, CanTransitionOffer(OfferStatusClaimed, OfferStatusFlagged))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidRequestStatus(RequestStatusOpen))
	assert.False(t, ValidRequestStatus("BOGUS"))
	assert.True(t, ValidOfferStatus(OfferStatusClaimed))
	assert.False(t, ValidOfferStatus("BOGUS"))
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalRequestStatus(RequestStatusFulfilled))
	assert.True(t, IsTerminalRequestStatus(RequestStatusExpired))
	assert.False(t, IsTerminalRequestStatus(RequestStatusOpen))
	assert.True(t, IsTerminalOfferStatus(OfferStatusClaimed))
	assert.False(t, IsTerminalOfferStatus(OfferStatusAvailable))
}
