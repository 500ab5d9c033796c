// Package models contains data structures for the application's domain models.
package models

// ItemType distinguishes the two listing kinds referenced by threads and flags.
type ItemType string

const (
	ItemTypeRequest ItemType = "REQUEST"
	ItemTypeOffer   ItemType = "OFFER"
)

// RequestStatus is the lifecycle status of a meal request.
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusFulfilled  RequestStatus = "FULFILLED"
	RequestStatusPaused     RequestStatus = "PAUSED"
	RequestStatusExpired    RequestStatus = "EXPIRED"
	RequestStatusFlagged    RequestStatus = "FLAGGED"
)

// OfferStatus is the lifecycle status of a meal offer.
type OfferStatus string

const (
	OfferStatusAvailable  OfferStatus = "AVAILABLE"
	OfferStatusInProgress OfferStatus = "IN_PROGRESS"
	OfferStatusClaimed    OfferStatus = "CLAIMED"
	OfferStatusFlagged    OfferStatus = "FLAGGED"
)

// requestTransitions is the closed transition table for requests.
// FLAGGED is reachable from every non-terminal state; leaving FLAGGED is
// only done by admin dismissal, which restores the snapshotted status.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusOpen:       {RequestStatusInProgress, RequestStatusPaused, RequestStatusExpired, RequestStatusFlagged},
	RequestStatusInProgress: {RequestStatusFulfilled, RequestStatusFlagged},
	RequestStatusPaused:     {RequestStatusOpen, RequestStatusExpired, RequestStatusFlagged},
	RequestStatusFlagged:    {RequestStatusOpen, RequestStatusInProgress, RequestStatusPaused},
	RequestStatusFulfilled:  {},
	RequestStatusExpired:    {},
}

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusAvailable:  {OfferStatusInProgress, OfferStatusFlagged},
	OfferStatusInProgress: {OfferStatusClaimed, OfferStatusFlagged},
	OfferStatusFlagged:    {OfferStatusAvailable, OfferStatusInProgress},
	OfferStatusClaimed:    {},
}

// ValidRequestStatus reports whether s is a member of the request enum.
func ValidRequestStatus(s RequestStatus) bool {
	_, ok := requestTransitions[s]
	return ok
}

// ValidOfferStatus reports whether s is a member of the offer enum.
func ValidOfferStatus(s OfferStatus) bool {
	_, ok := offerTransitions[s]
	return ok
}

// CanTransitionRequest reports whether a request may move from one status to another.
func CanTransitionRequest(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionOffer reports whether an offer may move from one status to another.
func CanTransitionOffer(from, to OfferStatus) bool {
	for _, next := range offerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalRequestStatus reports whether no further transitions exist.
func IsTerminalRequestStatus(s RequestStatus) bool {
	return len(requestTransitions[s]) == 0
}

// IsTerminalOfferStatus reports whether no further transitions exist.
func IsTerminalOfferStatus(s OfferStatus) bool {
	return len(offerTransitions[s]) == 0
}
