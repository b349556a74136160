package domain

import "strings"

// Request types and statuses of a check-in/check-out request.
const (
	RequestCheckIn  = "check-in"
	RequestCheckOut = "check-out"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Work statuses of an attendance day.
const (
	WorkPending   = "Pending"
	WorkCompleted = "Completed"
)

// RequestTypeOrDefault treats a missing type as a check-out request.
func RequestTypeOrDefault(requestType string) string {
	if requestType == "" {
		return RequestCheckOut
	}
	return requestType
}

// DisplayRequestType renders "Check-In" or "Check-Out".
func DisplayRequestType(requestType string) string {
	if requestType == RequestCheckIn {
		return "Check-In"
	}
	return "Check-Out"
}

// RequestVerb renders the type as a phrase, e.g. "check out".
func RequestVerb(requestType string) string {
	return strings.Replace(requestType, "-", " ", 1)
}
