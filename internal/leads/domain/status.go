// Package domain provides core business rules for the leads bounded context.
package domain

import "time"

// ExclusivityWindow is how long a direct lead stays exclusive to the provider
// it was sent to before it opens up to the category.
const ExclusivityWindow = 3 * time.Hour

// Status is the lifecycle state of a lead.
type Status string

const (
	// StatusDirect: the lead is exclusive to the provider whose service the
	// customer contacted.
	StatusDirect Status = "direct"
	// StatusOpportunity: the exclusivity window lapsed without a provider
	// reply; the lead is visible to every provider in the category.
	StatusOpportunity Status = "opportunity"
	// StatusResponded: a provider replied before the lead was converted.
	StatusResponded Status = "responded"
	// StatusConverted: the lead became a paid booking. Terminal and billed.
	StatusConverted Status = "converted"
)

// allowedTransitions encodes the forward-only lifecycle. A lead never moves
// back toward direct, and converted is terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusDirect: {
		StatusOpportunity: true,
		StatusResponded:   true,
		StatusConverted:   true,
	},
	StatusOpportunity: {
		StatusResponded: true,
		StatusConverted: true,
	},
	StatusResponded: {
		StatusConverted: true,
	},
	StatusConverted: {},
}

// IsValid reports whether s is a known lead status.
func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusConverted
}

// CanTransition reports whether a lead may move from one status to another.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

// CanRespond reports whether a provider reply may mark the lead responded.
func CanRespond(s Status) bool {
	return CanTransition(s, StatusResponded)
}

// IsExpired reports whether a direct lead's exclusivity window has lapsed.
// Only direct leads expire; every other status is unaffected by time.
func IsExpired(s Status, expiresAt, now time.Time) bool {
	return s == StatusDirect && !now.Before(expiresAt)
}
