// Package services provides business logic and orchestration services.
//
// This file decides whether a member's subscription payment is outstanding.
// The cadence is monthly: a payment is due one calendar month after the most
// recent payment, or from the start date when the member has never paid.
package services

import (
	"time"

	"dues/internal/core"
)

// DuenessChecker reports whether a member owes a payment at a reference instant.
type DuenessChecker interface {
	// NextDueDate returns the first calendar date on which a payment is due.
	NextDueDate(m core.Member) core.Date
	// IsDue returns true if NextDueDate is on or before the calendar date of ref.
	IsDue(m core.Member, ref time.Time) bool
}

// MonthlyChecker implements DuenessChecker for monthly subscriptions.
type MonthlyChecker struct{}

// NextDueDate is the start date for members who never paid, otherwise the date
// of the latest payment advanced by one month (clamped at month end).
func (MonthlyChecker) NextDueDate(m core.Member) core.Date {
	last, ok := m.LastPayment()
	if !ok {
		return m.StartDate
	}
	return last.Date.AddMonth()
}

// IsDue compares calendar dates; ref is reduced to its date in its own location.
func (c MonthlyChecker) IsDue(m core.Member, ref time.Time) bool {
	next := c.NextDueDate(m)
	return !next.After(core.DateOf(ref).Time)
}

// IsPaymentDue reports whether m has a monthly payment outstanding at ref.
func IsPaymentDue(m core.Member, ref time.Time) bool {
	return MonthlyChecker{}.IsDue(m, ref)
}

// NextDueDate returns the date from which m's next monthly payment is due.
func NextDueDate(m core.Member) core.Date {
	return MonthlyChecker{}.NextDueDate(m)
}
