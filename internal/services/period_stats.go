package services

import (
	"time"

	"dues/internal/core"
)

// PeriodStats summarizes expected and collected dues for one calendar month.
type PeriodStats struct {
	Year      int
	Month     time.Month
	Expected  core.Money // sum of active subscriptions
	Collected core.Money // first in-period payment of each active member
	Pending   core.Money // subscriptions of active members with no in-period payment
	// Variance is the credited payments minus the subscriptions they settle.
	// Expected + Variance == Collected + Pending always holds.
	Variance core.Money
	Members  int // active members counted
	Paid     int // active members with an in-period payment
}

// ComputePeriodStats aggregates active members for the given month and year.
// Only the first payment in history order that falls in the period is credited;
// later payments in the same period are ignored.
func ComputePeriodStats(members []core.Member, month time.Month, year int) PeriodStats {
	stats := PeriodStats{Year: year, Month: month}

	for _, m := range members {
		if !m.IsActive {
			continue
		}
		stats.Members++
		stats.Expected = stats.Expected.Add(m.SubscriptionAmount)

		payment, ok := firstPaymentInPeriod(m.PaymentHistory, month, year)
		if !ok {
			stats.Pending = stats.Pending.Add(m.SubscriptionAmount)
			continue
		}
		stats.Paid++
		stats.Collected = stats.Collected.Add(payment.Amount)
		stats.Variance = stats.Variance.Add(payment.Amount.Sub(m.SubscriptionAmount))
	}

	return stats
}

func firstPaymentInPeriod(history []core.Payment, month time.Month, year int) (core.Payment, bool) {
	for _, p := range history {
		if p.Date.InPeriod(month, year) {
			return p, true
		}
	}
	return core.Payment{}, false
}

// Balanced reports whether Expected equals Collected plus Pending, which is
// the case when every credited payment matches its subscription.
func (s PeriodStats) Balanced() bool {
	return s.Expected.Cents == s.Collected.Cents+s.Pending.Cents
}
