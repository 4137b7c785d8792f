package model

import (
	"time"
)

// CreditValidity is how long a cancellation credit stays redeemable.
const CreditValidity = 365 * 24 * time.Hour

// CancellationTerms is the refund/credit split owed for a cancellation,
// expressed as percentages of the amount paid.
type CancellationTerms struct {
	RefundPercent float64 `json:"refund_percent"`
	CreditPercent float64 `json:"credit_percent"`
}

// CancellationTermsForNotice maps hours of notice before the event to the
// refund/credit tier:
//
//	>= 168h (7 days)  full refund
//	>= 72h  (3 days)  75% refund, 25% credit
//	>= 24h  (1 day)   no refund, full credit
//	<  24h            nothing
func CancellationTermsForNotice(hours float64) CancellationTerms {
	switch {
	case hours >= 168:
		return CancellationTerms{RefundPercent: 100, CreditPercent: 0}
	case hours >= 72:
		return CancellationTerms{RefundPercent: 75, CreditPercent: 25}
	case hours >= 24:
		return CancellationTerms{RefundPercent: 0, CreditPercent: 100}
	default:
		return CancellationTerms{RefundPercent: 0, CreditPercent: 0}
	}
}

// CancellationTermsAt computes the tier for a cancellation requested at now
// against an event starting at eventTime.
func CancellationTermsAt(eventTime, now time.Time) CancellationTerms {
	return CancellationTermsForNotice(eventTime.Sub(now).Hours())
}

// RefundAmount returns the refundable share of the paid amount.
func (t CancellationTerms) RefundAmount(paid float64) float64 {
	return paid * t.RefundPercent / 100
}

// CreditAmount returns the creditable share of the paid amount.
func (t CancellationTerms) CreditAmount(paid float64) float64 {
	return paid * t.CreditPercent / 100
}

// EarliestEventDate returns the earliest start among the events. For bundle
// cancellations the policy clock runs against the first member event.
func EarliestEventDate(events []Event) time.Time {
	if len(events) == 0 {
		return time.Time{}
	}

	earliest := events[0].EventDate
	for i := 1; i < len(events); i++ {
		if events[i].EventDate.Before(earliest) {
			earliest = events[i].EventDate
		}
	}
	return earliest
}
