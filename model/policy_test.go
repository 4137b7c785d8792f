package model

import (
	"testing"
	"time"
)

func TestCancellationTermsForNotice(t *testing.T) {
	cases := []struct {
		hours      float64
		wantRefund float64
		wantCredit float64
	}{
		{200, 100, 0},
		{168, 100, 0},
		{167.99, 75, 25},
		{100, 75, 25},
		{72, 75, 25},
		{71.99, 0, 100},
		{24, 0, 100},
		{23.99, 0, 0},
		{1, 0, 0},
		{-5, 0, 0},
	}

	for _, tc := range cases {
		terms := CancellationTermsForNotice(tc.hours)
		if terms.RefundPercent != tc.wantRefund || terms.CreditPercent != tc.wantCredit {
			t.Errorf("CancellationTermsForNotice(%v) = %+v, want refund %v credit %v",
				tc.hours, terms, tc.wantRefund, tc.wantCredit)
		}
	}
}

func TestCancellationAmounts(t *testing.T) {
	// 100 hours of notice on a £63.75 payment splits 75/25
	terms := CancellationTermsForNotice(100)

	if got := terms.RefundAmount(63.75); got != 47.8125 {
		t.Errorf("RefundAmount(63.75) = %v, want 47.8125", got)
	}
	if got := terms.CreditAmount(63.75); got != 15.9375 {
		t.Errorf("CreditAmount(63.75) = %v, want 15.9375", got)
	}
}

func TestCancellationTermsAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	terms := CancellationTermsAt(now.Add(8*24*time.Hour), now)
	if terms.RefundPercent != 100 {
		t.Errorf("8 days notice: refund %v, want 100", terms.RefundPercent)
	}

	terms = CancellationTermsAt(now.Add(12*time.Hour), now)
	if terms.RefundPercent != 0 || terms.CreditPercent != 0 {
		t.Errorf("12 hours notice: %+v, want nothing owed", terms)
	}
}

func TestEarliestEventDate(t *testing.T) {
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	events := []Event{
		{EventDate: first.Add(48 * time.Hour)},
		{EventDate: first},
		{EventDate: first.Add(24 * time.Hour)},
	}

	if got := EarliestEventDate(events); !got.Equal(first) {
		t.Errorf("EarliestEventDate = %v, want %v", got, first)
	}

	if got := EarliestEventDate(nil); !got.IsZero() {
		t.Errorf("EarliestEventDate(nil) = %v, want zero", got)
	}
}

func TestCreditRemainingAndExpiry(t *testing.T) {
	now := time.Now()
	credit := EventCredit{
		CreditAmount: 20,
		UsedAmount:   7.5,
		ExpiresAt:    now.Add(CreditValidity),
	}

	if got := credit.Remaining(); got != 12.5 {
		t.Errorf("Remaining = %v, want 12.5", got)
	}
	if credit.Expired(now) {
		t.Error("credit should not be expired before its expiry date")
	}
	if !credit.Expired(now.Add(CreditValidity + time.Hour)) {
		t.Error("credit should be expired past its expiry date")
	}
}
