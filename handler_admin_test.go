package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/willowyoga/studiobooking/model"
)

func getJSON(env *testEnv, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestListPaymentsRequiresAdmin(t *testing.T) {
	env := newTestEnv(&fakeRepo{}, &fakeGateway{})

	w := getJSON(env, "/api/admin/payments", memberToken(env, "u-1"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestListPayments(t *testing.T) {
	bookingID := "b-1"
	refundStatus := model.RefundStatusRequested
	repo := &fakeRepo{
		listPaymentsFn: func(filter model.PaymentFilter) ([]model.Payment, int, error) {
			if filter.BookingID != "b-1" {
				t.Errorf("BookingID filter = %q, want b-1", filter.BookingID)
			}
			return []model.Payment{{
				ID:            "pay-1",
				BookingID:     &bookingID,
				Amount:        63.75,
				Currency:      "gbp",
				PaymentMethod: "card",
				Status:        model.PaymentRecordSucceeded,
				CreditApplied: 10,
				RefundStatus:  &refundStatus,
				RefundAmount:  47.8125,
			}}, 1, nil
		},
	}
	env := newTestEnv(repo, &fakeGateway{})

	w := getJSON(env, "/api/admin/payments?booking_id=b-1", adminToken(env))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp model.PaymentListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(resp.Payments))
	}

	p := resp.Payments[0]
	if p.PaymentID != "pay-1" || p.Amount != 63.75 || p.CreditApplied != 10 {
		t.Errorf("payment = %+v", p)
	}
	if p.RefundStatus == nil || *p.RefundStatus != model.RefundStatusRequested || p.RefundAmount != 47.8125 {
		t.Errorf("refund fields = %+v", p)
	}
	if resp.Pagination.Total != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}
