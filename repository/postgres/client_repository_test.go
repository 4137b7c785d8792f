package postgres

import (
	"testing"

	"github.com/willowyoga/studiobooking/model"
)

func TestClientIntakePrefersBookingContact(t *testing.T) {
	booking := &model.Booking{
		ContactName:  "Anna",
		ContactEmail: "anna@example.com",
		ContactPhone: "07700900000",
	}

	// Hosted-checkout callbacks only echo the customer email; the details
	// captured at booking time must survive the confirmation upsert.
	got := clientIntake(booking, model.IntakeDetails{Email: "anna@example.com"})

	if got.Name != "Anna" {
		t.Errorf("Name = %q, want booking contact kept", got.Name)
	}
	if got.Phone != "07700900000" {
		t.Errorf("Phone = %q, want booking contact kept", got.Phone)
	}
	if got.Email != "anna@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestClientIntakeFillsGapsFromPayload(t *testing.T) {
	booking := &model.Booking{ContactName: "Anna"}

	got := clientIntake(booking, model.IntakeDetails{
		Name:  "Someone Else",
		Email: "anna@example.com",
		Phone: "07700900001",
	})

	if got.Name != "Anna" {
		t.Errorf("Name = %q, want booking contact kept over payload", got.Name)
	}
	if got.Email != "anna@example.com" || got.Phone != "07700900001" {
		t.Errorf("intake = %+v, want payload filling missing fields", got)
	}
}
