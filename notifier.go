package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
)

// messagePublisher is the slice of kafka.Writer the notifier needs
type messagePublisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Notifier records notifications and queues them for the delivery worker.
// Everything here is best-effort: a booking or cancellation never fails
// because an email could not be queued.
type Notifier struct {
	repo        repository.NotificationRepository
	kafkaWriter messagePublisher
	studioEmail string
}

func NewNotifier(repo repository.NotificationRepository, kafkaWriter messagePublisher, studioEmail string) *Notifier {
	return &Notifier{
		repo:        repo,
		kafkaWriter: kafkaWriter,
		studioEmail: studioEmail,
	}
}

// BookingConfirmed queues the paid-booking confirmation email
func (n *Notifier) BookingConfirmed(result *model.ConfirmCheckoutResult) {
	booking := result.Booking

	data := model.NotificationBookingData{
		BookingID: booking.ID,
		Name:      booking.ContactName,
		EventName: describeEvents(result.Events),
		Amount:    result.Payment.Amount,
	}
	if len(result.Events) > 0 {
		data.Location = result.Events[0].Location
		data.EventDate = model.EarliestEventDate(result.Events)
	}

	template := model.GenerateBookingConfirmationEmail(booking.ContactEmail, data)
	n.enqueue(model.NotificationBookingConfirmed, template)
}

// BookingCancelled queues the cancellation outcome email for the customer
func (n *Notifier) BookingCancelled(outcome *model.CancelBookingOutcome) {
	booking := outcome.Booking

	data := model.NotificationBookingData{
		BookingID:    booking.ID,
		Name:         booking.ContactName,
		EventName:    describeEvents(outcome.Events),
		RefundAmount: outcome.RefundAmount,
		CreditAmount: outcome.CreditAmount,
	}

	template := model.GenerateCancellationEmail(booking.ContactEmail, data)
	n.enqueue(model.NotificationBookingCancelled, template)
}

// BookingDeclined queues the decline notice for the studio inbox
func (n *Notifier) BookingDeclined(outcome *model.CancelBookingOutcome) {
	booking := outcome.Booking

	reason := ""
	if booking.DeclineReason != nil {
		reason = *booking.DeclineReason
	}

	data := model.NotificationBookingData{
		BookingID: booking.ID,
		Name:      booking.ContactName,
		EventName: describeEvents(outcome.Events),
		Reason:    reason,
	}

	template := model.GenerateDeclineNoticeEmail(n.studioEmail, data)
	n.enqueue(model.NotificationBookingDeclined, template)
}

// enqueue stores the notification record and publishes it to the worker topic
func (n *Notifier) enqueue(notificationType string, template *model.EmailTemplate) {
	notification := &model.Notification{
		Type:           notificationType,
		RecipientEmail: template.To,
		Subject:        template.Subject,
		Body:           template.Body,
		Status:         model.NotificationStatusQueued,
	}

	if err := n.repo.CreateNotification(notification); err != nil {
		log.Printf("Failed to store %s notification: %v", notificationType, err)
		return
	}

	message := model.NotificationMessage{
		NotificationID: notification.ID,
		Type:           notificationType,
		RecipientEmail: template.To,
		Subject:        template.Subject,
		Body:           template.Body,
		Timestamp:      time.Now(),
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to encode %s notification: %v", notificationType, err)
		return
	}

	err = n.kafkaWriter.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(notification.ID),
		Value: msgBytes,
	})
	if err != nil {
		log.Printf("Failed to publish %s notification: %v", notificationType, err)
	}
}

// describeEvents names the booked classes for email subjects and bodies
func describeEvents(events []model.Event) string {
	switch len(events) {
	case 0:
		return "your booking"
	case 1:
		return events[0].Name
	default:
		name := events[0].Name
		for i := 1; i < len(events); i++ {
			name += ", " + events[i].Name
		}
		return name
	}
}
