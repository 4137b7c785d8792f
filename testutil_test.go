package main

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/service"
	"gorm.io/gorm"
)

var errNotImplemented = errors.New("not implemented in fake")

// fakeRepo satisfies repository.Repository with overridable behaviour per
// test. Unset methods fail loudly.
type fakeRepo struct {
	createBookingFn       func(model.CreateBookingRequest) (*model.Booking, error)
	getBookingFn          func(string) (*model.Booking, error)
	ensureBookableFn      func(userID, eventID, bundleID *string) error
	confirmCheckoutFn     func(model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error)
	recordFailedPaymentFn func(model.FailedPaymentRequest) error
	cancelBookingFn       func(model.CancelBookingRequest) (*model.CancelBookingOutcome, error)
	getEventFn            func(string) (*model.Event, error)
	getBundleFn           func(string) (*model.Bundle, []model.Event, error)
	availableCreditFn     func(string, time.Time) (float64, error)
	listPaymentsFn        func(model.PaymentFilter) ([]model.Payment, int, error)

	notifications []*model.Notification
}

func (f *fakeRepo) CreateUser(req model.CreateUserRequest) (*model.User, error) {
	return nil, errNotImplemented
}
func (f *fakeRepo) GetUserByEmail(email string) (*model.User, error) { return nil, errNotImplemented }
func (f *fakeRepo) GetUserByID(userID string) (*model.User, error)   { return nil, errNotImplemented }
func (f *fakeRepo) ValidatePassword(user *model.User, password string) bool { return false }

func (f *fakeRepo) CreateEvent(req model.CreateEventRequest) (*model.Event, error) {
	return nil, errNotImplemented
}
func (f *fakeRepo) GetEventByID(eventID string) (*model.Event, error) {
	if f.getEventFn != nil {
		return f.getEventFn(eventID)
	}
	return nil, errNotImplemented
}
func (f *fakeRepo) ListEvents(filter model.EventFilter) ([]model.Event, int, error) {
	return nil, 0, errNotImplemented
}
func (f *fakeRepo) UpdateEvent(req model.UpdateEventRequest) (*model.Event, error) {
	return nil, errNotImplemented
}
func (f *fakeRepo) DeleteEvent(eventID string) error { return errNotImplemented }

func (f *fakeRepo) CreateBundle(req model.CreateBundleRequest) (*model.Bundle, []model.Event, error) {
	return nil, nil, errNotImplemented
}
func (f *fakeRepo) GetBundleByID(bundleID string) (*model.Bundle, []model.Event, error) {
	if f.getBundleFn != nil {
		return f.getBundleFn(bundleID)
	}
	return nil, nil, errNotImplemented
}
func (f *fakeRepo) ListBundles(filter model.BundleFilter) ([]model.Bundle, int, error) {
	return nil, 0, errNotImplemented
}

func (f *fakeRepo) CreateBooking(req model.CreateBookingRequest) (*model.Booking, error) {
	if f.createBookingFn != nil {
		return f.createBookingFn(req)
	}
	return nil, errNotImplemented
}
func (f *fakeRepo) GetBookingByID(bookingID string) (*model.Booking, error) {
	if f.getBookingFn != nil {
		return f.getBookingFn(bookingID)
	}
	return nil, errNotImplemented
}
func (f *fakeRepo) ListBookings(filter model.BookingFilter) ([]model.Booking, int, error) {
	return nil, 0, errNotImplemented
}
func (f *fakeRepo) EnsureBookable(userID, eventID, bundleID *string) error {
	if f.ensureBookableFn != nil {
		return f.ensureBookableFn(userID, eventID, bundleID)
	}
	return nil
}
func (f *fakeRepo) ConfirmCheckout(req model.ConfirmCheckoutRequest) (*model.ConfirmCheckoutResult, error) {
	if f.confirmCheckoutFn != nil {
		return f.confirmCheckoutFn(req)
	}
	return nil, errNotImplemented
}
func (f *fakeRepo) RecordFailedPayment(req model.FailedPaymentRequest) error {
	if f.recordFailedPaymentFn != nil {
		return f.recordFailedPaymentFn(req)
	}
	return errNotImplemented
}
func (f *fakeRepo) CancelBooking(req model.CancelBookingRequest) (*model.CancelBookingOutcome, error) {
	if f.cancelBookingFn != nil {
		return f.cancelBookingFn(req)
	}
	return nil, errNotImplemented
}

func (f *fakeRepo) ListUserCredits(userID string) ([]model.EventCredit, error) {
	return nil, errNotImplemented
}
func (f *fakeRepo) AvailableCredit(userID string, now time.Time) (float64, error) {
	if f.availableCreditFn != nil {
		return f.availableCreditFn(userID, now)
	}
	return 0, nil
}
func (f *fakeRepo) ListPayments(filter model.PaymentFilter) ([]model.Payment, int, error) {
	if f.listPaymentsFn != nil {
		return f.listPaymentsFn(filter)
	}
	return nil, 0, errNotImplemented
}

func (f *fakeRepo) ListClients(filter model.ClientFilter) ([]model.Client, int, error) {
	return nil, 0, errNotImplemented
}

func (f *fakeRepo) CreateNotification(n *model.Notification) error {
	n.ID = "notif-fake"
	f.notifications = append(f.notifications, n)
	return nil
}
func (f *fakeRepo) MarkNotificationSent(notificationID string, sentAt time.Time) error { return nil }
func (f *fakeRepo) MarkNotificationFailed(notificationID string, attempts int, lastError string) error {
	return nil
}

func (f *fakeRepo) GetDB() *gorm.DB { return nil }

// fakeCache is an in-memory cache.CacheRepository
type fakeCache struct {
	statuses map[string]*model.BookingStatusUpdate
	events   map[string]*model.EventResponse
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		statuses: make(map[string]*model.BookingStatusUpdate),
		events:   make(map[string]*model.EventResponse),
	}
}

func (f *fakeCache) GetBookingStatus(bookingID string) (*model.BookingStatusUpdate, error) {
	return f.statuses[bookingID], nil
}
func (f *fakeCache) SetBookingStatus(bookingID string, status *model.BookingStatusUpdate, ttl time.Duration) error {
	f.statuses[bookingID] = status
	return nil
}
func (f *fakeCache) InvalidateBookingStatus(bookingID string) error {
	delete(f.statuses, bookingID)
	return nil
}
func (f *fakeCache) GetEvent(eventID string) (*model.EventResponse, error) {
	return f.events[eventID], nil
}
func (f *fakeCache) SetEvent(eventID string, event *model.EventResponse, ttl time.Duration) error {
	f.events[eventID] = event
	return nil
}
func (f *fakeCache) InvalidateEvent(eventID string) error {
	delete(f.events, eventID)
	return nil
}
func (f *fakeCache) Ping() error { return nil }

// fakeGateway satisfies service.PaymentGateway for synchronous paths; webhook
// tests use the real gateway so signature verification is exercised.
type fakeGateway struct {
	chargeFn  func(service.ChargeRequest) (*service.ChargeResult, error)
	sessionFn func(service.CheckoutSessionRequest) (*service.CheckoutSession, error)
	refunds   []float64
}

func (f *fakeGateway) CreateCheckoutSession(req service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	if f.sessionFn != nil {
		return f.sessionFn(req)
	}
	return nil, errNotImplemented
}
func (f *fakeGateway) ChargePaymentMethod(req service.ChargeRequest) (*service.ChargeResult, error) {
	if f.chargeFn != nil {
		return f.chargeFn(req)
	}
	return nil, errNotImplemented
}
func (f *fakeGateway) RefundPayment(paymentIntentID string, amount float64) error {
	f.refunds = append(f.refunds, amount)
	return nil
}
func (f *fakeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string, now time.Time) error {
	return nil
}
func (f *fakeGateway) ParseWebhookEvent(payload []byte) (*service.WebhookEvent, error) {
	return nil, errNotImplemented
}

// fakePublisher records queued notification messages instead of dialling Kafka
type fakePublisher struct {
	messages []kafka.Message
}

func (f *fakePublisher) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

// testEnv wires a Handler and router over the fakes
type testEnv struct {
	repo      *fakeRepo
	cache     *fakeCache
	publisher *fakePublisher
	jwt       *JWTService
	router    *gin.Engine
}

func newTestEnv(repo *fakeRepo, gateway service.PaymentGateway) *testEnv {
	gin.SetMode(gin.TestMode)

	cacheRepo := newFakeCache()
	publisher := &fakePublisher{}
	notifier := NewNotifier(repo, publisher, "hello@willowyoga.studio")
	jwtService := NewJWTService("testsecret")
	handler := NewHandler(repo, cacheRepo, gateway, notifier, jwtService)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/webhooks/payments", handler.PaymentWebhook)

	guest := api.Group("")
	guest.Use(OptionalAuthMiddleware(jwtService))
	guest.POST("/bookings", handler.CreateBooking)
	guest.POST("/checkout", handler.Checkout)
	guest.GET("/bookings/:bookingId/status", handler.GetBookingStatus)

	protected := api.Group("")
	protected.Use(AuthMiddleware(jwtService))
	protected.POST("/bookings/:bookingId/cancel", handler.CancelBooking)

	admin := api.Group("")
	admin.Use(AuthMiddleware(jwtService), AdminMiddleware())
	admin.GET("/admin/payments", handler.ListPayments)

	return &testEnv{
		repo:      repo,
		cache:     cacheRepo,
		publisher: publisher,
		jwt:       jwtService,
		router:    r,
	}
}

func memberToken(env *testEnv, userID string) string {
	token, _ := env.jwt.GenerateToken(&model.User{
		ID:    userID,
		Email: "anna@example.com",
		Role:  model.RoleMember,
	})
	return token
}

func adminToken(env *testEnv) string {
	token, _ := env.jwt.GenerateToken(&model.User{
		ID:    "admin-1",
		Email: "hello@willowyoga.studio",
		Role:  model.RoleAdmin,
	})
	return token
}
