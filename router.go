package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"github.com/willowyoga/studiobooking/cache/redis"
	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/repository/postgres"
	"github.com/willowyoga/studiobooking/service/stripe"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	// Initialize repository
	repo, err := postgres.NewRepository(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize repository:", err)
	}

	// Initialize cache
	cacheRepo, err := redis.NewRedisCacheRepository(cfg.Redis.GetRedisURL(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to initialize cache:", err)
	}

	// Initialize payment gateway with connection pooling
	gateway := stripe.NewStripeGateway(&cfg.Payments)

	// Initialize Kafka writer for the notification topic
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.NotificationTopic,
		Balancer: &kafka.LeastBytes{},
	}

	notifier := NewNotifier(repo, kafkaWriter, cfg.Mailer.FromAddress)

	// Initialize JWT service
	jwtService := NewJWTService(cfg.JWTSecret)

	// Initialize handlers
	handler := NewHandler(repo, cacheRepo, gateway, notifier, jwtService)

	// Setup Gin router
	r := gin.Default()

	// Add middleware
	r.Use(CORSMiddleware())

	// Health check endpoint (no auth required)
	r.GET("/health", handler.HealthCheck)

	// API routes
	api := r.Group("/api")

	// Auth endpoints
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)

	// Public catalogue
	api.GET("/events", handler.ListEvents)
	api.GET("/events/:eventId", handler.GetEvent)
	api.GET("/bundles", handler.ListBundles)
	api.GET("/bundles/:bundleId", handler.GetBundle)

	// Processor callbacks (authenticated by signature, not JWT)
	api.POST("/webhooks/payments", handler.PaymentWebhook)

	// Guest-friendly endpoints: a valid token attaches the user, but
	// anonymous bookings are allowed
	guest := api.Group("")
	guest.Use(OptionalAuthMiddleware(jwtService))
	guest.POST("/bookings", handler.CreateBooking)
	guest.POST("/checkout", handler.Checkout)
	guest.GET("/bookings/:bookingId/status", handler.GetBookingStatus)

	// Protected endpoints (require authentication)
	protected := api.Group("")
	protected.Use(AuthMiddleware(jwtService))
	protected.GET("/bookings", handler.ListUserBookings)
	protected.POST("/bookings/:bookingId/cancel", handler.CancelBooking)
	protected.GET("/credits", handler.ListUserCredits)

	// Admin endpoints
	admin := api.Group("")
	admin.Use(AuthMiddleware(jwtService), AdminMiddleware())
	admin.POST("/events", handler.CreateEvent)
	admin.PUT("/events/:eventId", handler.UpdateEvent)
	admin.DELETE("/events/:eventId", handler.DeleteEvent)
	admin.POST("/bundles", handler.CreateBundle)
	admin.GET("/admin/clients", handler.ListClients)
	admin.GET("/admin/bookings", handler.ListAllBookings)
	admin.GET("/admin/payments", handler.ListPayments)

	return r
}
