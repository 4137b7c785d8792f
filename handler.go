package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/cache"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
	"github.com/willowyoga/studiobooking/service"
)

// Cache TTLs for the read-side caches
const (
	bookingStatusTTL = 30 * time.Minute
	eventCacheTTL    = 5 * time.Minute
)

type Handler struct {
	repo       repository.Repository
	cache      cache.CacheRepository
	gateway    service.PaymentGateway
	notifier   *Notifier
	jwtService *JWTService
}

func NewHandler(repo repository.Repository, cache cache.CacheRepository, gateway service.PaymentGateway, notifier *Notifier, jwtService *JWTService) *Handler {
	return &Handler{
		repo:       repo,
		cache:      cache,
		gateway:    gateway,
		notifier:   notifier,
		jwtService: jwtService,
	}
}

// HealthCheck reports service health
func (h *Handler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.repo.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
			Status:    "unhealthy",
			Service:   "studiobooking",
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Service:   "studiobooking",
		Timestamp: time.Now(),
	})
}
