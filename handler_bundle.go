package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
)

// CreateBundle creates a discounted bundle of events (admin only)
func (h *Handler) CreateBundle(c *gin.Context) {
	var req model.CreateBundleAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	bundle, events, err := h.repo.CreateBundle(req.ToCreateBundleRequest())
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "event_not_found",
				Message: "One or more bundle events do not exist",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create bundle",
		})
		return
	}

	c.JSON(http.StatusCreated, bundle.ToBundleResponse(events))
}

// GetBundle returns one bundle with its member events
func (h *Handler) GetBundle(c *gin.Context) {
	bundleID := c.Param("bundleId")

	bundle, events, err := h.repo.GetBundleByID(bundleID)
	if err != nil {
		if errors.Is(err, repository.ErrBundleNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "bundle_not_found",
				Message: "Bundle not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get bundle",
		})
		return
	}

	c.JSON(http.StatusOK, bundle.ToBundleResponse(events))
}

// ListBundles returns the bundle catalogue
func (h *Handler) ListBundles(c *gin.Context) {
	limit, offset := parsePagination(c)

	filter := model.BundleFilter{
		Status: c.DefaultQuery("status", model.BundleStatusActive),
		Limit:  limit,
		Offset: offset,
	}

	bundles, total, err := h.repo.ListBundles(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bundles",
		})
		return
	}

	responses := make([]model.BundleResponse, 0, len(bundles))
	for i := range bundles {
		responses = append(responses, *bundles[i].ToBundleResponse(nil))
	}

	c.JSON(http.StatusOK, model.BundleListResponse{
		Bundles:    responses,
		Pagination: model.NewPagination(total, limit, offset),
	})
}
