package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
)

// ListClients returns the CRM client list (admin only)
func (h *Handler) ListClients(c *gin.Context) {
	limit, offset := parsePagination(c)

	clients, total, err := h.repo.ListClients(model.ClientFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list clients",
		})
		return
	}

	responses := make([]model.ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, *clients[i].ToClientResponse())
	}

	c.JSON(http.StatusOK, model.ClientListResponse{
		Clients:    responses,
		Pagination: model.NewPagination(total, limit, offset),
	})
}

// ListPayments returns payment records with credit and refund state
// (admin only)
func (h *Handler) ListPayments(c *gin.Context) {
	limit, offset := parsePagination(c)

	payments, total, err := h.repo.ListPayments(model.PaymentFilter{
		BookingID: c.Query("booking_id"),
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list payments",
		})
		return
	}

	responses := make([]model.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *payments[i].ToPaymentResponse())
	}

	c.JSON(http.StatusOK, model.PaymentListResponse{
		Payments:   responses,
		Pagination: model.NewPagination(total, limit, offset),
	})
}

// ListAllBookings returns bookings across all users (admin only)
func (h *Handler) ListAllBookings(c *gin.Context) {
	limit, offset := parsePagination(c)

	bookings, total, err := h.repo.ListBookings(model.BookingFilter{
		UserID:        c.Query("user_id"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list bookings",
		})
		return
	}

	responses := make([]model.BookingStatusResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *bookings[i].ToBookingStatusResponse())
	}

	c.JSON(http.StatusOK, model.UserBookingsResponse{
		Bookings: responses,
		Total:    total,
	})
}
