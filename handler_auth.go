package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/willowyoga/studiobooking/model"
	"github.com/willowyoga/studiobooking/repository"
)

// Register creates a new member account
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.repo.CreateUser(req.ToCreateUserRequest())
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			c.JSON(http.StatusConflict, model.ErrorResponse{
				Error:   "email_exists",
				Message: "An account with this email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create account",
		})
		return
	}

	c.JSON(http.StatusCreated, model.RegisterResponse{
		UserResponse: user.ToUserResponse(),
	})
}

// Login authenticates a user and returns an access token
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to log in",
		})
		return
	}

	if !h.repo.ValidatePassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(TokenValidity / time.Second),
		User:        *user.ToUserResponse(),
	})
}
