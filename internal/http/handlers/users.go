package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/http/middlewares"
	"github.com/geocoder89/pupsorders/internal/service"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
}

type EmailResolver interface {
	Email(token string) (string, error)
}

type UsersHandler struct {
	accounts AccountService
	identity EmailResolver
}

func NewUsersHandler(accounts AccountService, identity EmailResolver) *UsersHandler {
	return &UsersHandler{accounts: accounts, identity: identity}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	token, err := h.accounts.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	token, err := h.accounts.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *UsersHandler) UpdatePassword(ctx *gin.Context) {
	var req user.UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if err := h.accounts.ChangePassword(ctx.Request.Context(), userID, req.Password); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

func (h *UsersHandler) GetEmail(ctx *gin.Context) {
	token, ok := middlewares.TokenFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	email, err := h.identity.Email(token)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "email": email})
}
