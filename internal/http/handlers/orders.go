package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/pupsorders/internal/domain/order"
	"github.com/geocoder89/pupsorders/internal/domain/user"
	"github.com/geocoder89/pupsorders/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req order.CreateRequest) ([]order.Order, error)
	ListOrders(ctx context.Context, userID string) ([]order.Order, error)
	DeleteOrder(ctx context.Context, userID, orderID string) ([]order.Order, error)
}

type OrdersHandler struct {
	orders OrderService
}

func NewOrdersHandler(orders OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) CreateOrder(ctx *gin.Context) {
	var req order.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	orders, err := h.orders.CreateOrder(ctx.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	respondOrders(ctx, orders)
}

func (h *OrdersHandler) ListOrders(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	orders, err := h.orders.ListOrders(ctx.Request.Context(), userID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	respondOrders(ctx, orders)
}

func (h *OrdersHandler) DeleteOrder(ctx *gin.Context) {
	var req user.DeleteOrderRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	orders, err := h.orders.DeleteOrder(ctx.Request.Context(), userID, req.OrderID)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	respondOrders(ctx, orders)
}

func respondOrders(ctx *gin.Context, orders []order.Order) {
	if orders == nil {
		orders = []order.Order{}
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}
