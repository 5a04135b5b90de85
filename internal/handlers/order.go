// internal/handlers/order.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openmall/shop-backend/internal/middleware"
	"github.com/openmall/shop-backend/internal/models"
	"github.com/openmall/shop-backend/internal/services"
	"github.com/openmall/shop-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

type CreateOrderRequest struct {
	AddressID uuid.UUID `json:"address_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending paid shipped completed cancelled"`
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	success := false
	defer func() { middleware.RecordOrderOperation("create", success) }()

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(userID, req.AddressID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	success = true
	utils.CreatedResponse(c, order)
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.ListOrders(userID, params.Page, params.Limit)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/pay — the payment simulator endpoint.
func (h *OrderHandler) PayOrder(c *gin.Context) {
	success := false
	defer func() { middleware.RecordOrderOperation("pay", success) }()

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.PayOrder(userID, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	success = true
	utils.SuccessResponse(c, order)
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	success := false
	defer func() { middleware.RecordOrderOperation("cancel", success) }()

	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.CancelOrder(userID, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	success = true
	utils.SuccessResponse(c, order)
}

// PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	success := false
	defer func() { middleware.RecordOrderOperation("update_status", success) }()

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	success = true
	utils.SuccessResponse(c, order)
}

// respondOrderError maps service errors to HTTP responses. Storage failures
// fall through to a generic 500; the detail stays in the server log.
func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrQuantityTooLarge), errors.Is(err, services.ErrQuantityInvalid):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrAddressNotFound):
		utils.NotFoundResponse(c, "Address")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "Order")
	case errors.Is(err, services.ErrUserNotFound):
		utils.UnauthorizedResponse(c, "")
	case services.IsInsufficientStock(err):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, "")
	}
}
