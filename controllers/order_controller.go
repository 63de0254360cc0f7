package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/middleware"
	"github.com/dat564/e-commerce-sub001/services"
)

type OrderController struct {
	orderService *services.OrderService
	validator    *RequestValidator
	production   bool
}

func NewOrderController(orderService *services.OrderService, production bool) *OrderController {
	return &OrderController{
		orderService: orderService,
		validator:    NewRequestValidator(),
		production:   production,
	}
}

// CreateOrder handles checkout.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Render(c, apperrors.ErrMissingCredential, oc.production)
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), oc.production)
		return
	}

	order, err := oc.orderService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// GetOrders returns paginated orders for the authenticated user.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Render(c, apperrors.ErrMissingCredential, oc.production)
		return
	}

	page, limit := oc.validator.ParsePagination(c)

	result, err := oc.orderService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order owned by the authenticated user.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Render(c, apperrors.ErrMissingCredential, oc.production)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, oc.production)
		return
	}

	order, err := oc.orderService.GetOrderForUser(c.Request.Context(), orderID, userID)
	if err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// ListOrders is the admin listing with order-number search and status
// filters.
func (oc *OrderController) ListOrders(c *gin.Context) {
	page, limit := oc.validator.ParsePagination(c)

	filter, err := oc.validator.ParseOrderFilters(c)
	if err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), oc.production)
		return
	}

	result, err := oc.orderService.ListOrders(c.Request.Context(), filter, page, limit)
	if err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus applies an admin status transition.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, oc.production)
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), oc.production)
		return
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// PaymentCallback consumes the external payment provider confirmation.
type PaymentCallbackRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

func (oc *OrderController) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), oc.production)
		return
	}

	if req.Status != "success" {
		// failed provider attempts don't mutate the order; the expiry sweep
		// handles orders that never get paid
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := oc.orderService.ConfirmPayment(c.Request.Context(), req.OrderNumber); err != nil {
		apperrors.Render(c, err, oc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
