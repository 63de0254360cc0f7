package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
)

const (
	MaxPageSize  = 100
	DefaultPage  = 1
	DefaultLimit = 10
)

// RequestValidator handles query-string parsing and struct validation.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Struct validates a request payload against its validate tags.
func (rv *RequestValidator) Struct(v interface{}) error {
	return rv.validate.Struct(v)
}

// ParsePagination validates and parses pagination parameters.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int) {
	page := DefaultPage
	limit := DefaultLimit

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
	}
	return page, limit
}

// ParseOrderFilters parses the admin order listing filters.
func (rv *RequestValidator) ParseOrderFilters(c *gin.Context) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{
		Search: c.Query("search"),
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = s
	}
	if paymentStatus := c.Query("paymentStatus"); paymentStatus != "" {
		p := models.PaymentStatus(paymentStatus)
		if !p.Valid() {
			return filter, errors.New("invalid paymentStatus filter")
		}
		filter.PaymentStatus = p
	}
	return filter, nil
}

// ParseProductFilters parses the catalog listing filters.
func (rv *RequestValidator) ParseProductFilters(c *gin.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Search:     c.Query("search"),
		Brand:      c.Query("brand"),
		ActiveOnly: true,
	}
	if category := c.Query("category"); category != "" {
		id, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			return filter, errors.New("invalid category filter")
		}
		filter.CategoryID = &id
	}
	return filter, nil
}
