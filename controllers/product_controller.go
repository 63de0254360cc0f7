package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/services"
)

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Price       *int64   `json:"price"`
	Stock       *int     `json:"stock"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"is_active"`
}

type ProductController struct {
	productService *services.ProductService
	cache          *CacheManager
	validator      *RequestValidator
	production     bool
}

func NewProductController(productService *services.ProductService, cache *CacheManager, production bool) *ProductController {
	return &ProductController{
		productService: productService,
		cache:          cache,
		validator:      NewRequestValidator(),
		production:     production,
	}
}

// ListProducts is the public catalog listing; reads go through the Redis
// cache when one is configured.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := pc.validator.ParsePagination(c)

	filter, err := pc.validator.ParseProductFilters(c)
	if err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), pc.production)
		return
	}

	if cached, ok := pc.cache.GetProductList(c.Request.Context(), page, limit, filter); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := pc.productService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		apperrors.Render(c, err, pc.production)
		return
	}

	pc.cache.SetProductListAsync(page, limit, filter, result)
	c.JSON(http.StatusOK, result)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, pc.production)
		return
	}

	product, err := pc.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Render(c, err, pc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// CreateProduct creates a catalog entry (admin only).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), pc.production)
		return
	}

	product, err := pc.productService.Create(c.Request.Context(), &req)
	if err != nil {
		apperrors.Render(c, err, pc.production)
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// UpdateProduct patches catalog fields (admin only).
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, pc.production)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), pc.production)
		return
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = services.Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Price != nil {
		if *req.Price < 0 {
			apperrors.Render(c, apperrors.ErrValidation, pc.production)
			return
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			apperrors.Render(c, apperrors.ErrValidation, pc.production)
			return
		}
		updates["stock"] = *req.Stock
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		apperrors.Render(c, apperrors.ErrValidation, pc.production)
		return
	}

	if err := pc.productService.Update(c.Request.Context(), id, updates); err != nil {
		apperrors.Render(c, err, pc.production)
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProduct soft-deactivates a product (admin only).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, pc.production)
		return
	}

	if err := pc.productService.Deactivate(c.Request.Context(), id); err != nil {
		apperrors.Render(c, err, pc.production)
		return
	}

	pc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}
