package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/services"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryController struct {
	productService *services.ProductService
	cache          *CacheManager
	production     bool
}

func NewCategoryController(productService *services.ProductService, cache *CacheManager, production bool) *CategoryController {
	return &CategoryController{productService: productService, cache: cache, production: production}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	categories, err := cc.productService.ListCategories(c.Request.Context())
	if err != nil {
		apperrors.Render(c, err, cc.production)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), cc.production)
		return
	}

	category, err := cc.productService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		apperrors.Render(c, err, cc.production)
		return
	}

	cc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, cc.production)
		return
	}

	if err := cc.productService.DeactivateCategory(c.Request.Context(), id); err != nil {
		apperrors.Render(c, err, cc.production)
		return
	}

	cc.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}
