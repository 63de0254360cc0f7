package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/middleware"
	"github.com/dat564/e-commerce-sub001/repository"
	"github.com/dat564/e-commerce-sub001/services"
)

// UserController serves profile reads and the admin user operations.
type UserController struct {
	userRepo    repository.UserRepository
	authService *services.AuthService
	validator   *RequestValidator
	production  bool
}

func NewUserController(userRepo repository.UserRepository, authService *services.AuthService, production bool) *UserController {
	return &UserController{
		userRepo:    userRepo,
		authService: authService,
		validator:   NewRequestValidator(),
		production:  production,
	}
}

// GetProfile returns the authenticated account.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Render(c, apperrors.ErrMissingCredential, uc.production)
		return
	}

	user, err := uc.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			apperrors.Render(c, apperrors.ErrAccountNotFound, uc.production)
			return
		}
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrStorageUnavailable, err), uc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListUsers returns a paginated user listing (admin only).
func (uc *UserController) ListUsers(c *gin.Context) {
	page, limit := uc.validator.ParsePagination(c)

	users, total, err := uc.userRepo.FindAll(c.Request.Context(), page, limit)
	if err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrStorageUnavailable, err), uc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"meta": services.MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
			HasMore:    total > int64(page*limit),
		},
	})
}

// DeactivateUser soft-disables an account (admin only).
func (uc *UserController) DeactivateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		apperrors.Render(c, apperrors.ErrValidation, uc.production)
		return
	}

	if err := uc.authService.Deactivate(c.Request.Context(), id); err != nil {
		apperrors.Render(c, err, uc.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
