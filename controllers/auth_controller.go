package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/logger"
	"github.com/dat564/e-commerce-sub001/middleware"
	"github.com/dat564/e-commerce-sub001/services"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type AuthController struct {
	authService *services.AuthService
	production  bool
	log         *zap.Logger
}

func NewAuthController(authService *services.AuthService, production bool, log *zap.Logger) *AuthController {
	return &AuthController{authService: authService, production: production, log: log}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), ac.production)
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		apperrors.Render(c, err, ac.production)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), ac.production)
		return
	}

	pair, user, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.Render(c, err, ac.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tokens": pair, "user": user})
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), ac.production)
		return
	}

	pair, err := ac.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		// never log the token itself, only a short prefix
		ac.log.Warn("refresh exchange rejected",
			zap.String("token", logger.TokenPrefix(req.RefreshToken)),
			zap.Error(err))
		apperrors.Render(c, err, ac.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tokens": pair})
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.Render(c, apperrors.ErrMissingCredential, ac.production)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Render(c, apperrors.Wrap(apperrors.ErrValidation, err), ac.production)
		return
	}

	if err := ac.authService.UpdateProfile(c.Request.Context(), userID, req.Name, req.Phone, req.Address); err != nil {
		apperrors.Render(c, err, ac.production)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
