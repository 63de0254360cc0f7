package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
	"github.com/dat564/e-commerce-sub001/services"
)

const (
	UserIDKey = "userID"
	EmailKey  = "email"
	RoleKey   = "role"

	bearerPrefix = "Bearer "
)

// Auth carries the dependencies of the credential gate.
type Auth struct {
	tokens     *services.TokenService
	userRepo   repository.UserRepository
	production bool
}

func NewAuth(tokens *services.TokenService, userRepo repository.UserRepository, production bool) *Auth {
	return &Auth{tokens: tokens, userRepo: userRepo, production: production}
}

// RequireAuth authenticates the request: extracts the bearer credential,
// verifies it, and resolves it to a stored account that must still be
// active. The account identifier, email, and stored role are placed in the
// gin context for downstream handlers.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			apperrors.Render(c, apperrors.ErrMissingCredential, a.production)
			return
		}
		tokenStr := strings.TrimPrefix(header, bearerPrefix)

		claims, err := a.tokens.ValidateToken(tokenStr, services.TokenTypeAccess)
		if err != nil {
			apperrors.Render(c, err, a.production)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			apperrors.Render(c, apperrors.ErrInvalidSignature, a.production)
			return
		}

		user, err := a.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNoDocument) {
				apperrors.Render(c, apperrors.ErrAccountNotFound, a.production)
				return
			}
			apperrors.Render(c, apperrors.Wrap(apperrors.ErrStorageUnavailable, err), a.production)
			return
		}
		if !user.IsActive {
			apperrors.Render(c, apperrors.ErrAccountDisabled, a.production)
			return
		}

		// the stored role wins over whatever the token claims
		c.Set(UserIDKey, user.ID)
		c.Set(EmailKey, user.Email)
		c.Set(RoleKey, user.Role)
		c.Next()
	}
}

// RequireAdmin authorizes the request: a pure role comparison after
// RequireAuth has run. Only admin passes.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(RoleKey)
		if !exists {
			apperrors.Render(c, apperrors.ErrForbidden, a.production)
			return
		}
		role, ok := val.(models.Role)
		if !ok {
			apperrors.Render(c, apperrors.ErrForbidden, a.production)
			return
		}
		switch role {
		case models.RoleAdmin:
			c.Next()
		case models.RoleCustomer:
			apperrors.Render(c, apperrors.ErrForbidden, a.production)
		default:
			apperrors.Render(c, apperrors.ErrForbidden, a.production)
		}
	}
}

// GetUserID returns the authenticated account identifier from the context.
func GetUserID(c *gin.Context) (primitive.ObjectID, error) {
	if val, ok := c.Get(UserIDKey); ok {
		if id, ok := val.(primitive.ObjectID); ok {
			return id, nil
		}
	}
	return primitive.NilObjectID, errors.New("user ID not found in context")
}
