package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair holds the generated access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the resolved payload of a verified token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   models.Role
}

// TokenService is responsible for creating and validating JWTs. The signing
// secret and TTLs are injected at construction time.
type TokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey:  []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateTokenPair creates a new access and refresh token pair.
func (s *TokenService) GenerateTokenPair(userID, email string, role models.Role) (*TokenPair, error) {
	accessToken, err := s.generateToken(userID, email, role, TokenTypeAccess, s.accessTTL, "")
	if err != nil {
		return nil, err
	}

	// unique token id for the refresh token (jti)
	tokenID := uuid.NewString()
	refreshToken, err := s.generateToken(userID, email, role, TokenTypeRefresh, s.refreshTTL, tokenID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateToken parses and validates a token string, distinguishing an
// elapsed validity window from a bad signature. If expectedType is
// non-empty, the claim "typ" must match it.
func (s *TokenService) ValidateToken(tokenStr, expectedType string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidSignature
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidSignature
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, apperrors.ErrInvalidSignature
		}
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, apperrors.ErrInvalidSignature
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)

	return &TokenClaims{
		UserID: sub,
		Email:  email,
		Role:   models.Role(roleStr),
	}, nil
}

func (s *TokenService) generateToken(userID, email string, role models.Role, tokenType string, duration time.Duration, tokenID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"typ":   tokenType,
		"exp":   time.Now().Add(duration).Unix(),
		"iat":   time.Now().Unix(),
	}
	if tokenType == TokenTypeRefresh && tokenID != "" {
		claims["jti"] = tokenID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}
