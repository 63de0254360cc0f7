package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
)

// AuthService handles registration, login, and the refresh exchange.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	passwords *PasswordValidator
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		passwords: NewPasswordValidator(),
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := s.passwords.ValidatePassword(password); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     name,
		Role:     models.RoleCustomer,
		IsActive: true,
	}

	// the unique email index is the arbiter; a pre-check would race
	if err := s.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pair, user, nil
}

// Refresh exchanges a refresh token for a new pair. The account must still
// exist and be active at exchange time; a stale role claim is discarded in
// favor of the stored one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidSignature
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pair, nil
}

// UpdateProfile writes the mutable contact fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, phone, address string) error {
	updates := bson.M{}
	if name != "" {
		updates["name"] = name
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if address != "" {
		updates["address"] = address
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Deactivate soft-disables an account. Accounts are never physically
// deleted.
func (s *AuthService) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.userRepo.Update(ctx, userID, bson.M{"is_active": false}); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
