package services

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper  = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower  = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber = errors.New("password must contain at least one number")
	ErrPasswordCommon   = errors.New("password is too common")
)

// PasswordValidator validates passwords against security requirements
type PasswordValidator struct {
	minLength       int
	commonPasswords map[string]bool
}

// NewPasswordValidator creates a new password validator with default settings
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength: 8,
		commonPasswords: map[string]bool{
			"password": true,
			"12345678": true,
			"qwertyui": true,
			"admin123": true,
		},
	}
}

// ValidatePassword checks if a password meets all security requirements
func (pv *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < pv.minLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasLower {
		return ErrPasswordNoLower
	}
	if !hasNumber {
		return ErrPasswordNoNumber
	}
	if pv.commonPasswords[password] {
		return ErrPasswordCommon
	}
	return nil
}
