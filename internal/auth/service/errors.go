package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrTokenExpired       = errors.New("token_expired")
	ErrTokenInvalid       = errors.New("token_invalid")
	ErrUserNotFound       = errors.New("user_not_found")
)
