package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailExists      = errors.New("email already exists")
	ErrBadCredentials   = errors.New("invalid email or password")
)
