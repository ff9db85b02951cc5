package domain

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure regardless of
	// cause, so a caller cannot distinguish an unknown username from a wrong
	// password.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	ErrUserExists   = errors.New("username already exists")
	ErrUserNotFound = errors.New("user not found")

	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrTooManyAttempts = errors.New("too many failed login attempts")

	ErrBookNotFound = errors.New("book not found")
	ErrFileNotFound = errors.New("file not found")

	ErrForbidden = errors.New("access forbidden")
)
