package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the client-correctable error family.
// Handlers map anything matching it with errors.Is to a 400.
var ErrInvalidInput = errors.New("invalid input")

// Input validation errors
var (
	ErrInvalidName     = fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInput)
	ErrInvalidPhone    = fmt.Errorf("%w: invalid phone number", ErrInvalidInput)
	ErrInvalidPassword = fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
)

// Auth errors
var (
	ErrDuplicatePhone     = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Listing errors
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrTooManyImages     = fmt.Errorf("%w: a listing may have at most 5 images", ErrInvalidInput)
	ErrNotAnImage        = fmt.Errorf("%w: file is not a valid image", ErrInvalidInput)
	ErrBadImageType      = fmt.Errorf("%w: invalid file type, only JPG, PNG, GIF and WebP allowed", ErrInvalidInput)
	ErrImageTooLarge     = fmt.Errorf("%w: image too large, maximum size is 5MB", ErrInvalidInput)
)
