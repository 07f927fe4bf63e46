package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrInvalidBikeClass = errors.New("invalid bike class")
	ErrInvalidModelType = errors.New("invalid model type")
)
