package services

import (
	"errors"

	"blogsite/internal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrLocked             = errors.New("locked by another editor")
	ErrInvalidPreviewMode = errors.New("invalid preview mode")
)
