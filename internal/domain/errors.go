package domain

import "errors"

// Common domain errors returned by repositories
var (
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicateCelular = errors.New("celular already registered")
	ErrDuplicateLista   = errors.New("lista with same cliente and comentario already exists")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrUnknownLista     = errors.New("lista does not exist")
)
