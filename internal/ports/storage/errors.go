package storage

import "errors"

// Errores comunes a todos los adapters de storage (memory, file, postgres).
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
