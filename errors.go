package bookcafe

import "github.com/tejaspanchall/BookCafe-Backend/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidBook   = domain.ErrInvalidBook
	ErrStorage       = domain.ErrStorage
)
