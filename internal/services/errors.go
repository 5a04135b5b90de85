// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Handlers map these to HTTP
// status codes; anything else is treated as a storage failure and surfaced
// as a generic internal error without leaking detail.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrQuantityTooLarge   = errors.New("quantity exceeds per-line limit")
	ErrQuantityInvalid    = errors.New("quantity must be at least 1")
)

// InsufficientStockError names the offending product so the shopper can
// adjust their cart instead of retrying blindly.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q is unavailable or out of stock", e.ProductName)
}

// IsInsufficientStock reports whether err wraps an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
