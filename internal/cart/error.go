package cart

import "foodhub-be/internal/apperr"

var (
	ErrInvalidQuantity  = apperr.New(apperr.KindValidation, "Quantity must be greater than zero")
	ErrInvalidMenuID    = apperr.New(apperr.KindValidation, "Menu id is required")
	ErrCartItemNotFound = apperr.New(apperr.KindNotFound, "Cart item not found")
	ErrCartEmpty        = apperr.New(apperr.KindValidation, "Cart is empty")
)
