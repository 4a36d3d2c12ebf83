package restaurant

import "foodhub-be/internal/apperr"

var (
	ErrRestaurantExists   = apperr.New(apperr.KindConflict, "Restaurant already exist")
	ErrRestaurantNotFound = apperr.New(apperr.KindNotFound, "Restaurant not found")
	ErrMenuNotFound       = apperr.New(apperr.KindNotFound, "Menu not found")
	ErrImageRequired      = apperr.New(apperr.KindValidation, "Image is required")
	ErrCuisinesRequired   = apperr.New(apperr.KindValidation, "At least one cuisine is required")
	ErrInvalidPrice       = apperr.New(apperr.KindValidation, "Price must be a positive amount")
)

// MaxPrice caps a menu price in major currency units.
const MaxPrice = 10_000_000

const pgUniqueViolation = "23505"
