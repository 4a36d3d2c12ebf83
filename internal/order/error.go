package order

import (
	"foodhub-be/internal/apperr"
	"foodhub-be/internal/restaurant"
)

var (
	ErrOrderNotFound       = apperr.New(apperr.KindNotFound, "Order not found")
	ErrMenuNotFound        = apperr.New(apperr.KindNotFound, "Menu id is not found")
	ErrRestaurantNotFound  = restaurant.ErrRestaurantNotFound
	ErrPaymentNotCompleted = apperr.New(apperr.KindValidation, "Payment has not been completed")
	ErrInvalidStatus       = apperr.New(apperr.KindValidation, "Invalid order status")
	ErrInvalidTransition   = apperr.New(apperr.KindValidation, "Order cannot move to the requested status")
	ErrAmountTooLarge      = apperr.New(apperr.KindValidation, "Order amount is out of range")
	ErrProcessor           = apperr.New(apperr.KindUpstream, "Error while creating session")
)
