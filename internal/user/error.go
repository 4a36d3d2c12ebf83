package user

import "foodhub-be/internal/apperr"

var (
	ErrEmailExists         = apperr.New(apperr.KindConflict, "User already exists")
	ErrInvalidCredentials  = apperr.New(apperr.KindValidation, "Incorrect email or password")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "User not found")
	ErrInvalidVerification = apperr.New(apperr.KindValidation, "Invalid or expired verification token")
	ErrInvalidResetToken   = apperr.New(apperr.KindValidation, "Invalid or expired token")
	ErrInvalidPassword     = apperr.New(apperr.KindValidation, "Password must be at least 6 characters")
	ErrMissingVerifyCode   = apperr.New(apperr.KindValidation, "Verification code is required")
)

const pgUniqueViolation = "23505"
