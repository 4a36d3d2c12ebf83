package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationTTL = 24 * time.Hour
	ResetTokenTTL   = time.Hour
)

type User struct {
	ID             uuid.UUID  `json:"id"`
	Fullname       string     `json:"fullname"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Contact        string     `json:"contact"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	Country        string     `json:"country"`
	ProfilePicture string     `json:"profilePicture"`
	Admin          bool       `json:"admin"`
	IsVerified     bool       `json:"isVerified"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	VerificationToken          *string    `json:"-"`
	VerificationTokenExpiresAt *time.Time `json:"-"`
	ResetPasswordToken         *string    `json:"-"`
	ResetPasswordExpiresAt     *time.Time `json:"-"`
}

type SignupInput struct {
	Fullname string `json:"fullname" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Contact  string `json:"contact" binding:"required,numeric,min=10,max=15"`
	Admin    bool   `json:"admin"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput is a partial update; nil fields are left untouched.
type UpdateProfileInput struct {
	Fullname *string `form:"fullname" json:"fullname" binding:"omitempty,max=100"`
	Address  *string `form:"address" json:"address" binding:"omitempty,max=200"`
	City     *string `form:"city" json:"city" binding:"omitempty,max=100"`
	Country  *string `form:"country" json:"country" binding:"omitempty,max=100"`
	Contact  *string `form:"contact" json:"contact" binding:"omitempty,numeric,min=10,max=15"`
}

type UpdateProfileParams struct {
	UpdateProfileInput
	ProfilePicture *string
}
