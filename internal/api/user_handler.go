package api

import (
	"net/http"
	"time"

	"foodhub-be/internal/auth"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc          user.Service
	tokenTTL     time.Duration
	cookieSecure bool
}

func NewUserHandler(svc user.Service, tokenTTL time.Duration, cookieSecure bool) *UserHandler {
	useJSONFieldNames()
	return &UserHandler{svc: svc, tokenTTL: tokenTTL, cookieSecure: cookieSecure}
}

type verifyEmailRequest struct {
	VerificationCode string `json:"verificationCode" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var in user.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	u, token, err := h.svc.Signup(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	auth.SetTokenCookie(c.Writer, token, h.tokenTTL, h.cookieSecure)
	ok(c, http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    u,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var in user.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	u, token, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	auth.SetTokenCookie(c.Writer, token, h.tokenTTL, h.cookieSecure)
	ok(c, http.StatusOK, gin.H{
		"message": "Welcome back " + u.Fullname,
		"user":    u,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	auth.ClearTokenCookie(c.Writer, h.cookieSecure)
	ok(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.svc.VerifyEmail(c.Request.Context(), req.VerificationCode)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"user":    u,
	})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Password reset link sent"})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *UserHandler) CheckAuth(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	u, err := h.svc.CheckAuth(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"user": u})
}

// UpdateProfile accepts JSON, or multipart form fields plus an optional
// profilePicture file.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var in user.UpdateProfileInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}

	avatar, closeFile, err := formImage(c, "profilePicture")
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeFile()

	u, err := h.svc.UpdateProfile(c.Request.Context(), userID, in, avatar)
	if err != nil {
		writeError(c, err)
		return
	}

	logger.FromCtx(c.Request.Context()).Info("profile updated",
		zap.String("user_id", userID.String()),
		zap.Bool("avatar", avatar != nil),
	)
	ok(c, http.StatusOK, gin.H{
		"user":    u,
		"message": "Profile updated successfully",
	})
}
