package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/notification"
	"foodhub-be/internal/storage"
	"foodhub-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer is satisfied by *auth.Manager.
type TokenIssuer interface {
	Generate(userID uuid.UUID, admin bool) (string, error)
}

type Service interface {
	Signup(ctx context.Context, in SignupInput) (*User, string, error)
	Login(ctx context.Context, in LoginInput) (*User, string, error)
	VerifyEmail(ctx context.Context, code string) (*User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CheckAuth(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput, avatar *storage.File) (*User, error)
}

type service struct {
	repo        Repository
	tokens      TokenIssuer
	notifier    notification.Notifier
	uploader    storage.Uploader
	frontendURL string
	now         func() time.Time
}

func NewService(
	repo Repository,
	tokens TokenIssuer,
	notifier notification.Notifier,
	uploader storage.Uploader,
	frontendURL string,
) Service {
	return &service{
		repo:        repo,
		tokens:      tokens,
		notifier:    notifier,
		uploader:    uploader,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (s *service) Signup(ctx context.Context, in SignupInput) (*User, string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Signup"),
	)

	email := strings.ToLower(strings.TrimSpace(in.Email))

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, "", err
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, "", err
	}
	expires := s.now().Add(VerificationTTL)

	u := &User{
		ID:                         uuid.New(),
		Fullname:                   strings.TrimSpace(in.Fullname),
		Email:                      email,
		PasswordHash:               hashed,
		Contact:                    in.Contact,
		Admin:                      in.Admin,
		VerificationToken:          &code,
		VerificationTokenExpiresAt: &expires,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(u.ID, u.Admin)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, "", err
	}

	if err := s.notifier.SendVerificationEmail(ctx, email, code); err != nil {
		log.Error("failed to send verification email", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, "", apperr.Wrap(apperr.KindUpstream, notification.ErrDelivery.Message, err)
	}

	log.Info("user signed up", zap.String("user_id", u.ID.String()), zap.Bool("admin", u.Admin))
	return u, token, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*User, string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login for unknown email")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPasswordHash(in.Password, u.PasswordHash) {
		log.Info("password mismatch", zap.String("user_id", u.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Admin)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, "", err
	}
	u.LastLogin = &now

	return u, token, nil
}

func (s *service) VerifyEmail(ctx context.Context, code string) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "VerifyEmail"),
	)

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingVerifyCode
	}

	u, err := s.repo.FindByVerificationToken(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, err
	}

	if err := s.repo.MarkVerified(ctx, u.ID); err != nil {
		return nil, err
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil

	if err := s.notifier.SendWelcomeEmail(ctx, u.Email, u.Fullname); err != nil {
		log.Error("failed to send welcome email", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindUpstream, notification.ErrDelivery.Message, err)
	}

	return u, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ForgotPassword"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.repo.SetResetToken(ctx, u.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.frontendURL, token)
	if err := s.notifier.SendPasswordResetEmail(ctx, u.Email, resetURL); err != nil {
		log.Error("failed to send reset email", zap.String("user_id", u.ID.String()), zap.Error(err))
		return apperr.Wrap(apperr.KindUpstream, notification.ErrDelivery.Message, err)
	}

	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ResetPassword"),
	)

	if len(newPassword) < 6 {
		return ErrInvalidPassword
	}

	u, err := s.repo.FindByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, hashed); err != nil {
		return err
	}

	if err := s.notifier.SendResetSuccessEmail(ctx, u.Email); err != nil {
		log.Error("failed to send reset success email", zap.String("user_id", u.ID.String()), zap.Error(err))
		return apperr.Wrap(apperr.KindUpstream, notification.ErrDelivery.Message, err)
	}

	log.Info("password reset", zap.String("user_id", u.ID.String()))
	return nil
}

func (s *service) CheckAuth(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput, avatar *storage.File) (*User, error) {
	params := UpdateProfileParams{UpdateProfileInput: in}

	if avatar != nil {
		if _, err := s.repo.FindByID(ctx, userID); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, "avatars", *avatar)
		if err != nil {
			return nil, err
		}
		params.ProfilePicture = &url
	}

	return s.repo.UpdateProfile(ctx, userID, params)
}
