package user

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByVerificationToken(ctx context.Context, code string, now time.Time) (*User, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return m.Called(ctx, id, token, expiresAt).Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id uuid.UUID, p UpdateProfileParams) (*User, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Generate(userID uuid.UUID, admin bool) (string, error) {
	args := m.Called(userID, admin)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *MockNotifier) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	return m.Called(ctx, email, resetURL).Error(0)
}

func (m *MockNotifier) SendResetSuccessEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, folder string, f storage.File) (string, error) {
	args := m.Called(ctx, folder, f)
	return args.String(0), args.Error(1)
}

type fixture struct {
	repo     *MockRepository
	tokens   *MockTokens
	notifier *MockNotifier
	uploader *MockUploader
	svc      *service
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockRepository),
		tokens:   new(MockTokens),
		notifier: new(MockNotifier),
		uploader: new(MockUploader),
		now:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.tokens, f.notifier, f.uploader, "http://localhost:5173/").(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()
	in := SignupInput{
		Fullname: "John Doe",
		Email:    "John@Example.com",
		Password: "secret123",
		Contact:  "9876543210",
	}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()

		var created *User
		f.repo.On("Create", ctx, mock.AnythingOfType("*user.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*User) }).
			Return(nil)
		f.tokens.On("Generate", mock.AnythingOfType("uuid.UUID"), false).Return("jwt-token", nil)
		f.notifier.On("SendVerificationEmail", ctx, "john@example.com", mock.AnythingOfType("string")).Return(nil)

		u, token, err := f.svc.Signup(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", token)
		assert.Equal(t, "john@example.com", u.Email)
		assert.NotEqual(t, "secret123", created.PasswordHash)
		assert.True(t, CheckPasswordHash("secret123", created.PasswordHash))
		require.NotNil(t, created.VerificationToken)
		assert.Len(t, *created.VerificationToken, 6)
		assert.Equal(t, f.now.Add(24*time.Hour), *created.VerificationTokenExpiresAt)

		sentCode := f.notifier.Calls[0].Arguments.String(2)
		assert.Equal(t, *created.VerificationToken, sentCode)
		f.repo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", ctx, mock.Anything).Return(ErrEmailExists)

		_, _, err := f.svc.Signup(ctx, in)

		assert.ErrorIs(t, err, ErrEmailExists)
		f.notifier.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MailFailureFailsSignup", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", ctx, mock.Anything).Return(nil)
		f.tokens.On("Generate", mock.Anything, false).Return("jwt-token", nil)
		f.notifier.On("SendVerificationEmail", ctx, mock.Anything, mock.Anything).Return(errors.New("brevo down"))

		_, _, err := f.svc.Signup(ctx, in)

		assert.Error(t, err)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	existing := &User{ID: uuid.New(), Email: "john@example.com", PasswordHash: hash, Admin: true}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", ctx, "john@example.com").Return(existing, nil)
		f.tokens.On("Generate", existing.ID, true).Return("jwt-token", nil)
		f.repo.On("UpdateLastLogin", ctx, existing.ID, f.now).Return(nil)

		u, token, err := f.svc.Login(ctx, LoginInput{Email: "JOHN@example.com", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", token)
		assert.Equal(t, f.now, *u.LastLogin)
		f.repo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, _, err := f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "x"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", ctx, "john@example.com").Return(existing, nil)

		_, _, err := f.svc.Login(ctx, LoginInput{Email: "john@example.com", Password: "nope"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		f.tokens.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		code := "123456"
		u := &User{ID: uuid.New(), Email: "a@b.com", Fullname: "A", VerificationToken: &code}
		f.repo.On("FindByVerificationToken", ctx, "123456", f.now).Return(u, nil)
		f.repo.On("MarkVerified", ctx, u.ID).Return(nil)
		f.notifier.On("SendWelcomeEmail", ctx, "a@b.com", "A").Return(nil)

		got, err := f.svc.VerifyEmail(ctx, " 123456 ")

		require.NoError(t, err)
		assert.True(t, got.IsVerified)
		assert.Nil(t, got.VerificationToken)
	})

	t.Run("ExpiredOrUnknown", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByVerificationToken", ctx, "000000", f.now).Return(nil, ErrUserNotFound)

		_, err := f.svc.VerifyEmail(ctx, "000000")

		assert.ErrorIs(t, err, ErrInvalidVerification)
	})

	t.Run("EmptyCode", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.VerifyEmail(ctx, "")
		assert.ErrorIs(t, err, ErrMissingVerifyCode)
	})
}

func TestService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		u := &User{ID: uuid.New(), Email: "a@b.com"}
		f.repo.On("FindByEmail", ctx, "a@b.com").Return(u, nil)
		f.repo.On("SetResetToken", ctx, u.ID, mock.AnythingOfType("string"), f.now.Add(time.Hour)).Return(nil)
		f.notifier.On("SendPasswordResetEmail", ctx, "a@b.com", mock.AnythingOfType("string")).Return(nil)

		require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))

		token := f.repo.Calls[1].Arguments.String(2)
		assert.Len(t, token, 80)
		url := f.notifier.Calls[0].Arguments.String(2)
		assert.Equal(t, "http://localhost:5173/resetpassword/"+token, url)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", ctx, "ghost@b.com").Return(nil, ErrUserNotFound)

		assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "ghost@b.com"), ErrUserNotFound)
	})
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		u := &User{ID: uuid.New(), Email: "a@b.com"}
		f.repo.On("FindByResetToken", ctx, "tok", f.now).Return(u, nil)
		f.repo.On("UpdatePassword", ctx, u.ID, mock.MatchedBy(func(h string) bool {
			return CheckPasswordHash("newsecret", h)
		})).Return(nil)
		f.notifier.On("SendResetSuccessEmail", ctx, "a@b.com").Return(nil)

		assert.NoError(t, f.svc.ResetPassword(ctx, "tok", "newsecret"))
		f.repo.AssertExpectations(t)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByResetToken", ctx, "bad", f.now).Return(nil, ErrUserNotFound)

		assert.ErrorIs(t, f.svc.ResetPassword(ctx, "bad", "newsecret"), ErrInvalidResetToken)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.ResetPassword(ctx, "tok", "123"), ErrInvalidPassword)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("WithAvatar", func(t *testing.T) {
		f := newFixture()
		avatar := &storage.File{Name: "me.png", ContentType: "image/png", Body: bytes.NewBufferString("x")}
		city := "Pune"
		url := "http://localhost:8000/uploads/avatars/me.png"

		f.repo.On("FindByID", ctx, id).Return(&User{ID: id}, nil)
		f.uploader.On("Upload", ctx, "avatars", *avatar).Return(url, nil)
		f.repo.On("UpdateProfile", ctx, id, mock.MatchedBy(func(p UpdateProfileParams) bool {
			return p.ProfilePicture != nil && *p.ProfilePicture == url && *p.City == city
		})).Return(&User{ID: id, City: city, ProfilePicture: url}, nil)

		u, err := f.svc.UpdateProfile(ctx, id, UpdateProfileInput{City: &city}, avatar)

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(u.ProfilePicture, "me.png"))
	})

	t.Run("UnknownUserSkipsUpload", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByID", ctx, id).Return(nil, ErrUserNotFound)

		_, err := f.svc.UpdateProfile(ctx, id, UpdateProfileInput{}, &storage.File{})

		assert.ErrorIs(t, err, ErrUserNotFound)
		f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_CheckAuth(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()
	f.repo.On("FindByID", ctx, id).Return(&User{ID: id}, nil)

	u, err := f.svc.CheckAuth(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
}
