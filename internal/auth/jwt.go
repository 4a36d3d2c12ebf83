package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSecret  = errors.New("jwt secret is not set")
	ErrInvalidSubject = errors.New("invalid token subject")
)

type Claims struct {
	UserID string `json:"userId"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Generate(userID uuid.UUID, admin bool) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := m.now()
	claims := Claims{
		UserID: userID.String(),
		Admin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature and expiry and returns the user id and admin flag.
func (m *Manager) Parse(tokenStr string) (uuid.UUID, bool, error) {
	if len(m.secret) == 0 {
		return uuid.Nil, false, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return uuid.Nil, false, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, false, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false, ErrInvalidSubject
	}

	return id, claims.Admin, nil
}
