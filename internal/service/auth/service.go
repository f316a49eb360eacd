// Package auth issues and verifies the bearer tokens that carry the opaque
// caller identity into every other operation.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository"
)

const minPasswordLength = 6

// Service handles identity registration, login and token verification.
type Service struct {
	store    repository.Store
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the auth service.
func NewService(store repository.Store, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a new identity with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (models.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return models.Identity{}, fmt.Errorf("email required")
	}
	if len(password) < minPasswordLength {
		return models.Identity{}, fmt.Errorf("password too short (min %d)", minPasswordLength)
	}

	var identity models.Identity
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.store.GetIdentityByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("lookup email: %w", err)
		}
		if existing != nil {
			return models.ErrEmailTaken
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		identity, err = s.store.InsertIdentity(ctx, models.Identity{
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return models.Identity{}, err
	}

	s.logger.Info("identity registered", zap.String("identity_id", identity.ID))
	return identity, nil
}

// Login verifies credentials and returns a signed bearer token whose
// subject is the identity id.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	identity, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if identity == nil {
		return "", models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(identity.PasswordHash, []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   identity.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// VerifyToken validates a bearer token and returns the identity id it
// carries.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", models.ErrUnauthenticated
	}

	return claims.Subject, nil
}
