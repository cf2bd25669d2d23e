package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"anoa.com/typingarena/internal/entity"
	analyticsRepo "anoa.com/typingarena/internal/modules/analytics/repository"
	"anoa.com/typingarena/internal/modules/user/dto"
	"anoa.com/typingarena/internal/modules/user/repository"
	"anoa.com/typingarena/internal/queue"
	"anoa.com/typingarena/pkg/apperror"
	"anoa.com/typingarena/pkg/cache"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, input dto.RefreshInput) (*dto.AuthResponse, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error
}

type tokenClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

type authService struct {
	repo          repository.UserRepository
	analyticsRepo analyticsRepo.AnalyticsRepository
	cache         cache.Cache
	jobs          queue.Enqueuer
	secret        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	otpTTL        time.Duration
}

func NewAuthService(
	repo repository.UserRepository,
	analytics analyticsRepo.AnalyticsRepository,
	c cache.Cache,
	jobs queue.Enqueuer,
	secret string,
	accessTTL, refreshTTL, otpTTL time.Duration,
) AuthService {
	return &authService{
		repo:          repo,
		analyticsRepo: analytics,
		cache:         c,
		jobs:          jobs,
		secret:        secret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		otpTTL:        otpTTL,
	}
}

// Register creates the user and its empty analytics record. The record
// exists from this moment on; submissions only ever update it.
func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.analyticsRepo.Create(ctx, entity.NewAnalyticsRecord(user.ID)); err != nil {
		// The user exists without a record; submissions will 404 until a
		// retry path recreates it. Surface the failure.
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.AuthResponse, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(input.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid || claims.TokenUse != "refresh" {
		return nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GetMe(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// DeleteAccount removes the user, then its analytics record. Best-effort
// two-step: a record briefly orphaned by a crash between the steps is
// tolerated and cleaned up on the next delete attempt.
func (s *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.analyticsRepo.DeleteByUserID(ctx, userID); err != nil {
		log.Printf("auth: failed to cascade analytics delete for user %s: %v", userID, err)
	}
	return nil
}

// RequestPasswordReset stores a short-lived OTP and queues the mail at high
// priority. Unknown emails are reported as NotFound by design parity with
// the other operations.
func (s *authService) RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	if err := s.cache.Set(ctx, otpKey(user.Email), []byte(otp), s.otpTTL); err != nil {
		return err
	}

	return s.jobs.Enqueue(ctx, queue.TypeSendEmail, queue.PriorityHigh, queue.EmailPayload{
		To:      user.Email,
		Subject: "Your password reset code",
		Body: fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in %d minutes.\n",
			user.FirstName, otp, int(s.otpTTL.Minutes())),
	})
}

func (s *authService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return err
	}

	stored, ok, err := s.cache.Get(ctx, otpKey(user.Email))
	if err != nil {
		return err
	}
	if !ok || subtle.ConstantTimeCompare(stored, []byte(input.OTP)) != 1 {
		return apperror.ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hashed)); err != nil {
		return err
	}

	// Consume the code; if the delete fails the TTL still bounds reuse.
	if err := s.cache.Del(ctx, otpKey(user.Email)); err != nil {
		log.Printf("auth: failed to delete consumed OTP for %s: %v", user.Email, err)
	}
	return nil
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	access, expiresAt, err := s.generateToken(user, "access", s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.generateToken(user, "refresh", s.refreshTTL)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    expiresAt,
		User:         user,
	}, nil
}

func (s *authService) generateToken(user *entity.User, use string, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl)

	claims := tokenClaims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
