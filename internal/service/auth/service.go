package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/appointy/booking-api/internal/email"
	"github.com/appointy/booking-api/internal/model"
	"github.com/appointy/booking-api/internal/repository"
	"github.com/appointy/booking-api/internal/service/scheduling"
	"github.com/appointy/booking-api/pkg/auth"
	apperrors "github.com/appointy/booking-api/pkg/errors"
	"github.com/appointy/booking-api/pkg/logger"
)

const bcryptCost = 12

type Service struct {
	users      repository.UserRepository
	scheduling *scheduling.Service
	jwtSvc     auth.JWTService
	emailSvc   email.Service
	logger     *logger.Logger
	frontURL   string
}

func NewService(
	users repository.UserRepository,
	schedulingSvc *scheduling.Service,
	jwtSvc auth.JWTService,
	emailSvc email.Service,
	logger *logger.Logger,
	frontURL string,
) *Service {
	return &Service{
		users:      users,
		scheduling: schedulingSvc,
		jwtSvc:     jwtSvc,
		emailSvc:   emailSvc,
		logger:     logger,
		frontURL:   frontURL,
	}
}

// Register creates the user and, for providers, the empty schedule policy
// whose id rides inside the issued token. The welcome email is
// fire-and-forget.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, _ := s.users.GetByEmail(ctx, normalized); existing != nil {
		return "", apperrors.Conflict("user with that email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		Name:         fmt.Sprintf("%s %s", strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)),
		Email:        normalized,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	var policyID string
	if user.Role == model.UserRoleProvider {
		policy, err := s.scheduling.CreatePolicy(ctx, user.Email)
		if err != nil {
			return "", err
		}
		policyID = policy.ID.String()
	}

	token, err := s.jwtSvc.GenerateToken(user.Email, user.Name, string(user.Role), policyID)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	go func() {
		loginURL := fmt.Sprintf("%s/Dashboard/?firstlogin=%s", s.frontURL, token)
		if err := s.emailSvc.SendWelcome(context.Background(), user.Email, user.Name, loginURL); err != nil {
			s.logger.WithFields(map[string]interface{}{"email": user.Email}).
				Warn(err, "failed to send welcome email")
		}
	}()

	return token, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.NotFound("user", err)
		}
		return "", apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", apperrors.Forbidden("wrong password, access denied", err)
	}

	var policyID string
	if user.Role == model.UserRoleProvider {
		policy, err := s.scheduling.PolicyForProvider(ctx, user.Email)
		if err == nil && policy != nil {
			policyID = policy.ID.String()
		}
	}

	token, err := s.jwtSvc.GenerateToken(user.Email, user.Name, string(user.Role), policyID)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return token, nil
}

func (s *Service) ChangePassword(ctx context.Context, identity string, req *model.ChangePasswordRequest) error {
	user, err := s.users.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("user", err)
		}
		return apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperrors.Forbidden("wrong password, access denied", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	if err := s.users.UpdatePassword(ctx, user.Email, string(hash)); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
