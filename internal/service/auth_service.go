package service

import (
	"context"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"
	"github.com/Jeng2004/t-double-project-sub000/internal/token"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 15 * time.Minute

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type AuthService interface {
	// Register stages the account and sends a one-time code; no user row
	// exists until the code is verified.
	Register(ctx context.Context, in RegisterInput) (signupToken uuid.UUID, err error)
	VerifyOTP(ctx context.Context, signupToken uuid.UUID, code string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

type authService struct {
	repo     *repository.Repository
	tokens   *token.Manager
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(repo *repository.Repository, tokens *token.Manager, notifier Notifier, log *zap.Logger) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	existing, err := s.repo.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return uuid.Nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, err
	}
	code, err := nanorand.Gen(6)
	if err != nil {
		return uuid.Nil, err
	}

	pending := &models.PendingSignup{
		Token:        uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		OTPCode:      code,
		ExpiresAt:    s.now().Add(otpTTL),
	}
	if err := s.repo.Signups.Upsert(ctx, pending); err != nil {
		return uuid.Nil, err
	}

	if err := s.notifier.SignupOTP(ctx, in.Email, code); err != nil {
		s.log.Warn("otp email failed", zap.String("email", in.Email), zap.Error(err))
	}

	// Opportunistic cleanup of stale signups.
	if n, err := s.repo.Signups.DeleteExpired(ctx, s.now()); err != nil {
		s.log.Warn("expired signup cleanup failed", zap.Error(err))
	} else if n > 0 {
		s.log.Debug("expired signups purged", zap.Int64("count", n))
	}

	return pending.Token, nil
}

func (s *authService) VerifyOTP(ctx context.Context, signupToken uuid.UUID, code string) (*models.User, string, error) {
	pending, err := s.repo.Signups.GetByToken(ctx, signupToken)
	if err != nil {
		return nil, "", err
	}
	if pending == nil {
		return nil, "", ErrSignupNotFound
	}
	if s.now().After(pending.ExpiresAt) {
		if err := s.repo.Signups.Delete(ctx, signupToken); err != nil {
			s.log.Warn("expired signup delete failed", zap.Error(err))
		}
		return nil, "", ErrOTPExpired
	}
	if pending.OTPCode != code {
		return nil, "", ErrOTPInvalid
	}

	user := &models.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Name:         pending.Name,
		Phone:        pending.Phone,
		Role:         models.RoleCustomer,
	}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	if err := s.repo.Signups.Delete(ctx, signupToken); err != nil {
		s.log.Warn("signup delete failed", zap.Error(err))
	}

	jwt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, jwt, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	jwt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, jwt, nil
}
