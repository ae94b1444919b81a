package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/auth/token"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
}

type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, *token.Claims, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Phone    string
	Answer   string
}

// ProfileInput leaves a field unchanged when it is nil.
type ProfileInput struct {
	Name     *string
	Password *string
	Address  *string
	Phone    *string
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// CredentialService owns identities and their secrets. Raw secrets are
// hashed as soon as they arrive and hashes are never logged.
type CredentialService struct {
	repo   UserRepository
	hasher Hasher
	issuer TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

func NewCredentialService(repo UserRepository, hasher Hasher, issuer TokenIssuer, logger *zap.Logger) *CredentialService {
	return &CredentialService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail is the canonical form used as the login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(in.Email)

	existing, err := s.FindByContact(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("registration rejected, email taken")
		return nil, apperrors.NewCodedValidationError(apperrors.CodeDuplicateContact, "email is already registered",
			apperrors.ValidationDetail{Field: "email", Message: "email is already registered"})
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := s.hasher.Hash(normalizeAnswer(in.Answer))
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: passwordHash,
		AnswerHash:   answerHash,
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleBuyer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("userId", user.ID))
	return &user, nil
}

// FindByContact returns nil, nil when no identity owns email.
func (s *CredentialService) FindByContact(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *CredentialService) VerifySecret(user *domain.User, candidate string) bool {
	if user == nil {
		return false
	}
	return s.hasher.Verify(candidate, user.PasswordHash)
}

// Login answers unknown email and wrong password with the same error.
func (s *CredentialService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.FindByContact(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.VerifySecret(user, password) {
		s.logger.Info("login failed")
		return nil, apperrors.NewUnauthenticatedError("invalid email or password", nil)
	}

	raw, claims, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("userId", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{
		User:      user,
		Token:     raw,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ResetPassword replaces the password when answer matches the recovery
// answer given at registration.
func (s *CredentialService) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	user, err := s.FindByContact(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !s.hasher.Verify(normalizeAnswer(answer), user.AnswerHash) {
		return apperrors.NewNotFoundError("wrong email or answer")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, *user); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("userId", user.ID))
	return nil
}

func (s *CredentialService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.String("userId", user.ID))
	return user, nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
