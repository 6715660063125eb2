package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, and credential checks
type AuthService struct {
	userRepo             domain.UserRepository
	tokens               *auth.TokenManager
	allowPublicAdmin     bool
	allowPublicClinician bool
	logger               *slog.Logger
}

// NewAuthService creates a new authentication service. The allowPublic*
// gates control whether self-registration may claim elevated roles; when
// off, such requests are silently downgraded to patient.
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	allowPublicAdmin, allowPublicClinician bool,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo:             userRepo,
		tokens:               tokens,
		allowPublicAdmin:     allowPublicAdmin,
		allowPublicClinician: allowPublicClinician,
		logger:               logger,
	}
}

// AuthResult carries the user and session token produced by register/login
type AuthResult struct {
	User  *domain.User
	Token string
}

// Register creates a new account and issues a session token
func (s *AuthService) Register(fullName, email, password, requestedRole string) (*AuthResult, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" || password == "" {
		return nil, domain.Validation("full name, email, and password are required")
	}
	if len(password) < 8 {
		return nil, domain.Validation("password must be at least 8 characters")
	}

	role := s.resolveRole(requestedRole)

	existing, err := s.userRepo.GetByEmail(email)
	if err == nil && existing != nil {
		return nil, domain.Conflict("email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// resolveRole normalizes the requested role and downgrades elevated roles
// unless the matching public-registration gate is open.
func (s *AuthService) resolveRole(requested string) domain.Role {
	role, ok := domain.ParseRole(strings.ToLower(strings.TrimSpace(requested)))
	if !ok {
		return domain.RolePatient
	}
	if role == domain.RoleAdmin && !s.allowPublicAdmin {
		return domain.RolePatient
	}
	if role == domain.RoleClinician && !s.allowPublicClinician {
		return domain.RolePatient
	}
	return role
}

// Login authenticates a user and issues a session token. A disabled
// account fails with Forbidden even when the credentials are valid.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logger.Info("login attempt with non-existent email", slog.String("email", email))
		return nil, domain.Unauthenticated("invalid email or password")
	}

	if !user.IsActive {
		return nil, domain.Forbidden("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, domain.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to log in")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}
