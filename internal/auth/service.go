package auth

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/user"
)

// UserRepository is the slice of user storage the auth service needs.
type UserRepository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	BindGoogleIdentity(userID int64, googleID string) error
}

// TokenStore persists bearer credentials. Replace must atomically drop every
// existing token for the user and insert the new one, so concurrent logins
// can never leave two valid tokens behind.
type TokenStore interface {
	Replace(token *AccessToken) error
	Get(id string) (*AccessToken, error)
	Delete(id string) error
}

type Service struct {
	users    UserRepository
	tokens   TokenStore
	tokenGen TokenGenerator
	security internal.SecurityConfig
	logger   *slog.Logger
}

func NewService(users UserRepository, tokens TokenStore, tokenGen TokenGenerator, security internal.SecurityConfig, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		tokenGen: tokenGen,
		security: security,
		logger:   logger,
	}
}

// Authenticate validates credentials and returns the account. The password is
// always compared before the status check so a wrong password on an inactive
// account reveals nothing.
func (s *Service) Authenticate(dto LoginDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(strings.ToLower(dto.Email))
	if err != nil {
		// Burn a hash comparison anyway so lookups and mismatches take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"), []byte(dto.Password))
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive() {
		s.logger.Warn("login rejected: inactive account", "user_id", u.ID)
		return nil, internal.ErrAccountInactive
	}

	if u.IsEmployee() {
		if u.Department == "" {
			s.logger.Warn("login rejected: employee without department", "user_id", u.ID)
			return nil, internal.ErrNoDepartment
		}
		if !s.security.DepartmentAllowed(u.Department) {
			s.logger.Warn("login rejected: department not allowed", "user_id", u.ID, "department", u.Department)
			return nil, internal.NewForbiddenError("Your department is not permitted to log in.", internal.ErrCodeDepartmentForbidden)
		}
	}

	return u, nil
}

// IssueToken creates the single active bearer credential for the user. Any
// previously issued token stops validating the moment this returns.
func (s *Service) IssueToken(u *user.User) (TokenResult, error) {
	abilities, err := AbilitiesForRole(u.Role)
	if err != nil {
		return TokenResult{}, err
	}

	record := &AccessToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Abilities: strings.Join(abilities, ","),
	}
	if err := s.tokens.Replace(record); err != nil {
		s.logger.Error("failed to store access token", "error", err, "user_id", u.ID)
		return TokenResult{}, internal.NewInternalError("failed to issue token", err)
	}

	tokenString, err := s.tokenGen.Generate(u.ID, record.ID)
	if err != nil {
		s.logger.Error("failed to sign access token", "error", err, "user_id", u.ID)
		return TokenResult{}, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("bearer token issued", "user_id", u.ID, "token_id", record.ID)

	return TokenResult{
		Token:     tokenString,
		TokenType: "Bearer",
		Abilities: abilities,
	}, nil
}

// AuthenticateToken resolves a bearer token string to its user. The signature
// must verify and the jti row must still exist; a revoked token fails here
// even though the JWT itself has not expired.
func (s *Service) AuthenticateToken(tokenString string) (*user.User, error) {
	claims, err := s.tokenGen.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.Get(claims.ID)
	if err != nil || record == nil || record.UserID != claims.UserID {
		return nil, internal.ErrInvalidToken
	}

	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	return u, nil
}

// RevokeToken drops the bearer credential the token string points at.
// Idempotent: revoking an already-revoked or malformed token is a no-op.
func (s *Service) RevokeToken(tokenString string) {
	claims, err := s.tokenGen.Parse(tokenString)
	if err != nil {
		return
	}
	if err := s.tokens.Delete(claims.ID); err != nil {
		s.logger.Warn("failed to delete access token", "error", err, "token_id", claims.ID)
	}
}

// GetUserByID loads the identity for session-based requests.
func (s *Service) GetUserByID(id int64) (*user.User, error) {
	return s.users.GetByID(id)
}

// VerifyGoogleIdentity binds an external Google account to the local account,
// but only when the provider-verified email matches the local one. On
// mismatch nothing about the account changes.
func (s *Service) VerifyGoogleIdentity(u *user.User, googleID, googleEmail string) error {
	if !strings.EqualFold(strings.TrimSpace(googleEmail), u.Email) {
		s.logger.Warn("google verification email mismatch", "user_id", u.ID)
		return internal.ErrIdentityMismatch
	}

	if err := s.users.BindGoogleIdentity(u.ID, googleID); err != nil {
		s.logger.Error("failed to bind google identity", "error", err, "user_id", u.ID)
		return internal.NewInternalError("failed to verify identity", err)
	}

	s.logger.Info("google identity verified", "user_id", u.ID)
	return nil
}
