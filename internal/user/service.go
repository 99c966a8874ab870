package user

import (
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/adiwijaya/course-management/internal"
)

// Repository is the data access surface the service needs.
type Repository interface {
	List(filter ListUsersFilter) ([]*User, error)
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	EmailExists(email string, excludeID int64) (bool, error)
	Create(u *User) error
	Update(u *User) error
	Delete(id int64) error
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(filter ListUsersFilter) ([]PublicUser, error) {
	users, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	views := make([]PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.ToPublic())
	}
	return views, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Create is the admin create-user path. actorID records who invited the account.
func (s *Service) Create(actorID int64, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(strings.ToLower(dto.Email), 0)
	if err != nil {
		s.logger.Error("email lookup failed", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	if exists {
		return nil, internal.NewValidationFieldError("email", "The email has already been taken.")
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	role, _ := ParseRole(dto.Role)
	status := StatusActive
	if dto.Status != "" {
		status, _ = ParseStatus(dto.Status)
	}

	u := &User{
		Name:         strings.TrimSpace(dto.Name),
		Email:        strings.ToLower(dto.Email),
		PasswordHash: hash,
		Role:         role,
		Department:   strings.TrimSpace(dto.Department),
		Status:       status,
	}
	if actorID != 0 {
		u.InvitedBy = &actorID
	}

	if err := s.repo.Create(u); err != nil {
		// The repo maps unique violations to the duplicate-email error, so a
		// concurrent create that slips past the pre-check still answers 422.
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create user", "error", err, "email", u.Email)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "invited_by", actorID)
	return u, nil
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	// Resolve the post-update role/department pair before touching anything,
	// so an employee can never end up without a department.
	newRole := u.Role
	if dto.Role != nil {
		newRole, _ = ParseRole(*dto.Role)
	}
	newDepartment := u.Department
	if dto.Department != nil {
		newDepartment = strings.TrimSpace(*dto.Department)
	}
	if newRole == RoleEmployee && newDepartment == "" {
		return nil, internal.NewValidationFieldError("department", "Department is required for Employee role.")
	}

	if dto.Email != nil {
		email := strings.ToLower(*dto.Email)
		if email != u.Email {
			exists, err := s.repo.EmailExists(email, id)
			if err != nil {
				return nil, internal.NewInternalError("failed to update user", err)
			}
			if exists {
				return nil, internal.NewValidationFieldError("email", "The email has already been taken.")
			}
			u.Email = email
		}
	}
	if dto.Name != nil {
		u.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Password != nil {
		hash, err := s.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to update user", err)
		}
		u.PasswordHash = hash
	}
	u.Role = newRole
	u.Department = newDepartment
	if dto.Status != nil {
		u.Status, _ = ParseStatus(*dto.Status)
	}

	if err := s.repo.Update(u); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.Info("user updated", "user_id", id, "role", u.Role)
	return u, nil
}

// Delete removes the account. Courses owned by a deleted instructor keep
// existing with instructor_id nulled by the FK, so referential integrity holds.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrUserNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
