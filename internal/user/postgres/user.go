package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(filter user.ListUsersFilter) ([]*user.User, error) {
	q := r.db.Order("created_at DESC")
	if filter.Role != "" {
		if role, ok := user.ParseRole(filter.Role); ok {
			q = q.Where("role = ?", role)
		}
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		if status, ok := user.ParseStatus(filter.Status); ok {
			q = q.Where("status = ?", status)
		}
	}

	var users []*user.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) EmailExists(email string, excludeID int64) (bool, error) {
	q := r.db.Model(&user.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(u *user.User) error {
	err := r.db.Create(u).Error
	if isUniqueViolation(err) {
		return internal.ErrDuplicateEmail
	}
	return err
}

func (r *Repository) Update(u *user.User) error {
	err := r.db.Save(u).Error
	if isUniqueViolation(err) {
		return internal.ErrDuplicateEmail
	}
	return err
}

// Delete removes the account row. The instructor_id FK on courses is declared
// ON DELETE SET NULL, so owned courses survive with no instructor.
func (r *Repository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&user.User{}).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
