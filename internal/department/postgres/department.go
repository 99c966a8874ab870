package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/department"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Preload("Subdepartments").Order("name ASC").Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *Repository) GetByID(id int64) (*department.Department, error) {
	var d department.Department
	err := r.db.Preload("Subdepartments").Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) GetByName(name string) (*department.Department, error) {
	var d department.Department
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) CodeExists(code string, excludeID int64) (bool, error) {
	q := r.db.Model(&department.Department{}).Where("UPPER(code) = ?", strings.ToUpper(code))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) NameExists(name string, excludeID int64) (bool, error) {
	q := r.db.Model(&department.Department{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the department and any nested subdepartments in one go;
// gorm cascades the association insert inside a single transaction.
func (r *Repository) Create(d *department.Department) error {
	err := r.db.Create(d).Error
	if isUniqueViolation(err) {
		return internal.ErrDuplicateCode
	}
	return err
}

func (r *Repository) Update(d *department.Department) error {
	err := r.db.Omit("Subdepartments").Save(d).Error
	if isUniqueViolation(err) {
		return internal.ErrDuplicateCode
	}
	return err
}

// Delete removes the department; subdepartment rows go via ON DELETE CASCADE.
func (r *Repository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&department.Department{}).Error
}

func (r *Repository) CountEmployees(name string) (int64, error) {
	var count int64
	err := r.db.Table("users").
		Where("department = ? AND role = ?", name, "employee").
		Count(&count).Error
	return count, err
}

func (r *Repository) CountCourses(name string) (int64, error) {
	var count int64
	err := r.db.Table("courses").Where("department = ?", name).Count(&count).Error
	return count, err
}

func (r *Repository) SubdepartmentExists(departmentID int64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&department.Subdepartment{}).
		Where("department_id = ? AND LOWER(name) = ?", departmentID, strings.ToLower(name)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) AddSubdepartment(sub *department.Subdepartment) error {
	return r.db.Create(sub).Error
}

func (r *Repository) DeleteSubdepartment(departmentID, subID int64) error {
	return r.db.Where("department_id = ? AND id = ?", departmentID, subID).
		Delete(&department.Subdepartment{}).Error
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
