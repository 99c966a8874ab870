package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/content"
	"github.com/adiwijaya/course-management/internal/course"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(filter course.ListFilter) ([]*course.Course, error) {
	q := r.db.Preload("Instructor").Preload("Modules").Order("created_at DESC")
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		if status, ok := course.ParseStatus(filter.Status); ok {
			q = q.Where("status = ?", status)
		}
	}
	if filter.InstructorID != nil {
		q = q.Where("instructor_id = ?", *filter.InstructorID)
	}

	var courses []*course.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Repository) ListByInstructor(instructorID int64) ([]*course.Course, error) {
	var courses []*course.Course
	err := r.db.Preload("Modules").
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Repository) ListActiveByDepartment(department string) ([]*course.Course, error) {
	var courses []*course.Course
	err := r.db.Preload("Instructor").Preload("Modules").
		Where("department = ? AND status = ?", department, course.StatusActive).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Repository) GetByID(id string) (*course.Course, error) {
	var c course.Course
	err := r.db.Preload("Instructor").Preload("Modules").
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetOwned(id string, instructorID int64) (*course.Course, error) {
	var c course.Course
	err := r.db.Preload("Modules").
		Where("id = ? AND instructor_id = ?", id, instructorID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetActiveInDepartment(id, department string) (*course.Course, error) {
	var c course.Course
	err := r.db.Preload("Instructor").Preload("Modules").
		Where("id = ? AND department = ? AND status = ?", id, department, course.StatusActive).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) TitleExists(normalized, excludeID string) (bool, error) {
	q := r.db.Model(&course.Course{}).Where("title_normalized = ?", normalized)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithModules inserts the course and its module rows atomically. The
// unique index on title_normalized is the authority on duplicates; its
// violation surfaces as ErrDuplicateTitle regardless of any earlier pre-check.
func (r *Repository) CreateWithModules(c *course.Course, modules []*content.Module) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Instructor", "Modules").Create(c).Error; err != nil {
			return err
		}
		for _, m := range modules {
			m.CourseID = c.ID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return internal.ErrDuplicateTitle
	}
	return err
}

// UpdateWithModules saves the course row and appends any new module rows in
// one transaction. Existing modules are never touched here.
func (r *Repository) UpdateWithModules(c *course.Course, modules []*content.Module) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Instructor", "Modules").Save(c).Error; err != nil {
			return err
		}
		for _, m := range modules {
			m.CourseID = c.ID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return internal.ErrDuplicateTitle
	}
	return err
}

// Delete removes the course; module rows go with it via ON DELETE CASCADE.
func (r *Repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&course.Course{}).Error
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
