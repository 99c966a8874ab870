package course

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/content"
	"github.com/adiwijaya/course-management/internal/user"
)

// Repository is the scoped data access surface. The scoping lives in the
// queries themselves: the instructor and employee variants never return rows
// outside the caller's slice of the data, so a miss is indistinguishable from
// a nonexistent course.
type Repository interface {
	List(filter ListFilter) ([]*Course, error)
	ListByInstructor(instructorID int64) ([]*Course, error)
	ListActiveByDepartment(department string) ([]*Course, error)
	GetByID(id string) (*Course, error)
	GetOwned(id string, instructorID int64) (*Course, error)
	GetActiveInDepartment(id, department string) (*Course, error)
	TitleExists(normalized, excludeID string) (bool, error)
	CreateWithModules(c *Course, modules []*content.Module) error
	UpdateWithModules(c *Course, modules []*content.Module) error
	Delete(id string) error
}

// DepartmentVerifier answers whether a subdepartment belongs to a department.
type DepartmentVerifier interface {
	SubdepartmentBelongs(department, subdepartment string) (bool, error)
}

type Service struct {
	repo          Repository
	departments   DepartmentVerifier
	store         content.Store
	publicBaseURL string
	logger        *slog.Logger
}

func NewService(repo Repository, departments DepartmentVerifier, store content.Store, publicBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		departments:   departments,
		store:         store,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// ---- admin view ----

func (s *Service) ListAdmin(filter ListFilter) ([]*Course, error) {
	courses, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list courses", "error", err)
		return nil, internal.NewInternalError("failed to list courses", err)
	}
	s.decorateAll(courses)
	return courses, nil
}

func (s *Service) GetAdmin(id string) (*Course, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.decorate(c)
	return c, nil
}

// CreateAdmin creates a course on behalf of any instructor (or none).
func (s *Service) CreateAdmin(actor *user.User, dto CreateCourseDTO) (*Course, error) {
	return s.create(actor.ID, dto.InstructorID, dto)
}

func (s *Service) UpdateAdmin(id string, dto UpdateCourseDTO) (*Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(c, dto, true)
}

func (s *Service) DeleteAdmin(id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete course", "error", err, "course_id", id)
		return internal.NewInternalError("failed to delete course", err)
	}
	s.logger.Info("course deleted", "course_id", id)
	return nil
}

// ---- instructor view ----

func (s *Service) ListOwned(actor *user.User) ([]*Course, error) {
	courses, err := s.repo.ListByInstructor(actor.ID)
	if err != nil {
		s.logger.Error("failed to list instructor courses", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list courses", err)
	}
	s.decorateAll(courses)
	return courses, nil
}

// CreateOwn creates a course owned by the calling instructor.
func (s *Service) CreateOwn(actor *user.User, dto CreateCourseDTO) (*Course, error) {
	return s.create(actor.ID, &actor.ID, dto)
}

// UpdateOwn updates one of the caller's own courses. The ownership check is
// part of the lookup itself, so a crafted id belonging to another instructor
// comes back as NotFound, never Forbidden.
func (s *Service) UpdateOwn(actor *user.User, id string, dto UpdateCourseDTO) (*Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetOwned(id, actor.ID)
	if err != nil {
		return nil, err
	}

	// Instructors may only touch title, description and status.
	trimmed := UpdateCourseDTO{
		Title:       dto.Title,
		Description: dto.Description,
		Status:      dto.Status,
		Modules:     dto.Modules,
	}
	return s.applyUpdate(c, trimmed, false)
}

type InstructorDashboard struct {
	User          user.PublicUser `json:"user"`
	TotalCourses  int             `json:"total_courses"`
	ActiveCourses int             `json:"active_courses"`
	DraftCourses  int             `json:"draft_courses"`
	Courses       []*Course       `json:"courses"`
}

func (s *Service) DashboardForInstructor(actor *user.User) (*InstructorDashboard, error) {
	courses, err := s.ListOwned(actor)
	if err != nil {
		return nil, err
	}

	dash := &InstructorDashboard{
		User:         actor.ToPublic(),
		TotalCourses: len(courses),
		Courses:      courses,
	}
	for _, c := range courses {
		switch c.Status {
		case StatusActive:
			dash.ActiveCourses++
		case StatusDraft:
			dash.DraftCourses++
		}
	}
	return dash, nil
}

// ---- employee view ----

// ListForDepartment returns the active courses of one department. Callers
// pass the department resolved by the department gate, never raw user input.
func (s *Service) ListForDepartment(department string) ([]*Course, error) {
	courses, err := s.repo.ListActiveByDepartment(department)
	if err != nil {
		s.logger.Error("failed to list department courses", "error", err, "department", department)
		return nil, internal.NewInternalError("failed to list courses", err)
	}
	s.decorateAll(courses)
	return courses, nil
}

// GetForDepartment re-applies the department+active predicate on a direct id
// fetch. A guessed id from another department is a plain NotFound.
func (s *Service) GetForDepartment(id, department string) (*Course, error) {
	c, err := s.repo.GetActiveInDepartment(id, department)
	if err != nil {
		return nil, err
	}
	s.decorate(c)
	return c, nil
}

type EmployeeDashboard struct {
	User         user.PublicUser `json:"user"`
	Courses      []*Course       `json:"courses"`
	TotalCourses int             `json:"total_courses"`
}

func (s *Service) DashboardForEmployee(actor *user.User, department string) (*EmployeeDashboard, error) {
	courses, err := s.ListForDepartment(department)
	if err != nil {
		return nil, err
	}
	return &EmployeeDashboard{
		User:         actor.ToPublic(),
		Courses:      courses,
		TotalCourses: len(courses),
	}, nil
}

// ---- shared internals ----

func (s *Service) create(creatorID int64, instructorID *int64, dto CreateCourseDTO) (*Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkSubdepartment(dto.Department, dto.Subdepartment); err != nil {
		return nil, err
	}

	normalized := NormalizeTitle(dto.Title)
	exists, err := s.repo.TitleExists(normalized, "")
	if err != nil {
		return nil, internal.NewInternalError("failed to create course", err)
	}
	if exists {
		return nil, internal.ErrDuplicateTitle
	}

	status := StatusActive
	if dto.Status != "" {
		status, _ = ParseStatus(dto.Status)
	}

	c := &Course{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(dto.Title),
		TitleNormalized: normalized,
		Description:     dto.Description,
		Department:      strings.TrimSpace(dto.Department),
		Subdepartment:   strings.TrimSpace(dto.Subdepartment),
		Status:          status,
		InstructorID:    instructorID,
		CreatedBy:       creatorID,
	}

	modules, err := s.prepareModules(c.ID, dto.Modules)
	if err != nil {
		return nil, err
	}

	// Course row and module rows land in one transaction; the unique index
	// on title_normalized closes the duplicate race the pre-check leaves open.
	if err := s.repo.CreateWithModules(c, modules); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create course", "error", err, "title", c.Title)
		return nil, internal.NewInternalError("failed to create course", err)
	}

	s.logger.Info("course created", "course_id", c.ID, "created_by", creatorID, "modules", len(modules))
	s.decorate(c)
	return c, nil
}

func (s *Service) applyUpdate(c *Course, dto UpdateCourseDTO, allowOwnership bool) (*Course, error) {
	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		normalized := NormalizeTitle(title)
		if normalized != c.TitleNormalized {
			exists, err := s.repo.TitleExists(normalized, c.ID)
			if err != nil {
				return nil, internal.NewInternalError("failed to update course", err)
			}
			if exists {
				return nil, internal.ErrDuplicateTitle
			}
		}
		c.Title = title
		c.TitleNormalized = normalized
	}
	if dto.Description != nil {
		c.Description = *dto.Description
	}
	if dto.Department != nil {
		c.Department = strings.TrimSpace(*dto.Department)
	}
	if dto.Subdepartment != nil {
		c.Subdepartment = strings.TrimSpace(*dto.Subdepartment)
	}
	if err := s.checkSubdepartment(c.Department, c.Subdepartment); err != nil {
		return nil, err
	}
	if dto.Status != nil {
		c.Status, _ = ParseStatus(*dto.Status)
	}
	if allowOwnership && dto.InstructorID != nil {
		c.InstructorID = dto.InstructorID
	}

	modules, err := s.prepareModules(c.ID, dto.Modules)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWithModules(c, modules); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update course", "error", err, "course_id", c.ID)
		return nil, internal.NewInternalError("failed to update course", err)
	}

	s.logger.Info("course updated", "course_id", c.ID, "new_modules", len(modules))

	updated, err := s.repo.GetByID(c.ID)
	if err != nil {
		return c, nil
	}
	s.decorate(updated)
	return updated, nil
}

func (s *Service) checkSubdepartment(department, subdepartment string) error {
	if department == "" || subdepartment == "" {
		return nil
	}
	ok, err := s.departments.SubdepartmentBelongs(department, subdepartment)
	if err != nil {
		return internal.NewInternalError("failed to verify subdepartment", err)
	}
	if !ok {
		return internal.NewValidationFieldError("subdepartment",
			"Selected sub department does not belong to the selected department.")
	}
	return nil
}

// prepareModules writes every uploaded file to durable storage and builds the
// module rows. Entries without a file are skipped with a warning; the course
// mutation still succeeds. Files hit disk before any row exists, so a crash
// here orphans files at worst, never rows.
func (s *Service) prepareModules(courseID string, uploads []ModuleUpload) ([]*content.Module, error) {
	var modules []*content.Module
	for i, up := range uploads {
		if up.File == nil {
			s.logger.Warn("skipping module entry without file", "course_id", courseID, "index", i, "title", up.Title)
			continue
		}

		relPath, err := s.store.Save(courseID, up.Filename, up.File)
		if err != nil {
			s.logger.Error("failed to store module content", "error", err, "course_id", courseID, "index", i)
			return nil, internal.NewInternalError("failed to store module content", err)
		}

		title := strings.TrimSpace(up.Title)
		if title == "" {
			title = content.DefaultTitle
		}

		modules = append(modules, &content.Module{
			CourseID:    courseID,
			Title:       title,
			ContentPath: relPath,
		})
	}
	return modules, nil
}

func (s *Service) decorate(c *Course) {
	for i := range c.Modules {
		c.Modules[i].Decorate(s.publicBaseURL)
	}
}

func (s *Service) decorateAll(courses []*Course) {
	for _, c := range courses {
		s.decorate(c)
	}
}
