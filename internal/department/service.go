package department

import (
	"log/slog"
	"strings"

	"github.com/adiwijaya/course-management/internal"
)

type Repository interface {
	List() ([]*Department, error)
	GetByID(id int64) (*Department, error)
	GetByName(name string) (*Department, error)
	CodeExists(code string, excludeID int64) (bool, error)
	NameExists(name string, excludeID int64) (bool, error)
	Create(d *Department) error
	Update(d *Department) error
	Delete(id int64) error
	CountEmployees(name string) (int64, error)
	CountCourses(name string) (int64, error)
	SubdepartmentExists(departmentID int64, name string) (bool, error)
	AddSubdepartment(sub *Subdepartment) error
	DeleteSubdepartment(departmentID, subID int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List() ([]*Department, error) {
	departments, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	for _, d := range departments {
		s.attachCounts(d)
	}
	return departments, nil
}

func (s *Service) GetByID(id int64) (*Department, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.attachCounts(d)
	return d, nil
}

func (s *Service) Create(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(dto.Code))
	if exists, err := s.repo.CodeExists(code, 0); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	} else if exists {
		return nil, internal.ErrDuplicateCode
	}

	name := strings.TrimSpace(dto.Name)
	if exists, err := s.repo.NameExists(name, 0); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	} else if exists {
		return nil, internal.NewValidationFieldError("name", "The name has already been taken.")
	}

	status := StatusActive
	if dto.Status != "" {
		status, _ = ParseStatus(dto.Status)
	}

	d := &Department{
		Name:        name,
		Code:        code,
		Head:        strings.TrimSpace(dto.Head),
		Description: dto.Description,
		Status:      status,
	}
	for _, sub := range dto.Subdepartments {
		d.Subdepartments = append(d.Subdepartments, Subdepartment{
			Name:        strings.TrimSpace(sub.Name),
			Description: sub.Description,
		})
	}

	if err := s.repo.Create(d); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create department", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", d.ID, "code", d.Code)
	return d, nil
}

func (s *Service) Update(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*dto.Code))
		if code != d.Code {
			if exists, err := s.repo.CodeExists(code, id); err != nil {
				return nil, internal.NewInternalError("failed to update department", err)
			} else if exists {
				return nil, internal.ErrDuplicateCode
			}
			d.Code = code
		}
	}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name != d.Name {
			if exists, err := s.repo.NameExists(name, id); err != nil {
				return nil, internal.NewInternalError("failed to update department", err)
			} else if exists {
				return nil, internal.NewValidationFieldError("name", "The name has already been taken.")
			}
			d.Name = name
		}
	}
	if dto.Head != nil {
		d.Head = strings.TrimSpace(*dto.Head)
	}
	if dto.Description != nil {
		d.Description = *dto.Description
	}
	if dto.Status != nil {
		d.Status, _ = ParseStatus(*dto.Status)
	}

	if err := s.repo.Update(d); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to update department", err)
	}

	s.logger.Info("department updated", "department_id", id)
	s.attachCounts(d)
	return d, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to delete department", err)
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

func (s *Service) AddSubdepartment(departmentID int64, dto SubdepartmentDTO) (*Subdepartment, error) {
	if strings.TrimSpace(dto.Name) == "" {
		return nil, internal.NewValidationFieldError("name", "Name is required.")
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil {
		return nil, err
	}

	sub := &Subdepartment{
		DepartmentID: d.ID,
		Name:         strings.TrimSpace(dto.Name),
		Description:  dto.Description,
	}
	if err := s.repo.AddSubdepartment(sub); err != nil {
		s.logger.Error("failed to add subdepartment", "error", err, "department_id", departmentID)
		return nil, internal.NewInternalError("failed to add subdepartment", err)
	}
	return sub, nil
}

func (s *Service) DeleteSubdepartment(departmentID, subID int64) error {
	if _, err := s.repo.GetByID(departmentID); err != nil {
		return err
	}
	if err := s.repo.DeleteSubdepartment(departmentID, subID); err != nil {
		s.logger.Error("failed to delete subdepartment", "error", err, "department_id", departmentID)
		return internal.NewInternalError("failed to delete subdepartment", err)
	}
	return nil
}

// SubdepartmentBelongs checks that a subdepartment name belongs to the named
// department. Used by the course service to validate the pair on writes.
func (s *Service) SubdepartmentBelongs(department, subdepartment string) (bool, error) {
	d, err := s.repo.GetByName(strings.TrimSpace(department))
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return false, nil
		}
		return false, err
	}
	return s.repo.SubdepartmentExists(d.ID, strings.TrimSpace(subdepartment))
}

func (s *Service) attachCounts(d *Department) {
	if n, err := s.repo.CountEmployees(d.Name); err == nil {
		d.EmployeeCount = n
	}
	if n, err := s.repo.CountCourses(d.Name); err == nil {
		d.CourseCount = n
	}
}
