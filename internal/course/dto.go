package course

import (
	"io"
	"strings"

	"github.com/adiwijaya/course-management/internal"
)

// ModuleUpload is one entry of the multipart modules[] array. File is nil
// when the entry carried no upload; such entries are skipped, not rejected.
type ModuleUpload struct {
	Title    string
	Filename string
	File     io.Reader
}

type CreateCourseDTO struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Department    string         `json:"department"`
	Subdepartment string         `json:"subdepartment"`
	Status        string         `json:"status"`
	InstructorID  *int64         `json:"instructor_id"`
	Modules       []ModuleUpload `json:"-"`
}

func (d CreateCourseDTO) Validate() error {
	fields := internal.FieldErrors{}

	if strings.TrimSpace(d.Title) == "" {
		fields.Add("title", "Title is required.")
	} else if len(d.Title) > 255 {
		fields.Add("title", "Title may not be greater than 255 characters.")
	}
	if strings.TrimSpace(d.Department) == "" {
		fields.Add("department", "Department is required.")
	}
	if d.Status != "" {
		if _, ok := ParseStatus(d.Status); !ok {
			fields.Add("status", "Status must be one of Active, Inactive, Draft.")
		}
	}
	for _, m := range d.Modules {
		if m.File != nil && strings.TrimSpace(m.Filename) == "" {
			fields.Add("modules", "Module uploads must carry a filename.")
		}
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}

// UpdateCourseDTO uses pointers so absent fields stay untouched. The
// instructor-facing update path only honors Title, Description and Status.
type UpdateCourseDTO struct {
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	Department    *string        `json:"department"`
	Subdepartment *string        `json:"subdepartment"`
	Status        *string        `json:"status"`
	InstructorID  *int64         `json:"instructor_id"`
	Modules       []ModuleUpload `json:"-"`
}

func (d UpdateCourseDTO) Validate() error {
	fields := internal.FieldErrors{}

	if d.Title != nil {
		if strings.TrimSpace(*d.Title) == "" {
			fields.Add("title", "Title cannot be empty.")
		} else if len(*d.Title) > 255 {
			fields.Add("title", "Title may not be greater than 255 characters.")
		}
	}
	if d.Department != nil && strings.TrimSpace(*d.Department) == "" {
		fields.Add("department", "Department cannot be empty.")
	}
	if d.Status != nil {
		if _, ok := ParseStatus(*d.Status); !ok {
			fields.Add("status", "Status must be one of Active, Inactive, Draft.")
		}
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}

// ListFilter narrows the admin course listing.
type ListFilter struct {
	Department   string
	Status       string
	InstructorID *int64
}
