package department

import (
	"strings"

	"github.com/adiwijaya/course-management/internal"
)

type SubdepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateDepartmentDTO struct {
	Name           string             `json:"name"`
	Code           string             `json:"code"`
	Head           string             `json:"head"`
	Description    string             `json:"description"`
	Status         string             `json:"status"`
	Subdepartments []SubdepartmentDTO `json:"subdepartments"`
}

func (d CreateDepartmentDTO) Validate() error {
	fields := internal.FieldErrors{}

	if strings.TrimSpace(d.Name) == "" {
		fields.Add("name", "Name is required.")
	}
	if strings.TrimSpace(d.Code) == "" {
		fields.Add("code", "Code is required.")
	} else if len(d.Code) > 10 {
		fields.Add("code", "Code may not be greater than 10 characters.")
	}
	if d.Status != "" {
		if _, ok := ParseStatus(d.Status); !ok {
			fields.Add("status", "Status must be one of active, inactive.")
		}
	}
	for _, sub := range d.Subdepartments {
		if strings.TrimSpace(sub.Name) == "" {
			fields.Add("subdepartments", "Subdepartment name is required.")
		}
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Head        *string `json:"head"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (d UpdateDepartmentDTO) Validate() error {
	fields := internal.FieldErrors{}

	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		fields.Add("name", "Name cannot be empty.")
	}
	if d.Code != nil {
		if strings.TrimSpace(*d.Code) == "" {
			fields.Add("code", "Code cannot be empty.")
		} else if len(*d.Code) > 10 {
			fields.Add("code", "Code may not be greater than 10 characters.")
		}
	}
	if d.Status != nil {
		if _, ok := ParseStatus(*d.Status); !ok {
			fields.Add("status", "Status must be one of active, inactive.")
		}
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}
