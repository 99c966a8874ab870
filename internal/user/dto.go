package user

import (
	"net/mail"
	"strings"

	"github.com/adiwijaya/course-management/internal"
)

// CreateUserDTO is the admin create-user payload.
type CreateUserDTO struct {
	Name       string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

func (d CreateUserDTO) Validate() error {
	fields := internal.FieldErrors{}

	if strings.TrimSpace(d.Name) == "" {
		fields.Add("fullName", "Full name is required.")
	}
	if d.Email == "" {
		fields.Add("email", "Email is required.")
	} else if _, err := mail.ParseAddress(d.Email); err != nil {
		fields.Add("email", "Email must be a valid email address.")
	}
	if len(d.Password) < 8 {
		fields.Add("password", "Password must be at least 8 characters.")
	}

	role, ok := ParseRole(d.Role)
	if !ok {
		fields.Add("role", "Role must be one of Admin, Instructor, Employee.")
	}
	if d.Status != "" {
		if _, ok := ParseStatus(d.Status); !ok {
			fields.Add("status", "Status must be Active or Inactive.")
		}
	}

	// Employees must carry a department before the account exists.
	if ok && role == RoleEmployee && strings.TrimSpace(d.Department) == "" {
		fields.Add("department", "Department is required for Employee role.")
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}

// UpdateUserDTO uses pointers so absent fields are left untouched.
type UpdateUserDTO struct {
	Name       *string `json:"fullName"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Status     *string `json:"status"`
}

func (d UpdateUserDTO) Validate() error {
	fields := internal.FieldErrors{}

	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		fields.Add("fullName", "Full name cannot be empty.")
	}
	if d.Email != nil {
		if _, err := mail.ParseAddress(*d.Email); err != nil {
			fields.Add("email", "Email must be a valid email address.")
		}
	}
	if d.Password != nil && len(*d.Password) < 8 {
		fields.Add("password", "Password must be at least 8 characters.")
	}
	if d.Role != nil {
		if _, ok := ParseRole(*d.Role); !ok {
			fields.Add("role", "Role must be one of Admin, Instructor, Employee.")
		}
	}
	if d.Status != nil {
		if _, ok := ParseStatus(*d.Status); !ok {
			fields.Add("status", "Status must be Active or Inactive.")
		}
	}

	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}

// ListUsersFilter narrows the admin user listing.
type ListUsersFilter struct {
	Role       string
	Department string
	Status     string
}
