package department

import (
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, true
	case StatusInactive:
		return StatusInactive, true
	}
	return "", false
}

// Department is an organizational unit. Courses and users reference it by
// name, not by id, so renames are an administrative operation with fallout.
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Code        string    `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Head        string    `json:"head,omitempty" gorm:"column:head"`
	Description string    `json:"description,omitempty" gorm:"column:description"`
	Status      Status    `json:"status" gorm:"column:status;not null;default:active"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`

	Subdepartments []Subdepartment `json:"subdepartments,omitempty" gorm:"foreignKey:DepartmentID;references:ID"`

	// Derived at read time, never stored.
	EmployeeCount int64 `json:"employee_count" gorm:"-"`
	CourseCount   int64 `json:"course_count" gorm:"-"`
}

func (Department) TableName() string {
	return "departments"
}

type Subdepartment struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	DepartmentID int64     `json:"department_id" gorm:"column:department_id;not null;index"`
	Name         string    `json:"name" gorm:"column:name;not null"`
	Description  string    `json:"description,omitempty" gorm:"column:description"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Subdepartment) TableName() string {
	return "subdepartments"
}
