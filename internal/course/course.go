package course

import (
	"strings"
	"time"

	"github.com/adiwijaya/course-management/internal/content"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusDraft    Status = "Draft"
)

func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, true
	case "inactive":
		return StatusInactive, true
	case "draft":
		return StatusDraft, true
	}
	return "", false
}

// Course is keyed by UUID. TitleNormalized backs the uniqueness rule: titles
// differing only in case or whitespace runs collide. InstructorID is nulled
// by the FK when the owning instructor is deleted.
type Course struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"column:title;not null"`
	TitleNormalized string    `json:"-" gorm:"column:title_normalized;uniqueIndex;not null"`
	Description     string    `json:"description,omitempty" gorm:"column:description"`
	Department      string    `json:"department" gorm:"column:department;not null;index"`
	Subdepartment   string    `json:"subdepartment,omitempty" gorm:"column:subdepartment"`
	Status          Status    `json:"status" gorm:"column:status;not null;default:Active"`
	InstructorID    *int64    `json:"instructor_id,omitempty" gorm:"column:instructor_id"`
	CreatedBy       int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`

	Instructor *Instructor      `json:"instructor,omitempty" gorm:"foreignKey:InstructorID;references:ID"`
	Modules    []content.Module `json:"modules,omitempty" gorm:"foreignKey:CourseID;references:ID"`
}

func (Course) TableName() string {
	return "courses"
}

// Instructor is the slim public view of the owning user that gets embedded in
// course responses.
type Instructor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (Instructor) TableName() string {
	return "users"
}

// NormalizeTitle lowercases and collapses whitespace runs. Idempotent:
// normalizing a normalized title is a no-op.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
