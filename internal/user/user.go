package user

import (
	"strings"
	"time"
)

// Role is a closed enum. Anything outside the three known roles is rejected at
// the boundary instead of falling through to a low-privilege default.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleEmployee   Role = "employee"
)

// ParseRole normalizes a free-form role string to the stored lowercase form.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleEmployee:
		return RoleEmployee, true
	}
	return "", false
}

// Display returns the capitalized form used in API responses.
func (r Role) Display() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

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

type User struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"column:name;not null"`
	Email          string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"column:password_hash;not null"`
	Role           Role      `json:"-" gorm:"column:role;not null;default:employee"`
	Department     string    `json:"department,omitempty" gorm:"column:department"`
	Status         Status    `json:"status" gorm:"column:status;not null;default:active"`
	GoogleVerified bool      `json:"google_verified" gorm:"column:google_verified;default:false"`
	GoogleID       *string   `json:"-" gorm:"column:google_id;uniqueIndex"`
	InvitedBy      *int64    `json:"-" gorm:"column:invited_by"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// HasRole compares case-insensitively against a set of role names.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// PublicUser is the normalized identity view returned by the API. The password
// hash and token internals never appear here.
type PublicUser struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Department     string    `json:"department,omitempty"`
	Status         Status    `json:"status"`
	GoogleVerified bool      `json:"google_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role.Display(),
		Department:     u.Department,
		Status:         u.Status,
		GoogleVerified: u.GoogleVerified,
		CreatedAt:      u.CreatedAt,
	}
}
