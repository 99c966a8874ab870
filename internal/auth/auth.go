package auth

import (
	"time"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/user"
)

// Token abilities, derived from role at issuance time.
const (
	AbilityCoursesRead   = "courses:read"
	AbilityCoursesWrite  = "courses:write"
	AbilityCoursesDelete = "courses:delete"
	AbilityUsersManage   = "users:manage"
)

// AbilitiesForRole maps a role to its token abilities. The role enum is
// closed: an unrecognized role is an error, never a silent fallback.
func AbilitiesForRole(role user.Role) ([]string, error) {
	switch role {
	case user.RoleAdmin:
		return []string{AbilityCoursesRead, AbilityCoursesWrite, AbilityCoursesDelete, AbilityUsersManage}, nil
	case user.RoleInstructor:
		return []string{AbilityCoursesRead, AbilityCoursesWrite}, nil
	case user.RoleEmployee:
		return []string{AbilityCoursesRead}, nil
	}
	return nil, internal.NewInternalError("unknown role: "+string(role), nil)
}

// AccessToken is the persisted half of a bearer credential. The token string
// handed to clients is a JWT whose jti must match a row here, so deleting the
// row revokes the token no matter how long the JWT would otherwise live.
type AccessToken struct {
	ID        string    `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Abilities string    `gorm:"column:abilities;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// TokenResult is what a successful bearer issuance returns.
type TokenResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	Abilities []string `json:"abilities"`
}
