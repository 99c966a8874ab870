package auth

import "github.com/adiwijaya/course-management/internal"

// LoginDTO is the login request body. Token asks for a bearer credential in
// addition to the session cookie (API clients set it; the SPA leaves it off).
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    bool   `json:"token"`
}

func (d LoginDTO) Validate() error {
	fields := internal.FieldErrors{}
	if d.Email == "" {
		fields.Add("email", "Email is required.")
	}
	if d.Password == "" {
		fields.Add("password", "Password is required.")
	}
	if len(fields) > 0 {
		return internal.NewFieldErrors("Validation failed", fields)
	}
	return nil
}
