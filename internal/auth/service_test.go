package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/auth"
	"github.com/adiwijaya/course-management/internal/user"
)

// Mock user repository for testing
type mockUserRepo struct {
	usersByEmail map[string]*user.User
	usersByID    map[int64]*user.User
	boundGoogle  map[int64]string
	bindError    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByEmail: make(map[string]*user.User),
		usersByID:    make(map[int64]*user.User),
		boundGoogle:  make(map[int64]string),
	}
}

func (m *mockUserRepo) add(u *user.User) {
	m.usersByEmail[strings.ToLower(u.Email)] = u
	m.usersByID[u.ID] = u
}

func (m *mockUserRepo) GetByEmail(email string) (*user.User, error) {
	u, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(id int64) (*user.User, error) {
	u, ok := m.usersByID[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepo) BindGoogleIdentity(userID int64, googleID string) error {
	if m.bindError != nil {
		return m.bindError
	}
	m.boundGoogle[userID] = googleID
	return nil
}

// Mock token store enforcing single-token-per-user semantics
type mockTokenStore struct {
	tokens       map[string]*auth.AccessToken
	replaceError error
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]*auth.AccessToken)}
}

func (m *mockTokenStore) Replace(token *auth.AccessToken) error {
	if m.replaceError != nil {
		return m.replaceError
	}
	for id, t := range m.tokens {
		if t.UserID == token.UserID {
			delete(m.tokens, id)
		}
	}
	token.CreatedAt = time.Now()
	m.tokens[token.ID] = token
	return nil
}

func (m *mockTokenStore) Get(id string) (*auth.AccessToken, error) {
	t, ok := m.tokens[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (m *mockTokenStore) Delete(id string) error {
	delete(m.tokens, id)
	return nil
}

func hashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).ToNot(HaveOccurred())
	return string(hash)
}

var _ = Describe("AuthService", func() {
	var (
		service    *auth.Service
		repo       *mockUserRepo
		tokenStore *mockTokenStore
		security   internal.SecurityConfig
		logger     *slog.Logger
	)

	BeforeEach(func() {
		repo = newMockUserRepo()
		tokenStore = newMockTokenStore()
		security = internal.SecurityConfig{
			TokenSecret:   "test-secret-at-least-32-characters!!",
			TokenDuration: time.Hour,
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := auth.NewJWTTokenGenerator(security.TokenSecret, security.TokenDuration)
		service = auth.NewService(repo, tokenStore, tokenGen, security, logger)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			repo.add(&user.User{
				ID:           1,
				Name:         "Active Employee",
				Email:        "employee@mail.com",
				PasswordHash: hashPassword("correct-password"),
				Role:         user.RoleEmployee,
				Department:   "Engineering",
				Status:       user.StatusActive,
			})
		})

		Context("when the email is unknown", func() {
			It("should return invalid credentials", func() {
				_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@mail.com", Password: "whatever"})
				Expect(err).To(Equal(internal.ErrInvalidCredentials))
			})
		})

		Context("when the password is wrong", func() {
			It("should return invalid credentials", func() {
				_, err := service.Authenticate(auth.LoginDTO{Email: "employee@mail.com", Password: "wrong"})
				Expect(err).To(Equal(internal.ErrInvalidCredentials))
			})
		})

		Context("when the account is inactive", func() {
			It("should return the inactive-account error, not invalid credentials", func() {
				repo.add(&user.User{
					ID:           2,
					Email:        "inactive@mail.com",
					PasswordHash: hashPassword("correct-password"),
					Role:         user.RoleAdmin,
					Status:       user.StatusInactive,
				})

				_, err := service.Authenticate(auth.LoginDTO{Email: "inactive@mail.com", Password: "correct-password"})
				Expect(err).To(Equal(internal.ErrAccountInactive))
			})

			It("should still report invalid credentials for a wrong password", func() {
				repo.add(&user.User{
					ID:           3,
					Email:        "inactive2@mail.com",
					PasswordHash: hashPassword("correct-password"),
					Role:         user.RoleAdmin,
					Status:       user.StatusInactive,
				})

				_, err := service.Authenticate(auth.LoginDTO{Email: "inactive2@mail.com", Password: "wrong"})
				Expect(err).To(Equal(internal.ErrInvalidCredentials))
			})
		})

		Context("when an employee has no department", func() {
			It("should reject the login", func() {
				repo.add(&user.User{
					ID:           4,
					Email:        "nodept@mail.com",
					PasswordHash: hashPassword("correct-password"),
					Role:         user.RoleEmployee,
					Status:       user.StatusActive,
				})

				_, err := service.Authenticate(auth.LoginDTO{Email: "nodept@mail.com", Password: "correct-password"})
				Expect(err).To(Equal(internal.ErrNoDepartment))
			})
		})

		Context("when a department allowlist is configured", func() {
			It("should reject employees from other departments", func() {
				security.AllowedDepartments = []string{"Finance"}
				tokenGen := auth.NewJWTTokenGenerator(security.TokenSecret, security.TokenDuration)
				service = auth.NewService(repo, tokenStore, tokenGen, security, logger)

				_, err := service.Authenticate(auth.LoginDTO{Email: "employee@mail.com", Password: "correct-password"})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentForbidden))
			})

			It("should match departments case-insensitively", func() {
				security.AllowedDepartments = []string{"engineering"}
				tokenGen := auth.NewJWTTokenGenerator(security.TokenSecret, security.TokenDuration)
				service = auth.NewService(repo, tokenStore, tokenGen, security, logger)

				u, err := service.Authenticate(auth.LoginDTO{Email: "employee@mail.com", Password: "correct-password"})
				Expect(err).ToNot(HaveOccurred())
				Expect(u.ID).To(Equal(int64(1)))
			})
		})

		Context("with valid credentials", func() {
			It("should return the user", func() {
				u, err := service.Authenticate(auth.LoginDTO{Email: "Employee@Mail.com", Password: "correct-password"})
				Expect(err).ToNot(HaveOccurred())
				Expect(u.Email).To(Equal("employee@mail.com"))
			})
		})
	})

	Describe("IssueToken and AuthenticateToken", func() {
		var admin *user.User

		BeforeEach(func() {
			admin = &user.User{
				ID:           10,
				Email:        "admin@mail.com",
				PasswordHash: hashPassword("pw"),
				Role:         user.RoleAdmin,
				Status:       user.StatusActive,
			}
			repo.add(admin)
		})

		It("should issue a token that authenticates back to the same user", func() {
			result, err := service.IssueToken(admin)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.TokenType).To(Equal("Bearer"))
			Expect(result.Abilities).To(ContainElement(auth.AbilityUsersManage))

			u, err := service.AuthenticateToken(result.Token)
			Expect(err).ToNot(HaveOccurred())
			Expect(u.ID).To(Equal(admin.ID))
		})

		It("should invalidate the previous token when a new one is issued", func() {
			first, err := service.IssueToken(admin)
			Expect(err).ToNot(HaveOccurred())
			second, err := service.IssueToken(admin)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.AuthenticateToken(first.Token)
			Expect(err).To(Equal(internal.ErrInvalidToken))

			u, err := service.AuthenticateToken(second.Token)
			Expect(err).ToNot(HaveOccurred())
			Expect(u.ID).To(Equal(admin.ID))
		})

		It("should scope abilities by role", func() {
			employee := &user.User{ID: 11, Role: user.RoleEmployee, Status: user.StatusActive}
			result, err := service.IssueToken(employee)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Abilities).To(ConsistOf(auth.AbilityCoursesRead))
		})

		It("should refuse to issue for an unknown role", func() {
			_, err := service.IssueToken(&user.User{ID: 12, Role: "superuser"})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a garbage token string", func() {
			_, err := service.AuthenticateToken("not-a-jwt")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidToken))
		})
	})

	Describe("RevokeToken", func() {
		It("should stop the token from authenticating", func() {
			admin := &user.User{ID: 20, Role: user.RoleAdmin, Status: user.StatusActive}
			repo.add(admin)

			result, err := service.IssueToken(admin)
			Expect(err).ToNot(HaveOccurred())

			service.RevokeToken(result.Token)

			_, err = service.AuthenticateToken(result.Token)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("should be a no-op for malformed or already-revoked tokens", func() {
			service.RevokeToken("garbage")

			admin := &user.User{ID: 21, Role: user.RoleAdmin, Status: user.StatusActive}
			repo.add(admin)
			result, err := service.IssueToken(admin)
			Expect(err).ToNot(HaveOccurred())

			service.RevokeToken(result.Token)
			service.RevokeToken(result.Token)
		})
	})

	Describe("VerifyGoogleIdentity", func() {
		var u *user.User

		BeforeEach(func() {
			u = &user.User{ID: 30, Email: "person@mail.com", Status: user.StatusActive}
			repo.add(u)
		})

		Context("when the provider email matches", func() {
			It("should bind the google identity", func() {
				err := service.VerifyGoogleIdentity(u, "google-123", "Person@Mail.com")
				Expect(err).ToNot(HaveOccurred())
				Expect(repo.boundGoogle[u.ID]).To(Equal("google-123"))
			})
		})

		Context("when the provider email differs", func() {
			It("should reject and leave the account untouched", func() {
				err := service.VerifyGoogleIdentity(u, "google-123", "other@mail.com")
				Expect(err).To(Equal(internal.ErrIdentityMismatch))
				Expect(repo.boundGoogle).ToNot(HaveKey(u.ID))
			})
		})
	})
})
