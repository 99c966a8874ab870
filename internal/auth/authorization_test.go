package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/auth"
	"github.com/adiwijaya/course-management/internal/user"
)

var _ = Describe("Authorization", func() {
	var (
		authz *auth.Authorization
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		authz = auth.NewAuthorization(logger)
	})

	serve := func(mw func(http.Handler) http.Handler, u *user.User) (*httptest.ResponseRecorder, *http.Request) {
		var seen *http.Request
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if u != nil {
			req = req.WithContext(user.NewContext(req.Context(), u))
		}

		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		return rec, seen
	}

	decodeBody := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("RequireActive", func() {
		It("should answer 401 when no identity is resolved", func() {
			rec, seen := serve(authz.RequireActive(), nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(seen).To(BeNil())
		})

		It("should answer 403 for an inactive account", func() {
			rec, seen := serve(authz.RequireActive(), &user.User{ID: 1, Status: user.StatusInactive})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(seen).To(BeNil())
			Expect(decodeBody(rec)["message"]).To(ContainSubstring("inactive"))
		})

		It("should pass active accounts through", func() {
			rec, seen := serve(authz.RequireActive(), &user.User{ID: 1, Status: user.StatusActive})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seen).ToNot(BeNil())
		})
	})

	Describe("RequireRoles", func() {
		It("should answer 403 with the required and actual roles", func() {
			rec, seen := serve(
				authz.RequireRoles(user.RoleAdmin),
				&user.User{ID: 1, Role: user.RoleEmployee, Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(seen).To(BeNil())

			body := decodeBody(rec)
			Expect(body["required_role"]).To(ContainElement("Admin"))
			Expect(body["your_role"]).To(Equal("Employee"))
		})

		It("should allow any of the listed roles", func() {
			rec, _ := serve(
				authz.RequireRoles(user.RoleInstructor, user.RoleAdmin),
				&user.User{ID: 1, Role: user.RoleAdmin, Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should answer 401 when no identity is resolved", func() {
			rec, _ := serve(authz.RequireRoles(user.RoleAdmin), nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("RequireDepartment", func() {
		It("should let admins and instructors through untouched", func() {
			for _, role := range []user.Role{user.RoleAdmin, user.RoleInstructor} {
				rec, seen := serve(
					authz.RequireDepartment("Engineering"),
					&user.User{ID: 1, Role: role, Status: user.StatusActive},
				)
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(internal.DepartmentFromContext(seen.Context())).To(BeEmpty())
			}
		})

		It("should reject an employee without a department", func() {
			rec, _ := serve(
				authz.RequireDepartment(""),
				&user.User{ID: 1, Role: user.RoleEmployee, Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(decodeBody(rec)["message"]).To(ContainSubstring("No department"))
		})

		It("should reject an employee from another department and name both sides", func() {
			rec, seen := serve(
				authz.RequireDepartment("Finance"),
				&user.User{ID: 1, Role: user.RoleEmployee, Department: "Engineering", Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(seen).To(BeNil())

			body := decodeBody(rec)
			Expect(body["your_department"]).To(Equal("Engineering"))
			Expect(body["required_department"]).To(Equal("Finance"))
		})

		It("should compare departments case-insensitively", func() {
			rec, _ := serve(
				authz.RequireDepartment("engineering"),
				&user.User{ID: 1, Role: user.RoleEmployee, Department: "Engineering", Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should inject the employee's department into the request context", func() {
			rec, seen := serve(
				authz.RequireDepartment(""),
				&user.User{ID: 1, Role: user.RoleEmployee, Department: "Engineering", Status: user.StatusActive},
			)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(internal.DepartmentFromContext(seen.Context())).To(Equal("Engineering"))
		})
	})

	Describe("gate ordering", func() {
		It("should report inactive before role when both gates apply", func() {
			chain := authz.RequireActive()(authz.RequireRoles(user.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req = req.WithContext(user.NewContext(req.Context(),
				&user.User{ID: 1, Role: user.RoleEmployee, Status: user.StatusInactive}))

			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["message"]).To(ContainSubstring("inactive"))
		})
	})
})
