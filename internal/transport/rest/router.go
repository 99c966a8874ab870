package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/adiwijaya/course-management/internal/auth"
	"github.com/adiwijaya/course-management/internal/course"
	"github.com/adiwijaya/course-management/internal/department"
	"github.com/adiwijaya/course-management/internal/transport/middleware"
	"github.com/adiwijaya/course-management/internal/transport/swagger"
	"github.com/adiwijaya/course-management/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	Authorization *auth.Authorization
	Users         *user.Handler
	Courses       *course.Handler
	Departments   *department.Handler
}

// RegisterAllRoutes wires the route table. Every protected group applies the
// gates in the same order: Authenticate resolves identity, RequireActive
// rejects anonymous and inactive callers, RequireRoles narrows by role and
// RequireDepartment narrows employees to their own department.
func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, corsOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(corsOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/login", h.Auth.Login)

		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.Authenticate)

			ar.Post("/logout", h.Auth.Logout)

			ar.Group(func(pr chi.Router) {
				pr.Use(h.Authorization.RequireActive())

				pr.Get("/user", h.Auth.CurrentUser)
				pr.Get("/auth/google/redirect", h.Auth.GoogleRedirect)
			})

			// The callback carries no session-derived role yet; state lookup
			// inside the handler is the gate.
			ar.Get("/auth/google/callback", h.Auth.GoogleCallback)

			ar.Route("/admin", func(admin chi.Router) {
				admin.Use(h.Authorization.RequireActive())
				admin.Use(h.Authorization.RequireRoles(user.RoleAdmin))

				admin.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.Users.List)
					ur.Post("/", h.Users.Create)
					ur.Get("/{id}", h.Users.Get)
					ur.Put("/{id}", h.Users.Update)
					ur.Delete("/{id}", h.Users.Delete)
				})

				admin.Route("/courses", func(cr chi.Router) {
					cr.Get("/", h.Courses.AdminList)
					cr.Post("/", h.Courses.AdminCreate)
					cr.Get("/{id}", h.Courses.AdminGet)
					cr.Put("/{id}", h.Courses.AdminUpdate)
					cr.Delete("/{id}", h.Courses.AdminDelete)
				})

				admin.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Departments.List)
					dr.Post("/", h.Departments.Create)
					dr.Get("/{id}", h.Departments.Get)
					dr.Put("/{id}", h.Departments.Update)
					dr.Delete("/{id}", h.Departments.Delete)
					dr.Post("/{id}/subdepartments", h.Departments.AddSubdepartment)
					dr.Delete("/{id}/subdepartments/{subID}", h.Departments.DeleteSubdepartment)
				})
			})

			ar.Route("/instructor", func(ir chi.Router) {
				ir.Use(h.Authorization.RequireActive())
				ir.Use(h.Authorization.RequireRoles(user.RoleInstructor, user.RoleAdmin))

				ir.Get("/dashboard", h.Courses.InstructorDashboard)
				ir.Get("/courses", h.Courses.InstructorList)
				ir.Post("/courses", h.Courses.InstructorCreate)
				ir.Put("/courses/{id}", h.Courses.InstructorUpdate)
			})

			ar.Route("/employee", func(er chi.Router) {
				er.Use(h.Authorization.RequireActive())
				er.Use(h.Authorization.RequireRoles(user.RoleEmployee))
				er.Use(h.Authorization.RequireDepartment(""))

				er.Get("/dashboard", h.Courses.EmployeeDashboard)
				er.Get("/courses", h.Courses.EmployeeList)
				er.Get("/courses/{id}", h.Courses.EmployeeShow)
			})
		})
	})
}
