package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/transport"
	"github.com/adiwijaya/course-management/internal/user"
)

// Authorization holds the composable request gates. Route groups apply them in
// a fixed order: Authenticate -> RequireActive -> RequireRoles -> (optionally)
// RequireDepartment. Ordering matters: an inactive admin must see "inactive",
// not "forbidden", and only employee identities trigger department narrowing.
type Authorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewAuthorization(logger *slog.Logger) *Authorization {
	return &Authorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// RequireActive rejects anonymous requests with 401 and inactive accounts
// with 403 before any role or department check runs.
func (a *Authorization) RequireActive() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok || u == nil {
				a.WriteJSON(w, http.StatusUnauthorized, internal.ErrUnauthenticated)
				return
			}

			if !u.IsActive() {
				a.logger.Warn("request blocked: inactive account", "user_id", u.ID)
				a.WriteJSON(w, http.StatusForbidden, internal.ErrAccountInactive)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles allows only the given roles through. The 403 payload names the
// required set and the caller's actual role.
func (a *Authorization) RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	display := make([]string, len(roles))
	for i, role := range roles {
		display[i] = role.Display()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok || u == nil {
				a.WriteJSON(w, http.StatusUnauthorized, internal.ErrUnauthenticated)
				return
			}

			if !u.HasRole(roles...) {
				a.logger.Warn("request blocked: role not allowed",
					"user_id", u.ID,
					"required_roles", display,
					"user_role", u.Role)
				forbidden := internal.NewForbiddenError(
					"Forbidden. You do not have permission to access this resource.",
					internal.ErrCodeRoleForbidden,
				).WithExtra(map[string]any{
					"required_role": display,
					"your_role":     u.Role.Display(),
				})
				a.WriteJSON(w, http.StatusForbidden, forbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireDepartment narrows employee access to their own department. Admins
// and instructors pass through untouched. required may be empty, in which case
// only the route's {department} parameter (if any) is enforced. On success the
// employee's department is injected into the context as the implicit filter
// for downstream queries.
func (a *Authorization) RequireDepartment(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok || u == nil {
				a.WriteJSON(w, http.StatusUnauthorized, internal.ErrUnauthenticated)
				return
			}

			if u.IsAdmin() || u.IsInstructor() {
				next.ServeHTTP(w, r)
				return
			}

			if !u.IsEmployee() {
				// Closed role enum: anything else was rejected upstream.
				a.WriteJSON(w, http.StatusForbidden, internal.NewForbiddenError(
					"Forbidden. You do not have permission to access this resource.",
					internal.ErrCodeRoleForbidden,
				))
				return
			}

			if u.Department == "" {
				a.logger.Warn("request blocked: employee without department", "user_id", u.ID)
				a.WriteJSON(w, http.StatusForbidden, internal.ErrNoDepartment)
				return
			}

			if required != "" && !strings.EqualFold(u.Department, required) {
				a.writeDepartmentMismatch(w, u, required)
				return
			}

			if routeDept := chi.URLParam(r, "department"); routeDept != "" && !strings.EqualFold(u.Department, routeDept) {
				a.writeDepartmentMismatch(w, u, routeDept)
				return
			}

			ctx := internal.ContextWithDepartment(r.Context(), u.Department)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authorization) writeDepartmentMismatch(w http.ResponseWriter, u *user.User, required string) {
	a.logger.Warn("request blocked: department mismatch",
		"user_id", u.ID,
		"user_department", u.Department,
		"required_department", required)
	forbidden := internal.NewForbiddenError(
		"Forbidden. You cannot access resources from another department.",
		internal.ErrCodeDepartmentForbidden,
	).WithExtra(map[string]any{
		"your_department":     u.Department,
		"required_department": required,
	})
	a.WriteJSON(w, http.StatusForbidden, forbidden)
}
