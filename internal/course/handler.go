package course

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/transport"
	"github.com/adiwijaya/course-management/internal/user"
)

const maxUploadMemory = 32 << 20

// ServiceAPI is the surface the handler needs from the course service.
type ServiceAPI interface {
	ListAdmin(filter ListFilter) ([]*Course, error)
	GetAdmin(id string) (*Course, error)
	CreateAdmin(actor *user.User, dto CreateCourseDTO) (*Course, error)
	UpdateAdmin(id string, dto UpdateCourseDTO) (*Course, error)
	DeleteAdmin(id string) error

	ListOwned(actor *user.User) ([]*Course, error)
	CreateOwn(actor *user.User, dto CreateCourseDTO) (*Course, error)
	UpdateOwn(actor *user.User, id string, dto UpdateCourseDTO) (*Course, error)
	DashboardForInstructor(actor *user.User) (*InstructorDashboard, error)

	ListForDepartment(department string) ([]*Course, error)
	GetForDepartment(id, department string) (*Course, error)
	DashboardForEmployee(actor *user.User, department string) (*EmployeeDashboard, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
	logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
		logger:      logger,
	}
}

// ---- admin endpoints ----

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Department: r.URL.Query().Get("department"),
		Status:     r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("instructor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationFieldError("instructor_id", "Instructor id must be an integer."))
			return
		}
		filter.InstructorID = &id
	}

	courses, err := h.service.ListAdmin(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetAdmin(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"course": c})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	dto, closers, err := h.decodeCreate(r)
	defer closeAll(closers)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.service.CreateAdmin(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Course created successfully.",
		"course":  c,
	})
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	dto, closers, err := h.decodeUpdate(r)
	defer closeAll(closers)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.service.UpdateAdmin(chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Course updated successfully.",
		"course":  c,
	})
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAdmin(chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"message": "Course deleted successfully."})
}

// ---- instructor endpoints ----

func (h *Handler) InstructorDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	dash, err := h.service.DashboardForInstructor(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dash)
}

func (h *Handler) InstructorList(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	courses, err := h.service.ListOwned(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

func (h *Handler) InstructorCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	dto, closers, err := h.decodeCreate(r)
	defer closeAll(closers)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.service.CreateOwn(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Course created successfully.",
		"course":  c,
	})
}

func (h *Handler) InstructorUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	dto, closers, err := h.decodeUpdate(r)
	defer closeAll(closers)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.service.UpdateOwn(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Course updated successfully.",
		"course":  c,
	})
}

// ---- employee endpoints ----

func (h *Handler) EmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	department := internal.DepartmentFromContext(r.Context())
	dash, err := h.service.DashboardForEmployee(actor, department)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dash)
}

func (h *Handler) EmployeeList(w http.ResponseWriter, r *http.Request) {
	department := internal.DepartmentFromContext(r.Context())
	courses, err := h.service.ListForDepartment(department)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{
		"department": department,
		"courses":    courses,
	})
}

func (h *Handler) EmployeeShow(w http.ResponseWriter, r *http.Request) {
	department := internal.DepartmentFromContext(r.Context())
	c, err := h.service.GetForDepartment(chi.URLParam(r, "id"), department)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"course": c})
}

// ---- request decoding ----

// moduleFieldRe matches the bracketed multipart field names the SPA sends:
// modules[0][title] and modules[0][content].
var moduleFieldRe = regexp.MustCompile(`^modules\[(\d+)\]\[(title|content)\]$`)

func (h *Handler) decodeCreate(r *http.Request) (CreateCourseDTO, []io.Closer, error) {
	if isMultipart(r) {
		return h.decodeCreateMultipart(r)
	}

	var dto CreateCourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return dto, nil, internal.NewValidationError("Invalid request body")
	}
	return dto, nil, nil
}

func (h *Handler) decodeUpdate(r *http.Request) (UpdateCourseDTO, []io.Closer, error) {
	if isMultipart(r) {
		return h.decodeUpdateMultipart(r)
	}

	var dto UpdateCourseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return dto, nil, internal.NewValidationError("Invalid request body")
	}
	return dto, nil, nil
}

func (h *Handler) decodeCreateMultipart(r *http.Request) (CreateCourseDTO, []io.Closer, error) {
	var dto CreateCourseDTO
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return dto, nil, internal.NewValidationError("Invalid multipart request body")
	}

	dto.Title = r.FormValue("title")
	dto.Description = r.FormValue("description")
	dto.Department = r.FormValue("department")
	dto.Subdepartment = r.FormValue("subdepartment")
	dto.Status = r.FormValue("status")
	if raw := r.FormValue("instructor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return dto, nil, internal.NewValidationFieldError("instructor_id", "Instructor id must be an integer.")
		}
		dto.InstructorID = &id
	}

	modules, closers, err := h.parseModuleUploads(r)
	if err != nil {
		return dto, closers, err
	}
	dto.Modules = modules
	return dto, closers, nil
}

func (h *Handler) decodeUpdateMultipart(r *http.Request) (UpdateCourseDTO, []io.Closer, error) {
	var dto UpdateCourseDTO
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return dto, nil, internal.NewValidationError("Invalid multipart request body")
	}

	// Only fields actually present in the form are applied.
	assign := func(field string, dst **string) {
		if vals, ok := r.MultipartForm.Value[field]; ok && len(vals) > 0 {
			v := vals[0]
			*dst = &v
		}
	}
	assign("title", &dto.Title)
	assign("description", &dto.Description)
	assign("department", &dto.Department)
	assign("subdepartment", &dto.Subdepartment)
	assign("status", &dto.Status)
	if vals, ok := r.MultipartForm.Value["instructor_id"]; ok && len(vals) > 0 && vals[0] != "" {
		id, err := strconv.ParseInt(vals[0], 10, 64)
		if err != nil {
			return dto, nil, internal.NewValidationFieldError("instructor_id", "Instructor id must be an integer.")
		}
		dto.InstructorID = &id
	}

	modules, closers, err := h.parseModuleUploads(r)
	if err != nil {
		return dto, closers, err
	}
	dto.Modules = modules
	return dto, closers, nil
}

// parseModuleUploads reassembles the modules[] array from the flattened
// multipart field names. Entries are ordered by their bracket index; an entry
// may carry a title without a file, which the service skips.
func (h *Handler) parseModuleUploads(r *http.Request) ([]ModuleUpload, []io.Closer, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}

	entries := map[int]*ModuleUpload{}
	entry := func(idx int) *ModuleUpload {
		if e, ok := entries[idx]; ok {
			return e
		}
		e := &ModuleUpload{}
		entries[idx] = e
		return e
	}

	for name, vals := range r.MultipartForm.Value {
		m := moduleFieldRe.FindStringSubmatch(name)
		if m == nil || m[2] != "title" || len(vals) == 0 {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		entry(idx).Title = vals[0]
	}

	var closers []io.Closer
	for name, headers := range r.MultipartForm.File {
		m := moduleFieldRe.FindStringSubmatch(name)
		if m == nil || m[2] != "content" || len(headers) == 0 {
			continue
		}
		idx, _ := strconv.Atoi(m[1])

		f, err := headers[0].Open()
		if err != nil {
			return nil, closers, internal.NewValidationFieldError("modules", "Failed to read module upload.")
		}
		closers = append(closers, f)

		e := entry(idx)
		e.Filename = headers[0].Filename
		e.File = f
	}

	indexes := make([]int, 0, len(entries))
	for idx := range entries {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	modules := make([]ModuleUpload, 0, len(indexes))
	for _, idx := range indexes {
		modules = append(modules, *entries[idx])
	}
	return modules, closers, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
