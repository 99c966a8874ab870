package department

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/transport"
)

type ServiceAPI interface {
	List() ([]*Department, error)
	GetByID(id int64) (*Department, error)
	Create(dto CreateDepartmentDTO) (*Department, error)
	Update(id int64, dto UpdateDepartmentDTO) (*Department, error)
	Delete(id int64) error
	AddSubdepartment(departmentID int64, dto SubdepartmentDTO) (*Subdepartment, error)
	DeleteSubdepartment(departmentID, subID int64) error
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	d, err := h.service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"department": d})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("Invalid request body"))
		return
	}

	d, err := h.service.Create(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Department created successfully.",
		"department": d,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("Invalid request body"))
		return
	}

	d, err := h.service.Update(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Department updated successfully.",
		"department": d,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"message": "Department deleted successfully."})
}

func (h *Handler) AddSubdepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto SubdepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("Invalid request body"))
		return
	}

	sub, err := h.service.AddSubdepartment(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":       "Subdepartment added successfully.",
		"subdepartment": sub,
	})
}

func (h *Handler) DeleteSubdepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	subID, err := h.pathID(r, "subID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.service.DeleteSubdepartment(id, subID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"message": "Subdepartment deleted successfully."})
}

func (h *Handler) pathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		return 0, internal.ErrDepartmentNotFound
	}
	return id, nil
}
