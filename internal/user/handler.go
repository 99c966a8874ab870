package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/transport"
)

// ServiceAPI is the surface the handler needs from the user service.
type ServiceAPI interface {
	List(filter ListUsersFilter) ([]PublicUser, error)
	GetByID(id int64) (*User, error)
	Create(actorID int64, dto CreateUserDTO) (*User, error)
	Update(id int64, dto UpdateUserDTO) (*User, error)
	Delete(id int64) error
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
	filter := ListUsersFilter{
		Role:       r.URL.Query().Get("role"),
		Department: r.URL.Query().Get("department"),
		Status:     r.URL.Query().Get("status"),
	}

	users, err := h.service.List(filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.userID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"user": u.ToPublic()})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := FromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrUnauthenticated)
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("Invalid request body"))
		return
	}

	u, err := h.service.Create(actor.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully.",
		"user":    u.ToPublic(),
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.userID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("Invalid request body"))
		return
	}

	u, err := h.service.Update(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully.",
		"user":    u.ToPublic(),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.userID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.service.Delete(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully."})
}

func (h *Handler) userID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, internal.ErrUserNotFound
	}
	return id, nil
}
