package journal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/emberlog/emberlog/internal/platform/httpx"
	"github.com/emberlog/emberlog/internal/rbac"
	"github.com/emberlog/emberlog/internal/shared"
)

// Handler exposes the journal mutations over JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

func (h *Handler) listEmotions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "1"
	emotions, err := h.service.ListEmotions(r.Context(), ownerID, includeDeleted)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"emotions": emotions})
}

func (h *Handler) createEmotion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	var req CreateEmotionRequest
	if !h.decode(w, r, &req) {
		return
	}
	emotion, err := h.service.AddEmotion(r.Context(), ownerID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, emotion)
}

func (h *Handler) updateEmotion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	var req UpdateEmotionRequest
	if !h.decode(w, r, &req) {
		return
	}
	emotion, err := h.service.UpdateEmotion(r.Context(), ownerID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emotion)
}

func (h *Handler) deleteEmotion(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	if err := h.service.SoftDeleteEmotion(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDays(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "1"
	days, err := h.service.ListDays(r.Context(), ownerID, includeDeleted)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"days": days})
}

func (h *Handler) createDay(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	var req CreateDayRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := h.service.AddDay(r.Context(), ownerID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, day)
}

func (h *Handler) updateDay(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	var req UpdateDayRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := h.service.UpdateDay(r.Context(), ownerID, chi.URLParam(r, "date"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, day)
}

func (h *Handler) deleteDay(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.currentOwner(w, r)
	if !ok {
		return
	}
	if err := h.service.SoftDeleteDay(r.Context(), ownerID, chi.URLParam(r, "date")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOwners(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListOwnerIDs(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"owners": ids})
}

func (h *Handler) deleteOwner(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SoftDeleteOwner(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func (h *Handler) currentOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Owner() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return "", false
	}
	return sess.Owner(), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		msgs := []string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				msgs = append(msgs, fe.Field()+": failed "+fe.Tag())
			}
		}
		httpx.ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", msgs)
		return false
	}
	return true
}

// respondError maps the journal error taxonomy onto transport statuses.
// errors.Is sees through ValidationErrors, so an aggregate containing a
// duplicate-date violation still maps to 409.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs ValidationErrors
	hasList := errors.As(err, &verrs)

	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "concurrent update, retry the request")
	case errors.Is(err, ErrDuplicateKey):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrCapacityExceeded):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Capacity Exceeded", err.Error())
	case errors.Is(err, ErrUnknownOrDeletedEmotion):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Emotion", err.Error())
	case errors.Is(err, ErrStorage):
		h.logger.Error("journal storage", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Storage Unavailable", "")
	case hasList:
		httpx.ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", verrs.Messages())
	default:
		h.logger.Error("journal handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
