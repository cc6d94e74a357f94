package links

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/httpx"
	"github.com/sundayezeilo/linkshelf/internal/identity"
)

// CreateLinkRequest is the JSON body of POST /links.
type CreateLinkRequest struct {
	Title       string  `json:"title" validate:"required,max=500"`
	URL         string  `json:"url" validate:"required,max=2048"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
}

// DeleteLinkRequest is the JSON body of DELETE /links.
type DeleteLinkRequest struct {
	LinkID string `json:"linkId" validate:"required"`
}

// UpdateCategoryRequest is the JSON body of PUT /links. An empty category
// clears it; an absent one is a missing parameter.
type UpdateCategoryRequest struct {
	LinkID   string  `json:"linkId" validate:"required"`
	Category *string `json:"category" validate:"required,max=100"`
}

// LinkResponse is the JSON shape of a link.
type LinkResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

func toResponse(l Link) LinkResponse {
	return LinkResponse{
		ID:          l.ID.String(),
		UserID:      l.UserID.String(),
		Title:       l.Title,
		URL:         l.URL,
		Description: l.Description,
		Category:    l.Category,
		SavedAt:     l.SavedAt,
	}
}

// Handler serves the /links and /categories endpoints.
type Handler struct {
	service    Service
	logger     *slog.Logger
	categories []string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service    Service
	Logger     *slog.Logger
	Categories []string // suggestions offered to clients; not enforced
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	categories := cfg.Categories
	if categories == nil {
		categories = []string{}
	}

	return &Handler{
		service:    cfg.Service,
		logger:     logger,
		categories: categories,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	caller := identity.FromContext(ctx)
	if caller.IsZero() {
		writeUnauthenticated(w)
		return
	}

	req, ok := decodeAndValidate[CreateLinkRequest](ctx, w, r, logger)
	if !ok {
		return
	}

	link, err := h.service.Create(ctx, caller, NewLink{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.handleError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"user_id", link.UserID.String(),
	)

	httpx.WriteJSON(w, http.StatusOK, toResponse(link))
}

// ListLinks handles GET /links. Optional query parameters: category (exact)
// and q (substring of title, url or description).
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	query := r.URL.Query()
	links, err := h.service.List(ctx, identity.FromContext(ctx), ListFilter{
		Category: query.Get("category"),
		Query:    query.Get("q"),
	})
	if err != nil {
		h.handleError(ctx, w, logger, err)
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, toResponse(l))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// DeleteLink handles DELETE /links.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	caller := identity.FromContext(ctx)
	if caller.IsZero() {
		writeUnauthenticated(w)
		return
	}

	req, ok := decodeAndValidate[DeleteLinkRequest](ctx, w, r, logger)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, caller, req.LinkID); err != nil {
		h.handleError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link deleted", "link_id", req.LinkID)
	httpx.WriteText(w, http.StatusOK, "Link deleted")
}

// UpdateCategory handles PUT /links.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	caller := identity.FromContext(ctx)
	if caller.IsZero() {
		writeUnauthenticated(w)
		return
	}

	req, ok := decodeAndValidate[UpdateCategoryRequest](ctx, w, r, logger)
	if !ok {
		return
	}

	link, err := h.service.UpdateCategory(ctx, caller, req.LinkID, *req.Category)
	if err != nil {
		h.handleError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link category updated",
		"link_id", link.ID.String(),
		"category", *req.Category,
	)
	httpx.WriteJSON(w, http.StatusOK, toResponse(link))
}

// Categories handles GET /categories.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.categories)
}

// decodeAndValidate writes the 400 response itself and reports ok=false when
// the body cannot be used.
func decodeAndValidate[T any](ctx context.Context, w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	req, err := httpx.DecodeJSON[T](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return req, false
	}

	if err := httpx.Validate(req); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err.Error())

		var verr *httpx.ValidationError
		if errors.As(err, &verr) && verr.HasMissing() {
			httpx.WriteError(w, http.StatusBadRequest, "missing_parameter", verr.Error(), nil)
		} else {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		}
		return req, false
	}
	return req, true
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
}

// handleError maps service errors to responses. Anything that is not one of
// the domain sentinels is reported as an opaque 500.
func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		writeUnauthenticated(w)

	case errors.Is(err, ErrMissingParameter):
		logger.WarnContext(ctx, "missing parameter", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "missing_parameter", "Missing required parameter", nil)

	case errors.Is(err, ErrOwnerNotFound):
		logger.WarnContext(ctx, "caller has no user record", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "User not found", nil)

	case errors.Is(err, ErrLinkNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Link not found", nil)

	case errors.Is(err, ErrForbidden):
		logger.WarnContext(ctx, "ownership check failed", logAttrs...)
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Forbidden", nil)

	default:
		logger.ErrorContext(ctx, "unexpected error", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Error", nil)
	}
}
