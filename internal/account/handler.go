package account

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/transport"
	"github.com/frahmantamala/shopfront/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, query ListQuery, base *url.URL) (*AccountPage, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

// GetCurrentAccount handles GET /api/users/me/
func (h *Handler) GetCurrentAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, internal.ErrAuthenticationNeeded)
		return
	}

	a, err := h.Service.GetByID(r.Context(), principal.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a.ToResponse())
}

// ListAccounts handles GET /api/users/
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	query := ParseListQuery(r.URL.Query())

	page, err := h.Service.List(r.Context(), query, requestURL(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	logger.From(r.Context()).Debug("listed accounts", "page", query.Page, "count", page.Count)
	h.WriteJSON(w, http.StatusOK, page)
}

// GetAccount handles GET /api/users/{id}/
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(w, internal.NewValidationError("invalid account id", internal.ErrCodeInvalidFormat))
		return
	}

	a, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a.ToResponse())
}

func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	return &u
}
