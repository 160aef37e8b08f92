package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/transport"
	"github.com/frahmantamala/shopfront/pkg/logger"
)

type ServiceAPI interface {
	SignInWithGoogle(ctx context.Context, dto GoogleSignInDTO) (*SignInResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	VerifyToken(token string) error
	Authenticate(ctx context.Context, accessToken string) (*internal.User, error)
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

// GoogleSignIn handles POST /api/auth/google/
func (h *Handler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var dto GoogleSignInDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	result, err := h.Service.SignInWithGoogle(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// RefreshToken handles POST /api/auth/token/refresh/
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.Refresh)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// VerifyToken handles POST /api/auth/token/verify/
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var dto VerifyTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.VerifyToken(dto.Token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, struct{}{})
}

// AuthMiddleware resolves the Bearer access token to a principal and stores it in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleError(w, internal.ErrAuthenticationNeeded)
			return
		}

		user, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithUser(r.Context(), user)
		ctx = logger.WithAccount(ctx, user.ID, user.Role.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
