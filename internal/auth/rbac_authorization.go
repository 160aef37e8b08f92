package auth

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/frahmantamala/shopfront/internal"
	"github.com/frahmantamala/shopfront/internal/core/role"
	"github.com/frahmantamala/shopfront/internal/transport"
)

const (
	MessageAdminRequired           = "Admin role required"
	MessageAdminOrConsumerRequired = "Admin or Consumer role required"
)

// Allows reports whether an authenticated principal holds one of roles.
func Allows(user *internal.User, roles ...role.Role) bool {
	if user == nil || user.ID <= 0 {
		return false
	}
	return slices.Contains(roles, user.Role)
}

type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// RequireRoles answers 401 without a principal and 403 with message when its role is not listed.
func (ra *RBACAuthorization) RequireRoles(message string, roles ...role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.HandleError(w, internal.ErrAuthenticationNeeded)
				return
			}

			if !Allows(user, roles...) {
				ra.logger.WarnContext(r.Context(), "access denied",
					"account_id", user.ID,
					"role", user.Role,
					"required_roles", roles)
				ra.HandleError(w, internal.NewForbiddenError(message, internal.ErrCodeForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(MessageAdminRequired, role.Admin)
}

func (ra *RBACAuthorization) RequireAdminOrConsumer() func(http.Handler) http.Handler {
	return ra.RequireRoles(MessageAdminOrConsumerRequired, role.Admin, role.Consumer)
}
