package auth

import (
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
	"github.com/frahmantamala/revolv-ledger/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Tokens TokenValidator
}

func NewHandler(tokens TokenValidator) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Tokens:      tokens,
	}
}

// AuthMiddleware rejects requests without a valid bearer token and puts the
// token's user in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.HandleError(w, errors.ErrInvalidToken)
			return
		}

		claims, err := h.Tokens.ValidateToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		user := claims.User()
		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
