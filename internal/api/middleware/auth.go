package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/policy"
	appErr "github.com/gigboard/engine/pkg/errors"
	"github.com/gigboard/engine/pkg/logger"
)

const actorKey ctxKey = "actor"

// TokenParser turns a bearer token into the actor it was issued to.
type TokenParser interface {
	Parse(token string) (policy.Actor, error)
}

// ActorResolver reloads the account a token was issued to.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uint) (policy.Actor, error)
}

// Auth validates a Bearer token, reloads its account and adds the actor to
// context. The role comes from the stored account, not the token.
func Auth(tokens TokenParser, users ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "authentication required", string(appErr.CodeUnauthorized))
				return
			}
			claimed, err := tokens.Parse(strings.TrimSpace(ah[len("Bearer "):]))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, appErr.Message(err), string(appErr.CodeUnauthorized))
				return
			}
			ctx := r.Context()
			actor, err := users.ResolveActor(ctx, claimed.ID)
			if err != nil {
				status := appErr.HTTPStatus(err)
				if status >= http.StatusInternalServerError {
					logger.Ctx(ctx).Error("resolve token account failed", zap.Uint("user_id", claimed.ID), zap.Error(err))
				}
				writeJSONError(w, status, appErr.Message(err), string(appErr.CodeOf(err)))
				return
			}
			noteActor(ctx, actor.ID)
			ctx = logger.WithContext(ctx, logger.Ctx(ctx).With(zap.Uint("actor_id", actor.ID)))
			ctx = WithActor(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated actors whose role is not listed.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required", string(appErr.CodeUnauthorized))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "insufficient permissions", string(appErr.CodeForbidden))
		})
	}
}

// WithActor stores the authenticated actor in ctx.
func WithActor(ctx context.Context, a policy.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(ctx context.Context) (policy.Actor, bool) {
	a, ok := ctx.Value(actorKey).(policy.Actor)
	return a, ok
}
