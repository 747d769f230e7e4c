package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/willemschots/newsroom/internal/web/sessions"
)

// sessionMiddleware loads the session and injects it in the request
// context.
//
// A session that fails to decode is treated as if it wasn't there: the
// error is logged and the request continues with the fresh session the
// store hands out. Visitors with a tampered or outdated cookie end up
// anonymous instead of locked out.
func sessionMiddleware(srv *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := srv.deps.SessionStore.Get(r)
			if err != nil {
				srv.deps.Logger.Warn("failed to decode session, continuing with a new one",
					"url", r.URL.String(),
					"error", err,
				)
			}

			ctx := ctxWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type ctxKey string

const sessionCtxKey ctxKey = "_session"

func ctxWithSession(ctx context.Context, sess *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

func sessionFromCtx(ctx context.Context) (*sessions.Session, error) {
	sess, ok := ctx.Value(sessionCtxKey).(*sessions.Session)
	if !ok {
		return nil, fmt.Errorf("could not get session from context")
	}

	return sess, nil
}
