package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const userIDCtxKey ctxKey = "_userID"

func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}

	return userID, true
}

// loggedIn only lets requests with an authenticated session through.
// Anyone else is redirected to the login page. The user ID ends up in
// the request context, this gate is the only place that puts it there.
func (s *Server) loggedIn(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromCtx(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		userID, ok := sess.UserID()
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := ContextWithUserID(r.Context(), userID)
		handler.ServeHTTP(w, r.WithContext(ctx))
	})
}
