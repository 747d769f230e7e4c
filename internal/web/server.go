package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/willemschots/newsroom/internal/auth"
	"github.com/willemschots/newsroom/internal/errorz"
	"github.com/willemschots/newsroom/internal/krypto"
	"github.com/willemschots/newsroom/internal/newsletter"
	"github.com/willemschots/newsroom/internal/subscriber"
	"github.com/willemschots/newsroom/internal/web/sessions"
)

const (
	csrfTokenField      = "csrf_token"
	csrfTokenCookieName = "newsroom-csrf"
)

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	SubscriberService *subscriber.Service
	NewsletterService *newsletter.Service
	SessionStore      *sessions.Store
}

// ServerConfig is the configuration for the server.
type ServerConfig struct {
	CSRFKey      krypto.Key
	SecureCookie bool
}

type Server struct {
	deps      *ServerDeps
	mux       *http.ServeMux
	decoder   *schema.Decoder
	browserMW func(http.Handler) http.Handler
}

func NewServer(deps *ServerDeps, cfg ServerConfig) *Server {
	s := &Server{
		deps:    deps,
		mux:     http.NewServeMux(),
		decoder: schema.NewDecoder(),
	}

	// Browser endpoints are wrapped with CSRF protection and the session
	// middleware. API endpoints are registered on the bare mux, they
	// don't carry cookies and services calling them can't be tricked
	// into cross-site requests.
	csrfMW := csrf.Protect(
		cfg.CSRFKey.SecretValue(),
		csrf.CookieName(csrfTokenCookieName),
		csrf.FieldName(csrfTokenField),
		csrf.Secure(cfg.SecureCookie),
	)
	sessMW := sessionMiddleware(s)
	s.browserMW = func(h http.Handler) http.Handler {
		return csrfMW(sessMW(h))
	}

	// Most endpoints below are created using the map functions. These
	// return handlers that automatically map between HTTP requests,
	// target functions and HTTP responses. The request mapping and
	// response writing is customizable.

	s.api("GET /health_check", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The {$} keeps this from becoming a catch-all for unknown paths.
	s.api("GET /{$}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePage(w, homePage())
	}))

	// Subscription endpoints.
	s.api("POST /subscriptions", mapRequest(s, deps.SubscriberService.Subscribe))

	{
		const route = "GET /subscriptions/confirm"
		h := mapRequest(s, deps.SubscriberService.Confirm)
		h.request(func(r *http.Request) (krypto.Token, error) {
			token, err := krypto.ParseToken(r.URL.Query().Get("subscription_token"))
			if err != nil {
				return krypto.Token{}, errorz.InvalidInput{
					errorz.Keyed{Key: "subscription_token", Err: err},
				}
			}

			return token, nil
		})
		h.failure(func(w http.ResponseWriter, r *http.Request, err error) {
			// An unknown token could belong to a subscriber that was
			// deleted, but it could just as well be forged.
			if errors.Is(err, subscriber.ErrUnknownToken) {
				http.Error(w, "unknown token", http.StatusUnauthorized)
				return
			}

			s.handleError(w, r, err)
		})

		s.api(route, h)
	}

	// Publish endpoint for API clients, authenticated per request with
	// HTTP basic auth.
	s.api("POST /newsletters", http.HandlerFunc(s.publishIssue))

	// Login endpoints.
	s.browser("GET /login", s.pageHandler(loginPage))

	{
		const route = "POST /login"
		h := mapBoth(s, deps.AuthService.ValidateCredentials)
		h.response(func(r result[auth.Credentials, uuid.UUID]) error {
			// The CSRF token is cleared so any token an attacker might
			// have captured before the login is worthless afterwards. A
			// new one is generated on the next GET request.
			http.SetCookie(r.w, &http.Cookie{
				Name:   csrfTokenCookieName,
				MaxAge: -1,
			})

			sess, err := sessionFromCtx(r.r.Context())
			if err != nil {
				return err
			}

			sess.SetUserID(r.out)
			err = r.s.deps.SessionStore.Save(r.r, r.w, sess)
			if err != nil {
				return err
			}

			http.Redirect(r.w, r.r, "/admin/dashboard", http.StatusSeeOther)
			return nil
		})
		h.failure(func(w http.ResponseWriter, r *http.Request, err error) {
			// Credentials that don't even decode (an empty or oversized
			// password) get the same treatment as wrong ones, the login
			// form should never render a bare error page.
			var invalid errorz.InvalidInput
			if errors.Is(err, auth.ErrInvalidCredentials) || errors.As(err, &invalid) {
				s.flashAndRedirect(w, r, "Authentication failed", "/login")
				return
			}

			s.handleError(w, r, err)
		})

		s.browser(route, h)
	}

	// Admin endpoints, everything below requires a logged in session.
	s.admin("GET /admin/dashboard", http.HandlerFunc(s.dashboard))

	s.admin("GET /admin/password", s.pageHandler(changePasswordPage))

	{
		const route = "POST /admin/password"
		h := mapRequest(s, deps.AuthService.ChangePassword)
		h.request(func(r *http.Request) (auth.ChangePassword, error) {
			in, err := defaultRequest[auth.ChangePassword](s, r)
			if err != nil {
				return in, err
			}

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				return in, errors.New("no user id in request context")
			}

			in.UserID = userID
			return in, nil
		})
		h.response(func(r result[auth.ChangePassword, struct{}]) error {
			r.s.flashAndRedirect(r.w, r.r, "Password changed successfully!", "/admin/password")
			return nil
		})
		h.failure(func(w http.ResponseWriter, r *http.Request, err error) {
			var weakErr *auth.WeakPasswordError

			switch {
			case errors.Is(err, auth.ErrPasswordMismatch):
				s.flashAndRedirect(w, r, "The new passwords need to match", "/admin/password")
			case errors.As(err, &weakErr):
				s.flashAndRedirect(w, r, weakErr.Error(), "/admin/password")
			case errors.Is(err, auth.ErrInvalidCredentials):
				s.flashAndRedirect(w, r, "The current password you entered is invalid", "/admin/password")
			default:
				s.handleError(w, r, err)
			}
		})

		s.admin(route, h)
	}

	s.admin("POST /admin/logout", http.HandlerFunc(s.logout))

	s.admin("GET /admin/newsletters", s.pageHandler(publishNewsletterPage))

	{
		const route = "POST /admin/newsletters"
		h := mapRequest(s, deps.NewsletterService.Publish)
		h.response(func(r result[newsletter.Issue, struct{}]) error {
			r.s.flashAndRedirect(r.w, r.r, "Newsletter published successfully!", "/admin/newsletters")
			return nil
		})

		s.admin(route, h)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) api(route string, h http.Handler) {
	s.mux.Handle(route, h)
}

func (s *Server) browser(route string, h http.Handler) {
	s.mux.Handle(route, s.browserMW(h))
}

func (s *Server) admin(route string, h http.Handler) {
	s.browser(route, s.loggedIn(h))
}

// pageHandler serves one of the inline HTML pages. Reading the flashes
// modifies the session, so it is saved before the page is written.
func (s *Server) pageHandler(page func(csrfToken string, flashes []any) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromCtx(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		flashes := sess.Flashes()
		err = s.deps.SessionStore.Save(r, w, sess)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		writePage(w, page(csrf.Token(r), flashes))
	}
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		s.handleError(w, r, errors.New("no user id in request context"))
		return
	}

	username, err := s.deps.AuthService.Username(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writePage(w, dashboardPage(username, csrf.Token(r)))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sess.DeleteUserID()
	sess.AddFlash("You have successfully logged out.")
	err = s.deps.SessionStore.Save(r, w, sess)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// publishRequest is the JSON body accepted by POST /newsletters.
type publishRequest struct {
	Title   string `json:"title"`
	Content struct {
		HTML string `json:"html"`
		Text string `json:"text"`
	} `json:"content"`
}

func (s *Server) publishIssue(w http.ResponseWriter, r *http.Request) {
	c, err := basicAuthCredentials(r)
	if err == nil {
		_, err = s.deps.AuthService.ValidateCredentials(r.Context(), c)
	}

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", `Basic realm="publish"`)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		s.handleError(w, r, err)
		return
	}

	var req publishRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		s.handleError(w, r, errorz.InvalidInput{err})
		return
	}

	issue := newsletter.Issue{
		Title: req.Title,
		HTML:  req.Content.HTML,
		Text:  req.Content.Text,
	}

	err = s.deps.NewsletterService.Publish(r.Context(), issue)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// flashAndRedirect stores a flash message in the session and redirects.
func (s *Server) flashAndRedirect(w http.ResponseWriter, r *http.Request, flash, target string) {
	sess, err := sessionFromCtx(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sess.AddFlash(flash)
	err = s.deps.SessionStore.Save(r, w, sess)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errorz.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var invalidInput errorz.InvalidInput
	if errors.As(err, &invalidInput) {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	s.deps.Logger.Error("internal server error", "url", r.URL.String(), "error", errorz.Chain(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
