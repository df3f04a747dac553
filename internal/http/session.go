package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"outlay/internal/auth"
	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/services"
	"outlay/internal/store"
)

const sessionCookie = "outlay_session"

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *auth.Session)

func (s *Server) currentSession(r *http.Request) (*auth.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// withPageSession sends visitors without a session to the login page.
func (s *Server) withPageSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			NewHTMXResponse().Redirect("/").Write(w, r)
			return
		}
		next(w, r.WithContext(withUser(r.Context(), sess)), sess)
	}
}

// withAPISession answers 401 to requests without a session.
func (s *Server) withAPISession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
			return
		}
		next(w, r.WithContext(withUser(r.Context(), sess)), sess)
	}
}

// withUser tags the request logger with the signed-in user.
func withUser(ctx context.Context, sess *auth.Session) context.Context {
	return log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUID, sess.Identity.UID))
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// actions returns the start operations bound to the session's user and store.
func (s *Server) actions(sess *auth.Session) *services.ExpenseActions {
	return services.NewExpenseActions(s.db, sess.Store, sess.Identity.UID)
}

// startSession builds the user's state cache: default filters, LOGIN, the
// full collection, and a watcher that keeps it current until the session
// ends.
func (s *Server) startSession(ctx context.Context, id auth.Identity) (*auth.Session, error) {
	st := store.New(store.State{Filters: core.DefaultFilters(s.now())})
	st.Dispatch(store.Login(id.UID))

	actions := services.NewExpenseActions(s.db, st, id.UID)
	if _, err := actions.StartSetExpenses(ctx); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	watchCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	if err := actions.StartWatch(watchCtx); err != nil {
		stop()
		return nil, err
	}
	return s.sessions.Create(id, st, stop), nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
