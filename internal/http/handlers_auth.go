package http

import (
	"fmt"
	"net/http"

	"outlay/internal/auth"
	"outlay/internal/log"
	"outlay/internal/store"
)

type loginPage struct {
	Title    string
	Provider string
	Error    string
}

// handleIndex shows the login page, or the dashboard to signed-in users.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentSession(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{Title: "Outlay", Provider: s.provider.Name()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.provider.AuthCodeURL(s.sessions.NewState()), http.StatusFound)
}

// handleCallback finishes the provider login and starts the session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentAuth)
	q := r.URL.Query()

	fail := func(status int, msg string, err error) {
		logger.WarnContext(ctx, "Login failed", log.FieldError, err, log.FieldProvider, s.provider.Name())
		s.render(w, r, status, "login.html", loginPage{Title: "Outlay", Provider: s.provider.Name(), Error: msg})
	}

	if e := q.Get("error"); e != "" {
		fail(http.StatusUnauthorized, "Sign-in was cancelled.", fmt.Errorf("provider returned %q", e))
		return
	}
	if !s.sessions.ConsumeState(q.Get("state")) {
		fail(http.StatusBadRequest, "Your sign-in link expired, please try again.", auth.ErrInvalidState)
		return
	}

	identity, err := s.provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		fail(statusFor(err), publicMessage(err), err)
		return
	}

	sess, err := s.startSession(ctx, identity)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start session", log.FieldError, err, log.FieldUID, identity.UID)
		s.render(w, r, http.StatusInternalServerError, "login.html",
			loginPage{Title: "Outlay", Provider: s.provider.Name(), Error: publicMessage(err)})
		return
	}

	s.appMetrics.logins.Add(1)
	s.events.LogAuth(ctx, log.OpLogin, s.provider.Name(), identity.UID)
	s.setSessionCookie(w, sess.ID, 0)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout dispatches LOGOUT and ends the session, which stops its
// watcher.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	sess.Store.Dispatch(store.Logout())
	s.sessions.Destroy(sess.ID)
	s.setSessionCookie(w, "", -1)
	s.events.LogAuth(r.Context(), log.OpLogout, s.provider.Name(), sess.Identity.UID)
	NewHTMXResponse().Redirect("/").Write(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	s.render(w, r, http.StatusNotFound, "not_found.html", struct{ Title string }{"Not found"})
}
