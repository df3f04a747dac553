package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleServer(t *testing.T, userinfo map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(srv *httptest.Server) *Google {
	return NewGoogle(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://outlay.example.com/auth/callback",
		Endpoint: &oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		APIEndpoint: srv.URL + "/",
	})
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client", RedirectURL: "https://outlay.example.com/auth/callback"})
	u, err := url.Parse(g.AuthCodeURL("st4te"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "https://outlay.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "userinfo.email")
}

func TestGoogle_Exchange(t *testing.T) {
	srv := newGoogleServer(t, map[string]string{"id": "1234", "email": "ada@example.com", "name": "Ada"})
	g := newTestGoogle(srv)

	id, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "1234", Email: "ada@example.com", Name: "Ada"}, id)
}

func TestGoogle_ExchangeBadCode(t *testing.T) {
	srv := newGoogleServer(t, map[string]string{"id": "1234"})
	_, err := newTestGoogle(srv).Exchange(context.Background(), "bad-code")
	assert.ErrorContains(t, err, "token exchange")
}

func TestGoogle_ExchangeWithoutID(t *testing.T) {
	srv := newGoogleServer(t, map[string]string{"email": "ada@example.com"})
	_, err := newTestGoogle(srv).Exchange(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrNoIdentity)
}
