package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func oauthConfigFor(srv *httptest.Server) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func TestGoogleProfileFromCode(t *testing.T) {
	srv := newFakeGoogle(t, `{"id":"g-1","email":"grace@example.com","verified_email":true,"name":"Grace","picture":"https://p/1.png"}`)
	oc := oauthConfigFor(srv)

	p, err := GoogleProfileFromCode(context.Background(), oc, srv.URL+"/userinfo", "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if p.Sub != "g-1" || p.Email != "grace@example.com" || p.Name != "Grace" || p.Picture != "https://p/1.png" {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := GoogleProfileFromCode(context.Background(), oc, srv.URL+"/userinfo", "bad-code"); err == nil {
		t.Fatal("bad code must fail")
	}
}

func TestGoogleProfileFromCodeRejectsUnverifiedEmail(t *testing.T) {
	srv := newFakeGoogle(t, `{"id":"g-1","email":"grace@example.com","verified_email":false}`)
	if _, err := GoogleProfileFromCode(context.Background(), oauthConfigFor(srv), srv.URL+"/userinfo", "good-code"); err == nil {
		t.Fatal("unverified email must fail")
	}
}

func TestGoogleProfileFromCodeDisabled(t *testing.T) {
	if _, err := GoogleProfileFromCode(context.Background(), nil, "", "x"); !errors.Is(err, ErrGoogleDisabled) {
		t.Fatalf("err = %v, want ErrGoogleDisabled", err)
	}
}
