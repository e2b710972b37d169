package controller

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/service"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

const oauthStateKey = "oauth_state"

// OAuthController runs the Google authorization-code flow. Its handlers are plain
// net/http handlers mounted through the fiber adaptor, since gorilla sessions work
// on *http.Request / http.ResponseWriter.
type OAuthController struct {
	Service         *service.AuthService
	OAuth           *oauth2.Config
	UserInfoURL     string
	Store           sessions.Store
	SessionName     string
	SuccessRedirect string
}

func NewOAuthController(svc *service.AuthService, oc *oauth2.Config, store sessions.Store, sessionName, successRedirect string) *OAuthController {
	return &OAuthController{
		Service:         svc,
		OAuth:           oc,
		UserInfoURL:     service.GoogleUserInfoURL,
		Store:           store,
		SessionName:     sessionName,
		SuccessRedirect: successRedirect,
	}
}

// GET /api/auth/google
func (oc *OAuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if oc.OAuth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusServiceUnavailable)
		return
	}
	sess, _ := oc.Store.Get(r, oc.SessionName)
	state := randomHex(16)
	sess.Values[oauthStateKey] = state
	if err := sess.Save(r, w); err != nil {
		log.Printf("[ERROR] oauth: save session: %v", err)
		http.Error(w, "could not start sign-in", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, oc.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusTemporaryRedirect)
}

// GET /api/auth/google/callback
func (oc *OAuthController) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if oc.OAuth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusServiceUnavailable)
		return
	}
	sess, err := oc.Store.Get(r, oc.SessionName)
	if err != nil {
		log.Printf("[INFO] oauth: unreadable session: %v", err)
	}
	want, _ := sess.Values[oauthStateKey].(string)
	delete(sess.Values, oauthStateKey)
	if want == "" || r.FormValue("state") != want {
		log.Println("[INFO] oauth: invalid state")
		oc.fail(w, r, "invalid_state")
		return
	}
	if e := r.FormValue("error"); e != "" {
		oc.fail(w, r, e)
		return
	}

	profile, err := service.GoogleProfileFromCode(r.Context(), oc.OAuth, oc.UserInfoURL, r.FormValue("code"))
	if err != nil {
		log.Printf("[WARN] oauth: %v", err)
		oc.fail(w, r, "exchange_failed")
		return
	}
	author, err := oc.Service.UpsertGoogleAuthor(r.Context(), *profile)
	if err != nil {
		log.Printf("[WARN] oauth: upsert author: %v", err)
		oc.fail(w, r, "account_unavailable")
		return
	}

	sess.Values[authMiddleware.SessionAuthorKey] = author.AuthorID.String()
	if err := sess.Save(r, w); err != nil {
		log.Printf("[ERROR] oauth: save session: %v", err)
		http.Error(w, "could not complete sign-in", http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] author %s signed in with Google", author.AuthorID)
	http.Redirect(w, r, oc.SuccessRedirect, http.StatusSeeOther)
}

func (oc *OAuthController) fail(w http.ResponseWriter, r *http.Request, reason string) {
	target := oc.SuccessRedirect
	if target == "" {
		target = "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		http.Error(w, reason, http.StatusBadRequest)
		return
	}
	q := u.Query()
	q.Set("auth_error", reason)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
