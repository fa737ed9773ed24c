package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/kotlens/kotlens/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName      = "kotlens_session"
	authenticatedKey = "authenticated"
	bearerPrefix     = "Bearer "
)

// Authenticator guards the dashboard with a single shared password.
type Authenticator struct {
	password     []byte
	passwordHash []byte
	store        *sessions.CookieStore
}

func NewAuthenticator(cfg config.Auth) *Authenticator {
	if cfg.PasswordHash == "" && cfg.Password == "admin" {
		log.Warn("Dashboard uses the default password, set auth.password or auth.passwordhash")
	}
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return &Authenticator{
		password:     []byte(cfg.Password),
		passwordHash: []byte(cfg.PasswordHash),
		store:        store,
	}
}

// Verify checks a password against the bcrypt hash when one is configured and
// the plain password otherwise.
func (a *Authenticator) Verify(password string) bool {
	if len(a.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(a.password, []byte(password)) == 1
}

// VerifyBearer checks an "Authorization: Bearer <password>" header.
func (a *Authenticator) VerifyBearer(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	return a.Verify(strings.TrimPrefix(header, bearerPrefix))
}

func (a *Authenticator) IsAuthenticated(r *http.Request) bool {
	session, err := a.store.Get(r, sessionName)
	if err != nil {
		log.Debugf("Ignoring unreadable session cookie: %v", err)
		return false
	}
	authenticated, _ := session.Values[authenticatedKey].(bool)
	return authenticated
}

func (a *Authenticator) startSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.store.Get(r, sessionName)
	session.Values[authenticatedKey] = true
	return session.Save(r, w)
}

func (a *Authenticator) endSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := a.store.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
