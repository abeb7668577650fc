package middleware

import (
	"net/http"
	"strings"

	"birthday-reminders/internal/ports/auth"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

const (
	DefaultSessionName = "birthdays_session"

	sessionUserIDKey = "user_id"
	sessionEmailKey  = "email"
)

// SessionManager guarda la identidad ya verificada en una cookie firmada,
// para no depender del token del proveedor en cada request.
type SessionManager struct {
	store sessions.Store
	name  string
}

func NewSessionManager(store sessions.Store, name string) *SessionManager {
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionName
	}
	return &SessionManager{store: store, name: name}
}

func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, claims auth.Claims) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil && sess == nil {
		return errors.Wrap(err, "could not retrieve session")
	}

	sess.Values[sessionUserIDKey] = claims.UserID
	sess.Values[sessionEmailKey] = claims.Email

	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "could not save session")
	}
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil && sess == nil {
		return errors.Wrap(err, "could not retrieve session")
	}

	delete(sess.Values, sessionUserIDKey)
	delete(sess.Values, sessionEmailKey)
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		return errors.Wrap(err, "could not save session")
	}
	return nil
}

// Load devuelve los claims guardados; una cookie inválida o vencida cuenta como "sin sesión".
func (m *SessionManager) Load(r *http.Request) (auth.Claims, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess == nil {
		return auth.Claims{}, false
	}

	uid, _ := sess.Values[sessionUserIDKey].(string)
	if strings.TrimSpace(uid) == "" {
		return auth.Claims{}, false
	}
	email, _ := sess.Values[sessionEmailKey].(string)

	return auth.Claims{UserID: uid, Email: email}, true
}
