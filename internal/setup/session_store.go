package setup

import (
	"crypto/rand"
	"net/http"

	"birthday-reminders/internal/config"
	"birthday-reminders/internal/middleware"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

func NewSessionManagerFromConfig(conf *config.Config) (*middleware.SessionManager, error) {
	keyPairs := make([][]byte, 0)
	if len(conf.Session.Keys) == 0 {
		key, err := getRandomBytes(32)
		if err != nil {
			return nil, errors.Wrap(err, "could not generate cookie signing key")
		}

		keyPairs = append(keyPairs, key)
	} else {
		for _, k := range conf.Session.Keys {
			keyPairs = append(keyPairs, []byte(k))
		}
	}

	sessionStore := sessions.NewCookieStore(keyPairs...)

	sessionStore.MaxAge(conf.Session.MaxAge)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = conf.Session.Secure
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return middleware.NewSessionManager(sessionStore, conf.Session.Name), nil
}

func getRandomBytes(n int) ([]byte, error) {
	data := make([]byte, n)

	if _, err := rand.Read(data); err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}
