package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the capability passed to anything that calls the marketplace
// backend on behalf of a founder. The token is opaque to this service; the
// backend is the authority on its validity.
type Session struct {
	FounderID string
	Token     string
}

var ErrNoToken = errors.New("missing bearer token")

// SessionFromToken extracts the founder identity from a bearer token. The
// token is parsed without signature verification: verification belongs to
// the backend, this service only needs the subject for session scoping.
func SessionFromToken(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNoToken
	}

	sess := Session{Token: token}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			sess.FounderID = sub
		}
	}
	if sess.FounderID == "" {
		// Opaque (non-JWT) tokens scope the session by the token itself
		sess.FounderID = token
	}

	return sess, nil
}
