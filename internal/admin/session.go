package admin

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionManager issues and validates short-lived admin session tokens.
// The token only asserts "the shared admin password was presented"; it
// carries no other capability.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func NewSessionManager(secret string) *SessionManager {
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return &SessionManager{secret: []byte(secret), ttl: 12 * time.Hour}
}

func (m *SessionManager) Issue() (string, error) {
	claims := sessionClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) Validate(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || !claims.Admin {
		return errors.New("invalid session token")
	}
	return nil
}

// Credentials is the shared admin password surface. Password is compared
// verbatim (constant time); when PasswordHash is set it takes precedence and
// is checked with bcrypt instead.
type Credentials struct {
	Password     string
	PasswordHash string
}

func (c Credentials) check(candidate string) bool {
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(candidate)) == nil
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Password), []byte(candidate)) == 1
}

// LoginHandler exchanges the shared password for a session token.
func LoginHandler(creds Credentials, mgr *SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if !creds.check(payload.Password) {
			http.Error(w, "incorrect password", http.StatusUnauthorized)
			return
		}
		token, err := mgr.Issue()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "token": token})
	}
}

// RequireSession guards admin routes with a bearer session token. OPTIONS
// pre-flights pass through so cross-origin negotiation still works.
func RequireSession(mgr *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := mgr.Validate(strings.TrimPrefix(h, "Bearer ")); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
