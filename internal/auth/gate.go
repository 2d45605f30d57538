package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/RezaEskandarii/jobboard/custom_errors"
)

// CookieName is the cookie carrying the admin token.
const CookieName = "auth_token"

// Config holds the admin credentials the gate checks against.
type Config struct {
	// Secret signs tokens.
	Secret string
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string
	// SecureCookie marks the cookie Secure. Set in production.
	SecureCookie bool
}

// Gate issues and verifies admin tokens. There is a single admin identity
// and no server-side session state, so a token stays valid until it expires.
type Gate struct {
	secret []byte
	hash   []byte
	secure bool
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func New(cfg Config, clock clockwork.Clock, logger *zap.SugaredLogger) (*Gate, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: session secret is required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, errors.Wrap(err, "auth: invalid admin password hash")
	}
	return &Gate{
		secret: []byte(cfg.Secret),
		hash:   []byte(cfg.PasswordHash),
		secure: cfg.SecureCookie,
		clock:  clock,
		logger: logger,
	}, nil
}

// HashPassword returns the bcrypt hash stored as the admin credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Issue returns a fresh token stamped with the current time.
func (g *Gate) Issue() string {
	return generateAuthToken(g.secret, g.clock.Now())
}

// Verify reports whether token was issued by this gate and has not expired.
func (g *Gate) Verify(token string) bool {
	return isValidAuthToken(token, g.secret, g.clock.Now())
}

// CheckPassword compares a submitted password with the admin credential.
func (g *Gate) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(strings.TrimSpace(password))) == nil
}

// Login exchanges the admin password for a token.
func (g *Gate) Login(_ context.Context, password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", custom_errors.NewValidationError(errors.New("password is required"))
	}
	if !g.CheckPassword(password) {
		g.logger.Warnw("Rejected admin login")
		return "", errors.Wrap(custom_errors.ErrUnauthorized, "wrong password")
	}
	g.logger.Infow("Admin logged in")
	return g.Issue(), nil
}

// Authenticated reports whether the request carries a valid token cookie.
func (g *Gate) Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return g.Verify(cookie.Value)
}

// SetCookie attaches token to the response.
func (g *Gate) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie tells the browser to drop the token.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
