package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/modules/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LoginAPI is the backend login call. *cafeapi.Client implements it.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (*cafeapi.LoginResult, error)
}

// Claims are carried by the BFF's staff token. The backend token itself
// never leaves the server; sid points at it in the session store.
type Claims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResponse is returned to the browser after a staff login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type Service struct {
	api    LoginAPI
	store  session.Store
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	onLogout []func(sid string)
}

func NewService(api LoginAPI, store session.Store, secret string, ttl time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{api: api, store: store, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

// OnLogout registers fn to run when a session ends.
func (s *Service) OnLogout(fn func(sid string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Login checks the credentials with the backend, stores the backend token
// under a new session and mints the staff token for the browser.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth.Login: %w: username and password are required", models.ErrValidation)
	}

	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.log.Warn("staff_login", "backend refused login", slog.String("username", username))
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("auth.Login: %w: backend returned no token", models.ErrUnauthorized)
	}

	name := res.User.Username
	if name == "" {
		name = username
	}
	now := s.now()
	sess := session.Session{
		ID:           uuid.NewString(),
		Username:     name,
		Role:         res.User.Role,
		BackendToken: res.Token,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	signed, err := s.mint(sess)
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	s.log.Info("staff_login", "staff logged in", slog.String("username", name), slog.String("sid", sess.ID))
	return &LoginResponse{Token: signed, ExpiresAt: sess.ExpiresAt, Username: name, Role: sess.Role}, nil
}

func (s *Service) mint(sess session.Session) (string, error) {
	claims := Claims{
		SessionID: sess.ID,
		Username:  sess.Username,
		Role:      sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Username,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Logout drops the session. Unknown sessions are already logged out.
func (s *Service) Logout(ctx context.Context, sid string) error {
	if err := s.store.Delete(ctx, sid); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	s.mu.Lock()
	hooks := append([]func(string){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(sid)
	}
	s.log.Info("staff_logout", "staff logged out", slog.String("sid", sid))
	return nil
}

// Active reports whether sid still has a live session.
func (s *Service) Active(ctx context.Context, sid string) bool {
	_, err := s.store.Get(ctx, sid)
	return err == nil
}
