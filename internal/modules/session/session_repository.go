package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cafe-frontdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Session is a logged-in staff member and the backend token issued to them.
type Session struct {
	ID           string
	Username     string
	Role         string
	BackendToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Store keeps staff sessions. Get returns models.ErrNotFound for unknown or
// expired sessions.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context) (int64, error)
}

// DBPool is the part of *pgxpool.Pool the store uses.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the staff_sessions table so they survive
// restarts and are shared between replicas. Backend tokens are stored sealed.
type PostgresStore struct {
	db     DBPool
	sealer *Sealer
}

func NewPostgresStore(db DBPool, sealer *Sealer) *PostgresStore {
	return &PostgresStore{db: db, sealer: sealer}
}

const schema = `
	CREATE TABLE IF NOT EXISTS staff_sessions (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT '',
		backend_token TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at    TIMESTAMPTZ NOT NULL
	)`

// EnsureSchema creates the sessions table if it is missing.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("EnsureSchema failed: %w", err)
	}
	return nil
}

// Save inserts s, or replaces the row with the same id.
func (r *PostgresStore) Save(ctx context.Context, s Session) error {
	const query = `
		INSERT INTO staff_sessions (id, username, role, backend_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    role = EXCLUDED.role,
		    backend_token = EXCLUDED.backend_token,
		    expires_at = EXCLUDED.expires_at`
	token, err := r.sealer.Seal(s.BackendToken)
	if err != nil {
		return fmt.Errorf("Save session failed: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, s.ID, s.Username, s.Role, token, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("Save session failed: %w", err)
	}
	return nil
}

func (r *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	const query = `
		SELECT id, username, role, backend_token, created_at, expires_at
		FROM staff_sessions
		WHERE id = $1 AND expires_at > now()`
	s := &Session{}
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Username, &s.Role, &s.BackendToken, &s.CreatedAt, &s.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("Get session failed: %w", err)
	}
	token, err := r.sealer.Open(s.BackendToken)
	if err != nil {
		// sealed under a previous secret
		return nil, models.ErrNotFound
	}
	s.BackendToken = token
	return s, nil
}

func (r *PostgresStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM staff_sessions WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete session failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Purge removes expired sessions and reports how many went.
func (r *PostgresStore) Purge(ctx context.Context) (int64, error) {
	const query = `DELETE FROM staff_sessions WHERE expires_at <= now()`
	cmd, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("Purge sessions failed: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// MemoryStore is a process-local Store used when no database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}, now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !m.now().Before(s.ExpiresAt) {
		return nil, models.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Purge(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := m.now()
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
