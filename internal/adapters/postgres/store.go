// Package postgres stores documents as JSONB rows in PostgreSQL and exposes
// them through the backend contract.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

const sessionTTL = 365 * 24 * time.Hour

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		seq        BIGSERIAL,
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		name          TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_idx ON accounts (lower(email))`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id        TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		secret    TEXT NOT NULL,
		expire_at TIMESTAMPTZ NOT NULL
	)`,
}

// Store implements backend.Backend on a *sql.DB. Like the client SDK of a
// hosted backend it holds one current session for the process.
type Store struct {
	DB  *sql.DB
	now func() time.Time

	mu      sync.RWMutex
	session *model.Session
}

// NewStore create new instance
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the tables the store needs when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return classify("ensure schema", err)
		}
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, email, password, name string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{ID: newID(), Name: name, Email: email, CreatedAt: s.now()}
	query := `INSERT INTO accounts (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query, user.ID, user.Email, user.Name, string(hash), user.CreatedAt); err != nil {
		return model.User{}, classify("create account", err)
	}
	return user, nil
}

func (s *Store) CreateSession(ctx context.Context, email, password string) (model.Session, error) {
	var userID, hash string
	query := `SELECT id, password_hash FROM accounts WHERE lower(email) = lower($1)`
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, fmt.Errorf("invalid credentials: %w", backend.ErrUnauthorized)
	}
	if err != nil {
		return model.Session{}, classify("create session", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return model.Session{}, fmt.Errorf("invalid credentials: %w", backend.ErrUnauthorized)
	}

	session := model.Session{ID: newID(), UserID: userID, Secret: uuid.NewString(), ExpireAt: s.now().Add(sessionTTL)}
	query = `INSERT INTO sessions (id, user_id, secret, expire_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query, session.ID, session.UserID, session.Secret, session.ExpireAt); err != nil {
		return model.Session{}, classify("create session", err)
	}

	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	return session, nil
}

func (s *Store) CurrentUser(ctx context.Context) (model.User, error) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return model.User{}, fmt.Errorf("no active session: %w", backend.ErrUnauthorized)
	}

	var user model.User
	query := `SELECT a.id, a.name, a.email, a.created_at
              FROM sessions s JOIN accounts a ON a.id = s.user_id
              WHERE s.id = $1 AND s.expire_at > $2`
	err := s.DB.QueryRowContext(ctx, query, session.ID, s.now()).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("session expired: %w", backend.ErrUnauthorized)
	}
	if err != nil {
		return model.User{}, classify("current user", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func (s *Store) DeleteSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return fmt.Errorf("no active session: %w", backend.ErrUnauthorized)
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, s.session.ID); err != nil {
		return classify("delete session", err)
	}
	s.session = nil
	return nil
}

func (s *Store) CreateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	payload, err := encodeData(data)
	if err != nil {
		return backend.Document{}, err
	}
	if id == "" || id == backend.AutoID {
		id = newID()
	}

	now := s.now()
	query := `INSERT INTO documents (collection, id, data, created_at, updated_at)
              VALUES ($1, $2, $3::jsonb, $4, $4)
              RETURNING id, created_at, updated_at, data`
	row := s.DB.QueryRowContext(ctx, query, collection, id, payload, now)
	return scanDocument(collection, row, fmt.Sprintf("create %s/%s", collection, id))
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (backend.Document, error) {
	query := `SELECT id, created_at, updated_at, data FROM documents WHERE collection = $1 AND id = $2`
	row := s.DB.QueryRowContext(ctx, query, collection, id)
	return scanDocument(collection, row, fmt.Sprintf("get %s/%s", collection, id))
}

// UpdateDocument merges the changed top-level attributes into the stored
// document.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, data any) (backend.Document, error) {
	payload, err := encodeData(data)
	if err != nil {
		return backend.Document{}, err
	}

	query := `UPDATE documents
              SET data = data || $3::jsonb,
                  updated_at = $4
              WHERE collection = $1 AND id = $2
              RETURNING id, created_at, updated_at, data`
	row := s.DB.QueryRowContext(ctx, query, collection, id, payload, s.now())
	return scanDocument(collection, row, fmt.Sprintf("update %s/%s", collection, id))
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return classify(fmt.Sprintf("delete %s/%s", collection, id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(fmt.Sprintf("delete %s/%s", collection, id), err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, backend.ErrNotFound)
	}
	return nil
}

func (s *Store) ListDocuments(ctx context.Context, collection string, q backend.Query) (backend.DocumentList, error) {
	stmt, err := buildList(collection, q)
	if err != nil {
		return backend.DocumentList{}, err
	}

	var list backend.DocumentList
	if err := s.DB.QueryRowContext(ctx, stmt.count, stmt.args...).Scan(&list.Total); err != nil {
		return backend.DocumentList{}, classify("count "+collection, err)
	}

	rows, err := s.DB.QueryContext(ctx, stmt.selectSQL, stmt.args...)
	if err != nil {
		return backend.DocumentList{}, classify("list "+collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(collection, rows, "list "+collection)
		if err != nil {
			return backend.DocumentList{}, err
		}
		list.Documents = append(list.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return backend.DocumentList{}, classify("list "+collection, err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(collection string, row scanner, op string) (backend.Document, error) {
	doc := backend.Document{Collection: collection}
	var data []byte
	if err := row.Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt, &data); err != nil {
		return backend.Document{}, classify(op, err)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	doc.Data = data
	return doc, nil
}

func encodeData(data any) (string, error) {
	attrs, err := backend.Encode(data)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(b), nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// classify maps driver errors onto the backend sentinels. Anything that is
// not a statement-level error from the server is treated as the database
// being unreachable.
func classify(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", op, backend.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, backend.ErrUnavailable, err)
}
