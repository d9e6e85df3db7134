// Package sqlite backs the store with a local SQLite file. It is the
// dev/local driver; production deployments use postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id TEXT PRIMARY KEY,
        username TEXT NOT NULL UNIQUE,
        display_name TEXT,
        creation_time TIMESTAMP NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS cvs (
        cv_id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES users(user_id),
        full_name TEXT, email TEXT, phone TEXT, address TEXT,
        linkedin TEXT, github TEXT, website TEXT, summary TEXT,
        experience TEXT, education TEXT, skills TEXT, languages TEXT,
        certifications TEXT, projects TEXT, "references" TEXT,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    );`,
	`CREATE INDEX IF NOT EXISTS idx_cvs_user ON cvs(user_id);`,
}

// Open opens (or creates) a SQLite database at the given path, enables
// WAL journal mode and applies the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// NewWithDB allows wiring with an existing connection (used by tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users { return &users{db: s.db} }
func (s *sqliteStore) CVs() store.CVs     { return &cvs{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := u.db.ExecContext(ctx, `INSERT INTO users (user_id, username, display_name, creation_time) VALUES (?,?,?,?)`,
		id, m.Username, m.DisplayName, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.UserID = id
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT user_id, username, display_name, creation_time FROM users WHERE user_id=?`, userID)
	return scanUser(row)
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT user_id, username, display_name, creation_time FROM users WHERE username=?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Username, &out.DisplayName, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// --- CVs ---

type cvs struct{ db *sql.DB }

const cvColumns = `cv_id, user_id, full_name, email, phone, address, linkedin, github, website, summary,
        experience, education, skills, languages, certifications, projects, "references", created_at, updated_at`

func (c *cvs) Create(ctx context.Context, cv *model.CV) (*model.CV, error) {
	id := cv.CVID
	if id == "" {
		id = uuid.New().String()
	}
	sections, err := encodeSections(cv)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err = c.db.ExecContext(ctx, `
        INSERT INTO cvs (cv_id, user_id, full_name, email, phone, address, linkedin, github, website, summary,
                         experience, education, skills, languages, certifications, projects, "references",
                         created_at, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, cv.UserID, cv.FullName, cv.Email, cv.Phone, cv.Address, cv.LinkedIn, cv.GitHub, cv.Website, cv.Summary,
		sections[0], sections[1], sections[2], sections[3], sections[4], sections[5], sections[6], now, now)
	if err != nil {
		return nil, err
	}
	out := *cv
	out.CVID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (c *cvs) Get(ctx context.Context, cvID string) (*model.CV, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+cvColumns+` FROM cvs WHERE cv_id=?`, cvID)
	out, err := scanCV(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (c *cvs) ListByOwner(ctx context.Context, userID string) ([]*model.CV, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+cvColumns+` FROM cvs WHERE user_id=? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.CV
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

func (c *cvs) Update(ctx context.Context, cv *model.CV, expectedUpdatedAt time.Time) (*model.CV, error) {
	sections, err := encodeSections(cv)
	if err != nil {
		return nil, err
	}
	res, err := c.db.ExecContext(ctx, `
        UPDATE cvs SET full_name=?, email=?, phone=?, address=?, linkedin=?, github=?, website=?, summary=?,
                       experience=?, education=?, skills=?, languages=?, certifications=?, projects=?,
                       "references"=?, updated_at=?
        WHERE cv_id=? AND updated_at=?
    `, cv.FullName, cv.Email, cv.Phone, cv.Address, cv.LinkedIn, cv.GitHub, cv.Website, cv.Summary,
		sections[0], sections[1], sections[2], sections[3], sections[4], sections[5], sections[6],
		cv.UpdatedAt, cv.CVID, expectedUpdatedAt)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var exists bool
		if err := c.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cvs WHERE cv_id=?)`, cv.CVID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrConflict
		}
		return nil, model.ErrNotFound
	}
	return c.Get(ctx, cv.CVID)
}

func (c *cvs) Delete(ctx context.Context, cvID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cvs WHERE cv_id=?`, cvID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- serialized section columns ---

// encodeSections returns the seven section columns in declaration
// order: experience, education, skills, languages, certifications,
// projects, references.
func encodeSections(cv *model.CV) ([7]*string, error) {
	var out [7]*string
	var err error
	if out[0], err = encodeJSON(cv.Experience); err != nil {
		return out, err
	}
	if out[1], err = encodeJSON(cv.Education); err != nil {
		return out, err
	}
	if out[2], err = encodeJSON(cv.Skills); err != nil {
		return out, err
	}
	if out[3], err = encodeJSON(cv.Languages); err != nil {
		return out, err
	}
	if out[4], err = encodeJSON(cv.Certifications); err != nil {
		return out, err
	}
	if out[5], err = encodeJSON(cv.Projects); err != nil {
		return out, err
	}
	out[6], err = encodeJSON(cv.References)
	return out, err
}

func encodeJSON[T any](v []T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func decodeJSON[T any](s *string, dst *[]T) error {
	if s == nil || *s == "" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(*s), dst)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCV(row rowScanner) (*model.CV, error) {
	var out model.CV
	var experience, education, skills, languages, certifications, projects, references *string
	if err := row.Scan(
		&out.CVID, &out.UserID, &out.FullName, &out.Email, &out.Phone, &out.Address,
		&out.LinkedIn, &out.GitHub, &out.Website, &out.Summary,
		&experience, &education, &skills, &languages, &certifications, &projects, &references,
		&out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeJSON(experience, &out.Experience); err != nil {
		return nil, err
	}
	if err := decodeJSON(education, &out.Education); err != nil {
		return nil, err
	}
	if err := decodeJSON(skills, &out.Skills); err != nil {
		return nil, err
	}
	if err := decodeJSON(languages, &out.Languages); err != nil {
		return nil, err
	}
	if err := decodeJSON(certifications, &out.Certifications); err != nil {
		return nil, err
	}
	if err := decodeJSON(projects, &out.Projects); err != nil {
		return nil, err
	}
	if err := decodeJSON(references, &out.References); err != nil {
		return nil, err
	}
	return &out, nil
}
