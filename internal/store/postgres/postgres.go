package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users { return &users{db: s.db} }
func (s *pgStore) CVs() store.CVs     { return &cvs{db: s.db} }

// HealthPing implements health checking for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is
// reachable. Schema setup is handled by deployment migrations.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, username, display_name)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, id, m.Username, m.DisplayName)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, username, display_name, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	return scanUser(row)
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, username, display_name, creation_time
        FROM users WHERE username=$1
    `, username)
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
	enc, err := encodeSections(cv)
	if err != nil {
		return nil, err
	}
	var created, updated time.Time
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO cvs (cv_id, user_id, full_name, email, phone, address, linkedin, github, website, summary,
                         experience, education, skills, languages, certifications, projects, "references")
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING created_at, updated_at
    `, id, cv.UserID, cv.FullName, cv.Email, cv.Phone, cv.Address, cv.LinkedIn, cv.GitHub, cv.Website, cv.Summary,
		enc.experience, enc.education, enc.skills, enc.languages, enc.certifications, enc.projects, enc.references)
	if err := row.Scan(&created, &updated); err != nil {
		return nil, err
	}
	out := *cv
	out.CVID = id
	out.CreatedAt = created
	out.UpdatedAt = updated
	return &out, nil
}

func (c *cvs) Get(ctx context.Context, cvID string) (*model.CV, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+cvColumns+` FROM cvs WHERE cv_id=$1`, cvID)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+cvColumns+` FROM cvs WHERE user_id=$1 ORDER BY created_at`, userID)
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
	enc, err := encodeSections(cv)
	if err != nil {
		return nil, err
	}
	res, err := c.db.ExecContext(ctx, `
        UPDATE cvs SET full_name=$1, email=$2, phone=$3, address=$4, linkedin=$5, github=$6, website=$7, summary=$8,
                       experience=$9, education=$10, skills=$11, languages=$12, certifications=$13, projects=$14,
                       "references"=$15, updated_at=$16
        WHERE cv_id=$17 AND updated_at=$18
    `, cv.FullName, cv.Email, cv.Phone, cv.Address, cv.LinkedIn, cv.GitHub, cv.Website, cv.Summary,
		enc.experience, enc.education, enc.skills, enc.languages, enc.certifications, enc.projects, enc.references,
		cv.UpdatedAt, cv.CVID, expectedUpdatedAt)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish a deleted row from one that moved underneath us.
		var exists bool
		if err := c.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cvs WHERE cv_id=$1)`, cv.CVID).Scan(&exists); err != nil {
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
	res, err := c.db.ExecContext(ctx, `DELETE FROM cvs WHERE cv_id=$1`, cvID)
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

type encodedSections struct {
	experience, education, skills, languages, certifications, projects, references *string
}

func encodeSections(cv *model.CV) (encodedSections, error) {
	var enc encodedSections
	var err error
	if enc.experience, err = encodeJSON(cv.Experience); err != nil {
		return enc, err
	}
	if enc.education, err = encodeJSON(cv.Education); err != nil {
		return enc, err
	}
	if enc.skills, err = encodeJSON(cv.Skills); err != nil {
		return enc, err
	}
	if enc.languages, err = encodeJSON(cv.Languages); err != nil {
		return enc, err
	}
	if enc.certifications, err = encodeJSON(cv.Certifications); err != nil {
		return enc, err
	}
	if enc.projects, err = encodeJSON(cv.Projects); err != nil {
		return enc, err
	}
	enc.references, err = encodeJSON(cv.References)
	return enc, err
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
