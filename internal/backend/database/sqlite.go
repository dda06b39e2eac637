package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db *sql.DB
}

func NewSQLiteDatabase(connectionString string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" opens its own database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{db: db}, nil
}

func (s *SQLiteDatabase) CreateDatabase() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS submissions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		image TEXT NOT NULL,
		handle TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	return err
}

// Ping opens the underlying connection, creating the database file on first use.
func (s *SQLiteDatabase) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) Append(ctx context.Context, submission *Submission) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO submissions (id, image, handle, created_at) VALUES (?, ?, ?, ?)",
		submission.ID, submission.Image, submission.Handle, submission.CreatedAt.UnixNano())
	return err
}

func (s *SQLiteDatabase) All(ctx context.Context) ([]*Submission, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, image, handle, created_at FROM submissions ORDER BY seq ASC")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	submissions := []*Submission{}
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}
	return submissions, rows.Err()
}

func (s *SQLiteDatabase) GetByID(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, image, handle, created_at FROM submissions WHERE id = ?", id)
	submission, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return submission, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var submission Submission
	var createdAt int64
	if err := row.Scan(&submission.ID, &submission.Image, &submission.Handle, &createdAt); err != nil {
		return nil, err
	}
	submission.CreatedAt = time.Unix(0, createdAt)
	return &submission, nil
}
