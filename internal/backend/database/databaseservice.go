package database

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("submission not found")

// DatabaseService is an append-only, insertion-ordered sequence of submissions.
type DatabaseService interface {
	// Append adds the submission to the end of the sequence. Duplicates are kept.
	Append(ctx context.Context, submission *Submission) error
	// All returns every submission in insertion order. The returned slice is a copy.
	All(ctx context.Context) ([]*Submission, error)
	// GetByID returns ErrNotFound if no submission carries the id.
	GetByID(ctx context.Context, id string) (*Submission, error)
	Close() error
}
