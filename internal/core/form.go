package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jo-hoe/qrcollector/internal/backend/database"
	"github.com/jo-hoe/qrcollector/internal/backend/imageprocessing"
)

// File is an uploaded file as declared by the client.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// FormSnapshot is a read-only view of a form for rendering.
type FormSnapshot struct {
	FileName  string
	Preview   string
	Handle    string
	CanSubmit bool
}

// Form holds one pending (image, handle) pair.
type Form struct {
	mu      sync.Mutex
	// only the name of the pending file is kept; its bytes live in the preview
	fileName string
	hasFile  bool
	handle  string
	preview *previewSlot

	store database.DatabaseService
	now   func() time.Time
	newID func() (string, error)
}

func NewForm(store database.DatabaseService) *Form {
	return &Form{
		preview: newPreviewSlot(),
		store:   store,
		now:     time.Now,
		newID:   database.GenerateID,
	}
}

// SelectFile replaces the pending file and starts converting it to a data URI.
// Files whose declared media type is not image/* are ignored and leave the
// current selection untouched; the return value reports whether the file was taken.
func (f *Form) SelectFile(file File) bool {
	if !imageprocessing.IsImageMediaType(file.MediaType) {
		slog.Debug("SelectFile: ignoring non-image file", "filename", file.Name, "media_type", file.MediaType)
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, mediaType := file.Data, file.MediaType
	f.fileName = file.Name
	f.hasFile = true
	f.preview.request(func() (string, error) {
		return imageprocessing.EncodeDataURL(data, mediaType)
	})
	return true
}

// SetHandle stores text verbatim; the leading '@' is stripped on Submit.
func (f *Form) SetHandle(text string) {
	f.mu.Lock()
	f.handle = text
	f.mu.Unlock()
}

// AwaitPreview waits for the latest conversion to finish.
func (f *Form) AwaitPreview(ctx context.Context) (string, error) {
	return f.preview.await(ctx)
}

func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Form) canSubmitLocked() bool {
	return f.hasFile && f.preview.current() != "" && NormalizeHandle(f.handle) != ""
}

func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return FormSnapshot{
		FileName:  f.fileName,
		Preview:   f.preview.current(),
		Handle:    f.handle,
		CanSubmit: f.canSubmitLocked(),
	}
}

// Submit appends a new submission when both an image preview and a handle are
// pending, then resets the form. An incomplete form is left as is and Submit
// reports false. A store failure leaves the form intact.
func (f *Form) Submit(ctx context.Context) (*database.Submission, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.canSubmitLocked() {
		return nil, false, nil
	}

	id, err := f.newID()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate submission id: %w", err)
	}
	submission := &database.Submission{
		ID:        id,
		Image:     f.preview.current(),
		Handle:    NormalizeHandle(f.handle),
		CreatedAt: f.now(),
	}
	if err := f.store.Append(ctx, submission); err != nil {
		return nil, false, fmt.Errorf("failed to store submission: %w", err)
	}

	f.resetLocked()
	return submission, true, nil
}

func (f *Form) resetLocked() {
	f.fileName = ""
	f.hasFile = false
	f.handle = ""
	f.preview.clear()
}
