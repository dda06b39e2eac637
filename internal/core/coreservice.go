package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/qrcollector/internal/backend/database"
	"github.com/jo-hoe/qrcollector/internal/backend/imageprocessing"
	"github.com/jo-hoe/qrcollector/internal/common"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrUploadTooLarge    = errors.New("upload too large")
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	sessions        *SessionManager
}

func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(ctx, config)
	if err != nil {
		return nil, err
	}
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		sessions:        NewSessionManager(databaseService, config.Session.IdleTimeout),
	}, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// Session returns the page session for id, creating one if needed.
func (service *CoreService) Session(id string) (*PageSession, bool) {
	return service.sessions.Get(id)
}

// SubmitForm submits the form of a page session.
func (service *CoreService) SubmitForm(ctx context.Context, form *Form) (*database.Submission, bool, error) {
	submission, ok, err := form.Submit(ctx)
	if ok {
		common.SubmissionsTotal.Inc()
		slog.Info("submission stored", "id", submission.ID, "handle", submission.Handle)
	}
	return submission, ok, err
}

// CreateSubmission stores a submission received through the JSON API. It
// follows the same rules as the upload form.
func (service *CoreService) CreateSubmission(ctx context.Context, image, handle string) (*database.Submission, error) {
	data, mediaType, err := imageprocessing.DecodeDataURL(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	if int64(len(data)) > service.config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrUploadTooLarge, len(data), service.config.MaxUploadBytes)
	}

	form := NewForm(service.databaseService)
	if !form.SelectFile(File{Name: "api", MediaType: mediaType, Data: data}) {
		return nil, fmt.Errorf("%w: media type %s is not an image", ErrInvalidSubmission, mediaType)
	}
	if _, err := form.AwaitPreview(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	form.SetHandle(handle)

	submission, ok, err := service.SubmitForm(ctx, form)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: handle is empty", ErrInvalidSubmission)
	}
	return submission, nil
}

// Submissions returns every submission in insertion order.
func (service *CoreService) Submissions(ctx context.Context) ([]*database.Submission, error) {
	return service.databaseService.All(ctx)
}

func (service *CoreService) GetSubmission(ctx context.Context, id string) (*database.Submission, error) {
	return service.databaseService.GetByID(ctx, id)
}

// Stats is recomputed from the store on every call.
func (service *CoreService) Stats(ctx context.Context) (Stats, error) {
	submissions, err := service.databaseService.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(submissions), nil
}

// Thumbnail renders the stored image of a submission as a PNG no wider than
// the configured thumbnail width.
func (service *CoreService) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	submission, err := service.databaseService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, _, err := imageprocessing.DecodeDataURL(submission.Image)
	if err != nil {
		return nil, fmt.Errorf("stored image of %s is unreadable: %w", id, err)
	}
	return imageprocessing.Thumbnail(data, service.config.ThumbnailWidth)
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}

func getDatabaseService(ctx context.Context, config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(ctx, database.Options{
		Type:             config.Store.Type,
		ConnectionString: config.Store.ConnectionString,
		Address:          config.Store.Address,
		Password:         config.Store.Password,
		Key:              config.Store.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Store.Type)
	return databaseService, nil
}
