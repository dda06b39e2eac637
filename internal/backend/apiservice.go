package backend

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jo-hoe/qrcollector/internal/backend/database"
	"github.com/jo-hoe/qrcollector/internal/core"
	"github.com/labstack/echo/v4"
)

// room for the handle and the JSON envelope around the image
const requestOverheadBytes = 64 << 10

type APIService struct {
	coreService *core.CoreService
}

// SubmissionRequest is the JSON body of POST /api/submissions.
type SubmissionRequest struct {
	Image  string `json:"image" validate:"required"`
	Handle string `json:"handle" validate:"required"`
}

type SubmissionResponse struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	CreatedAt    time.Time `json:"createdAt"`
	Image        string    `json:"image"`
	ThumbnailURL string    `json:"thumbnailUrl"`
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", s.probeHandler)
	e.GET("/api/submissions", s.listSubmissionsHandler)
	e.POST("/api/submissions", s.createSubmissionHandler)
	e.GET("/api/stats", s.statsHandler)
	e.GET("/submissions/:id/thumbnail", s.thumbnailHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "API Service is running")
}

func (s *APIService) listSubmissionsHandler(ctx echo.Context) error {
	submissions, err := s.coreService.Submissions(ctx.Request().Context())
	if err != nil {
		slog.Error("listSubmissionsHandler: failed to list submissions",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list submissions")
	}

	response := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		response = append(response, toResponse(submission))
	}
	return ctx.JSON(http.StatusOK, response)
}

// requestBodyLimit is the largest JSON body that can carry an image of
// MaxUploadBytes as a base64 data URI.
func (s *APIService) requestBodyLimit() int64 {
	return int64(base64.StdEncoding.EncodedLen(int(s.coreService.Config().MaxUploadBytes))) + requestOverheadBytes
}

func (s *APIService) createSubmissionHandler(ctx echo.Context) error {
	request := ctx.Request()
	limit := s.requestBodyLimit()
	if request.ContentLength > limit {
		slog.Warn("createSubmissionHandler: request body too large",
			"status", http.StatusRequestEntityTooLarge, "content_length", request.ContentLength)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	request.Body = http.MaxBytesReader(ctx.Response(), request.Body, limit)

	var body SubmissionRequest
	if err := ctx.Bind(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			slog.Warn("createSubmissionHandler: request body too large",
				"status", http.StatusRequestEntityTooLarge, "limit_bytes", maxErr.Limit)
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "received malformed request body")
	}
	if err := ctx.Validate(&body); err != nil {
		return err
	}

	submission, err := s.coreService.CreateSubmission(request.Context(), body.Image, body.Handle)
	if errors.Is(err, core.ErrUploadTooLarge) {
		slog.Warn("createSubmissionHandler: image too large",
			"status", http.StatusRequestEntityTooLarge, "error", err)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}
	if errors.Is(err, core.ErrInvalidSubmission) {
		slog.Warn("createSubmissionHandler: rejected submission",
			"status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		slog.Error("createSubmissionHandler: failed to store submission",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store submission")
	}
	return ctx.JSON(http.StatusCreated, toResponse(submission))
}

func (s *APIService) statsHandler(ctx echo.Context) error {
	stats, err := s.coreService.Stats(ctx.Request().Context())
	if err != nil {
		slog.Error("statsHandler: failed to compute stats",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (s *APIService) thumbnailHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	thumbnail, err := s.coreService.Thumbnail(ctx.Request().Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return ctx.String(http.StatusNotFound, "Submission not found")
	}
	if err != nil {
		slog.Warn("thumbnailHandler: thumbnail not available",
			"status", http.StatusUnprocessableEntity, "submission_id", id, "error", err)
		return ctx.String(http.StatusUnprocessableEntity, "Thumbnail not available")
	}

	// stored images never change
	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400, immutable")
	return ctx.Blob(http.StatusOK, "image/png", thumbnail)
}

func toResponse(submission *database.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           submission.ID,
		Handle:       submission.Handle,
		CreatedAt:    submission.CreatedAt,
		Image:        submission.Image,
		ThumbnailURL: "/submissions/" + submission.ID + "/thumbnail",
	}
}
