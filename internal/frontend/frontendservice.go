package frontend

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/jo-hoe/qrcollector/internal/common"
	"github.com/jo-hoe/qrcollector/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName      = "index.html"
	sessionCookieName = "qrcollector_session"

	// room for the handle field and multipart boundaries on top of the file
	multipartOverheadBytes = 1 << 20
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
	renderer    *Template
}

func NewFrontendService(coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      coreService.Config(),
		renderer:    &Template{templates: parseTemplates()},
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = service.renderer

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	e.GET("/"+MainPageName, service.indexHandler)

	e.GET("/htmx/workspace", service.htmxWorkspaceHandler)
	e.POST("/htmx/admin/toggle", service.htmxToggleAdminHandler)
	e.POST("/htmx/form/file", service.htmxSelectFileHandler)
	e.POST("/htmx/form/handle", service.htmxSetHandleHandler)
	e.POST("/htmx/form/submit", service.htmxSubmitHandler)
	e.GET("/htmx/gallery", service.htmxGalleryHandler)
	e.GET("/htmx/stats", service.htmxStatsHandler)

	// Favicon (SVG) route
	e.GET("/icon.svg", service.iconHandler)
}

// session resolves the page session from the cookie, issuing a new cookie
// when the session is new or expired.
func (service *FrontendService) session(ctx echo.Context) *core.PageSession {
	var id string
	if cookie, err := ctx.Cookie(sessionCookieName); err == nil {
		id = cookie.Value
	}

	session, created := service.coreService.Session(id)
	if created {
		ctx.SetCookie(&http.Cookie{
			Name:     sessionCookieName,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	session := service.session(ctx)
	submissions, err := service.coreService.Submissions(ctx.Request().Context())
	if err != nil {
		slog.Error("indexHandler: failed to list submissions",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load submissions")
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, MainPageName, pageView{
		Workspace: service.newWorkspaceView(session, ctx.QueryParam("tab"), submissions),
		Stats:     core.ComputeStats(submissions),
	})
}

func (service *FrontendService) htmxWorkspaceHandler(ctx echo.Context) error {
	return service.renderWorkspace(ctx, service.session(ctx), ctx.QueryParam("tab"))
}

func (service *FrontendService) htmxToggleAdminHandler(ctx echo.Context) error {
	session := service.session(ctx)
	admin := session.ToggleAdmin()
	slog.Debug("htmxToggleAdminHandler: admin view toggled", "session", session.ID, "admin", admin)
	return service.renderWorkspace(ctx, session, ctx.FormValue("tab"))
}

func (service *FrontendService) htmxSelectFileHandler(ctx echo.Context) error {
	session := service.session(ctx)
	request := ctx.Request()

	limit := service.config.MaxUploadBytes + multipartOverheadBytes
	request.Body = http.MaxBytesReader(ctx.Response(), request.Body, limit)
	if err := request.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || request.ContentLength > limit {
			slog.Warn("htmxSelectFileHandler: upload too large",
				"status", http.StatusRequestEntityTooLarge, "limit_bytes", service.config.MaxUploadBytes)
			return ctx.String(http.StatusRequestEntityTooLarge, "File is too large")
		}
		slog.Error("htmxSelectFileHandler: failed to parse multipart form",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read upload")
	}

	// the form posts the handle field along with the file
	if values, ok := request.MultipartForm.Value["handle"]; ok && len(values) > 0 {
		session.Form.SetHandle(values[0])
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		slog.Error("htmxSelectFileHandler: failed to get uploaded file",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to get uploaded file")
	}

	if file.Size > service.config.MaxUploadBytes {
		slog.Warn("htmxSelectFileHandler: upload too large",
			"status", http.StatusRequestEntityTooLarge, "size_bytes", file.Size, "filename", file.Filename)
		return ctx.String(http.StatusRequestEntityTooLarge, "File is too large")
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("htmxSelectFileHandler: failed to open uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.String(http.StatusInternalServerError, "Failed to open uploaded file")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("htmxSelectFileHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("htmxSelectFileHandler: failed to read uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.String(http.StatusInternalServerError, "Failed to read uploaded file")
	}

	mediaType := declaredMediaType(file.Header.Get("Content-Type"), file.Filename)
	accepted := session.Form.SelectFile(core.File{
		Name:      file.Filename,
		MediaType: mediaType,
		Data:      data,
	})
	if !accepted {
		common.RejectedFilesTotal.Inc()
		slog.Info("htmxSelectFileHandler: ignored non-image file", "filename", file.Filename, "media_type", mediaType)
	} else if _, err := session.Form.AwaitPreview(request.Context()); err != nil {
		// the preview stays empty and the form cannot be submitted
		slog.Warn("htmxSelectFileHandler: preview conversion failed", "error", err, "filename", file.Filename)
	}

	return ctx.Render(http.StatusOK, "upload-form", service.newFormView(session.Form.Snapshot()))
}

func (service *FrontendService) htmxSetHandleHandler(ctx echo.Context) error {
	session := service.session(ctx)
	session.Form.SetHandle(ctx.FormValue("handle"))
	return ctx.Render(http.StatusOK, "submit-button", service.newFormView(session.Form.Snapshot()))
}

func (service *FrontendService) htmxSubmitHandler(ctx echo.Context) error {
	session := service.session(ctx)
	if handle, ok := formValue(ctx, "handle"); ok {
		session.Form.SetHandle(handle)
	}

	_, ok, err := service.coreService.SubmitForm(ctx.Request().Context(), session.Form)
	if err != nil {
		slog.Error("htmxSubmitHandler: failed to store submission",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to store submission")
	}
	if !ok {
		// incomplete form: nothing changes
		return ctx.Render(http.StatusOK, "upload-form", service.newFormView(session.Form.Snapshot()))
	}

	submissions, err := service.coreService.Submissions(ctx.Request().Context())
	if err != nil {
		slog.Error("htmxSubmitHandler: failed to list submissions for OOB update",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.Render(http.StatusOK, "upload-form", service.newFormView(session.Form.Snapshot()))
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "submit-result", submitResultView{
		Form:    service.newFormView(session.Form.Snapshot()),
		Count:   len(submissions),
		Gallery: service.newGalleryView(submissions),
		Stats:   core.ComputeStats(submissions),
	})
}

func (service *FrontendService) htmxGalleryHandler(ctx echo.Context) error {
	submissions, err := service.coreService.Submissions(ctx.Request().Context())
	if err != nil {
		slog.Error("htmxGalleryHandler: failed to list submissions",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list submissions")
	}

	// Prevent caching so the latest submissions are always shown
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "gallery", service.newGalleryView(submissions))
}

func (service *FrontendService) htmxStatsHandler(ctx echo.Context) error {
	stats, err := service.coreService.Stats(ctx.Request().Context())
	if err != nil {
		slog.Error("htmxStatsHandler: failed to compute stats",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to compute stats")
	}
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "stats", stats)
}

func (service *FrontendService) renderWorkspace(ctx echo.Context, session *core.PageSession, tab string) error {
	submissions, err := service.coreService.Submissions(ctx.Request().Context())
	if err != nil {
		slog.Error("renderWorkspace: failed to list submissions",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list submissions")
	}
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "workspace", service.newWorkspaceView(session, tab, submissions))
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

// declaredMediaType returns the client-declared Content-Type, falling back to
// the file extension when the client sent nothing useful.
func declaredMediaType(contentType, filename string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if detected := mime.TypeByExtension(filepath.Ext(filename)); detected != "" {
		return detected
	}
	return contentType
}

// formValue reports whether key was posted at all, so an absent field does
// not clear the pending handle.
func formValue(ctx echo.Context, key string) (string, bool) {
	params, err := ctx.FormParams()
	if err != nil {
		return "", false
	}
	values, ok := params[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
