package frontend

import (
	"html/template"

	"github.com/jo-hoe/qrcollector/internal/backend/database"
	"github.com/jo-hoe/qrcollector/internal/core"
)

const (
	tabUpload  = "upload"
	tabGallery = "gallery"
)

type formView struct {
	FileName    string
	Preview     template.URL
	Handle      string
	CanSubmit   bool
	MaxUploadMB int64
}

type galleryItem struct {
	ID        string
	Image     template.URL
	Handle    string
	CreatedAt string
}

type galleryView struct {
	Items []galleryItem
	Total int
}

type workspaceView struct {
	Admin     bool
	ActiveTab string
	Count     int
	Form      formView
	Gallery   galleryView
}

type pageView struct {
	Workspace workspaceView
	Stats     core.Stats
}

// submitResultView is the response to a successful submission: a fresh form
// plus out-of-band replacements for everything derived from the store.
type submitResultView struct {
	Form    formView
	Count   int
	Gallery galleryView
	Stats   core.Stats
}

func (service *FrontendService) newFormView(snapshot core.FormSnapshot) formView {
	return formView{
		FileName:    snapshot.FileName,
		Preview:     imageURL(snapshot.Preview),
		Handle:      snapshot.Handle,
		CanSubmit:   snapshot.CanSubmit,
		MaxUploadMB: service.config.MaxUploadBytes >> 20,
	}
}

func (service *FrontendService) newGalleryView(submissions []*database.Submission) galleryView {
	items := make([]galleryItem, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, galleryItem{
			ID:        s.ID,
			Image:     imageURL(s.Image),
			Handle:    s.Handle,
			CreatedAt: service.formatTimestamp(s),
		})
	}
	return galleryView{Items: items, Total: len(submissions)}
}

func (service *FrontendService) formatTimestamp(s *database.Submission) string {
	return s.CreatedAt.In(service.config.Location()).Format(service.config.Display.TimeFormat)
}

func (service *FrontendService) newWorkspaceView(session *core.PageSession, tab string, submissions []*database.Submission) workspaceView {
	admin := session.IsAdmin()
	return workspaceView{
		Admin:     admin,
		ActiveTab: activeTab(tab, admin),
		Count:     len(submissions),
		Form:      service.newFormView(session.Form.Snapshot()),
		Gallery:   service.newGalleryView(submissions),
	}
}

// activeTab falls back to the upload tab while the admin view is off.
func activeTab(requested string, admin bool) string {
	if requested == tabGallery && admin {
		return tabGallery
	}
	return tabUpload
}
