package frontend

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

const viewsPattern = "views/*.html"

//go:embed views/*.html
var templateFS embed.FS

//go:embed views/icon.svg
var assetsFS embed.FS

// Template implements echo.Renderer.
type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, viewsPattern))
}

// imageURL marks a stored data URI as safe for an img src. Anything that is
// not an image data URI renders as an empty source.
func imageURL(dataURI string) template.URL {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return ""
	}
	return template.URL(dataURI)
}
