package mapview

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Page holds what the dashboard page needs to bootstrap itself; the page
// fetches options, GeoJSON and charts from the API.
type Page struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      float64
	Columns   []string
	Axes      []string
}

// Render writes the dashboard HTML.
func (p Page) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, "dashboard", p)
}
