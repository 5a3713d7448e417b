package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// OpenStreetMapStyle is the base map used when no Mapbox token is configured.
const OpenStreetMapStyle = "open-street-map"

// PageConfig is injected into the dashboard page.
type PageConfig struct {
	Title       string
	MapboxToken string
	MapStyle    string
}

// NewPageConfig picks the map style: Mapbox styles need a token, so an
// empty token falls back to OpenStreetMap tiles.
func NewPageConfig(title, token, style string) PageConfig {
	if token == "" || style == "" {
		style = OpenStreetMapStyle
	}
	return PageConfig{Title: title, MapboxToken: token, MapStyle: style}
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, s.page); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}
