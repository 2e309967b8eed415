package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"svw.info/nback/internal/domain"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// Screens lists the page templates served by cmd/nback-web, keyed by path.
var Screens = map[string]string{
	"/":       "index.tmpl",
	"/visual": "visual.tmpl",
	"/audio":  "audio.tmpl",
}

// Page is the data every screen template renders.
type Page struct {
	HighScore int
	Settings  domain.Settings
	Interval  time.Duration
}

// StaticFS serves the embedded static/ directory.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		// static/ is embedded at build time; an empty FS only 404s
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses the screen templates; a broken template panics at startup.
func Templates() *template.Template {
	return template.Must(template.ParseFS(Assets, "templates/*.tmpl"))
}
