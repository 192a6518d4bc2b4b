package api

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"deref": func(f *float64) float64 {
			if f == nil {
				return 0
			}
			return *f
		},
		"round": func(f float64) string {
			return fmt.Sprintf("%.0f", f)
		},
		"fixed": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"weekday": func(t time.Time) string {
			return t.Format("Mon")
		},
		"shortDate": func(t time.Time) string {
			return t.Format("Jan 2")
		},
		"longDate": func(t time.Time) string {
			return t.Format("Monday, January 2")
		},
		"clock": func(t time.Time) string {
			return t.Local().Format("3:04 PM")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
