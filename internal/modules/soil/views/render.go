package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderOverviewPartial executes only the overview partial into w.
// Use for HTMX fragment refresh.
func RenderOverviewPartial(w io.Writer, data *OverviewData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/overview.html", data)
}
