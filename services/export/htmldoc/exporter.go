// Package htmldoc renders reports as a printable A4 HTML page.
package htmldoc

import (
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/services/export"
)

var (
	//go:embed templates
	templatesFS embed.FS

	tmpl     *template.Template
	tmplErr  error
	tmplInit sync.Once
)

type labels struct {
	Republic, Directorate, Center, Title, Term                                  string
	SchoolLabel, YearLabel, CounselorLabel, LevelLabel, GroupsLabel, TotalLabel string
	EnrolmentHeading, CoverageHeading, ObservationsHeading                      string
	CounselorSignature, PrincipalSignature                                      string
	Columns                                                                     []string
}

var formLabels = labels{
	Republic:            export.Republic,
	Directorate:         export.Directorate,
	Center:              export.Center,
	Title:               export.Title,
	Term:                export.Term,
	SchoolLabel:         export.SchoolLabel,
	YearLabel:           export.YearLabel,
	CounselorLabel:      export.CounselorLabel,
	LevelLabel:          export.LevelLabel,
	GroupsLabel:         export.GroupsLabel,
	TotalLabel:          export.TotalLabel,
	EnrolmentHeading:    export.EnrolmentHeading,
	CoverageHeading:     export.CoverageHeading,
	ObservationsHeading: export.ObservationsHeading,
	CounselorSignature:  export.CounselorSignature,
	PrincipalSignature:  export.PrincipalSignature,
	Columns:             export.Columns,
}

func parseTemplates() (*template.Template, error) {
	tmplInit.Do(func() {
		tmpl, tmplErr = template.ParseFS(templatesFS, "templates/report.html")
		tmplErr = errors.Wrap(tmplErr, "parsing report template")
	})
	return tmpl, tmplErr
}

type Exporter struct{}

var _ report.Exporter = Exporter{}

func New() Exporter {
	return Exporter{}
}

func (Exporter) Format() string      { return "html" }
func (Exporter) ContentType() string { return "text/html; charset=utf-8" }
func (Exporter) Extension() string   { return ".html" }

func (Exporter) Export(w io.Writer, r report.Report) error {
	t, err := parseTemplates()
	if err != nil {
		return err
	}
	data := struct {
		L labels
		P export.Page
	}{formLabels, export.NewPage(r)}
	if err = t.ExecuteTemplate(w, "report.html", data); err != nil {
		return errors.Wrap(err, "rendering report")
	}
	return nil
}
