package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/settings"
)

var (
	settingsLoadTimeout = 10 * time.Second

	// errors
	ErrNotFound      = errors.New("report not found")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrEmptyUpdate   = errors.New("nothing to update")
)

type (
	// Repository holds the open report views.
	Repository interface {
		CreateReport(ctx context.Context, r *Report) error
		GetReport(ctx context.Context, id string) (Report, error)
		// UpdateReport runs fn on the stored report, atomically with respect to every other
		// call on the same view, and returns a copy of the result.
		UpdateReport(ctx context.Context, id string, fn func(r *Report) error) (Report, error)
		DeleteReport(ctx context.Context, id string) error
		CountReports(ctx context.Context) int
	}

	// SettingsLoader is the read side of the Settings Store.
	SettingsLoader interface {
		Get(ctx context.Context) (settings.Settings, error)
	}

	// Exporter renders a report snapshot into a downloadable document.
	Exporter interface {
		Format() string
		ContentType() string
		Extension() string
		Export(w io.Writer, r Report) error
	}

	// Recorder receives export outcomes (metrics).
	Recorder interface {
		IncExport(format string, success bool)
	}

	Service struct {
		repo      Repository
		settings  SettingsLoader
		logger    core.Logger
		policy    TotalPolicy
		exporters map[string]Exporter
		recorder  Recorder
		pending   sync.WaitGroup
	}
)

func NewService(repo Repository, settingsLdr SettingsLoader, logger core.Logger, policy TotalPolicy, exporters ...Exporter) *Service {
	svc := &Service{
		repo:      repo,
		settings:  settingsLdr,
		logger:    logger,
		policy:    policy,
		exporters: make(map[string]Exporter, len(exporters)),
	}
	for _, exp := range exporters {
		svc.exporters[exp.Format()] = exp
	}
	return svc
}

// SetRecorder plugs a metrics recorder in.
func (svc *Service) SetRecorder(rec Recorder) { svc.recorder = rec }

// Formats lists the available export formats.
func (svc *Service) Formats() []string {
	formats := make([]string, 0, len(svc.exporters))
	for f := range svc.exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Open mounts a new report view with its defaults.
// The settings prefill runs in the background and lands whenever the store answers.
func (svc *Service) Open(ctx context.Context) (Report, error) {
	r := New(uuid.NewString(), svc.policy)
	if err := svc.repo.CreateReport(ctx, r); err != nil {
		return Report{}, errors.Wrap(err, "creating report view")
	}

	svc.pending.Add(1)
	go svc.loadSettings(r.ID)

	return r.Snapshot(), nil
}

func (svc *Service) loadSettings(id string) {
	defer svc.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), settingsLoadTimeout)
	defer cancel()

	s, err := svc.settings.Get(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("loading settings for report %s: %v", id, err), err, core.View{Kind: "report", ID: id})
		return
	}
	_, err = svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		r.ApplySettings(s)
		return nil
	})
	if err != nil && errors.Cause(err) != ErrNotFound { // closed before the settings arrived
		svc.logger.Error(fmt.Sprintf("applying settings to report %s: %v", id, err), err, core.View{Kind: "report", ID: id})
	}
}

// WaitPending blocks until every background settings load has finished.
func (svc *Service) WaitPending() {
	svc.pending.Wait()
}

func (svc *Service) Get(ctx context.Context, id string) (Report, error) {
	return svc.repo.GetReport(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateReport) (Report, error) {
	return svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		r.Apply(ur)
		return nil
	})
}

func (svc *Service) SetGroupCount(ctx context.Context, id, raw string) (Report, error) {
	return svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		r.SetGroupCount(raw)
		return nil
	})
}

func (svc *Service) EditRow(ctx context.Context, id string, index int, er EditRow) (Report, error) {
	field, ok := ParseRowField(er.Field)
	if !ok {
		return Report{}, core.NewValidationError(ErrUnknownField, core.FieldError{Field: "field", Error: "invalid value"})
	}
	return svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		return r.EditCoverageRow(index, field, string(er.Value))
	})
}

func (svc *Service) OpenPreview(ctx context.Context, id string) (Report, error) {
	return svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		r.OpenPreview()
		return nil
	})
}

func (svc *Service) ClosePreview(ctx context.Context, id string) (Report, error) {
	return svc.repo.UpdateReport(ctx, id, func(r *Report) error {
		r.ClosePreview()
		return nil
	})
}

// Close destroys the view (navigation away).
func (svc *Service) Close(ctx context.Context, id string) error {
	return svc.repo.DeleteReport(ctx, id)
}

// Export renders the report as it is right now. A rendering failure is logged and reported
// through ok == false, never as an error; the report itself is never modified.
func (svc *Service) Export(ctx context.Context, id, format string) (doc Document, ok bool, err error) {
	exp, found := svc.exporters[format]
	if !found {
		return Document{}, false, core.NewValidationError(ErrUnknownFormat, core.FieldError{Field: "format", Error: "invalid value"})
	}

	r, err := svc.repo.GetReport(ctx, id)
	if err != nil {
		return Document{}, false, err
	}

	doc, ok = svc.render(exp, r)
	return doc, ok, nil
}

// Render exports a report that is not held by a view (admin CLI).
func (svc *Service) Render(r Report, format string) (Document, error) {
	exp, found := svc.exporters[format]
	if !found {
		return Document{}, ErrUnknownFormat
	}
	var buf bytes.Buffer
	if err := exp.Export(&buf, r); err != nil {
		return Document{}, errors.Wrapf(err, "exporting report as %s", format)
	}
	return newDocument(exp, buf.Bytes()), nil
}

func (svc *Service) render(exp Exporter, r Report) (doc Document, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Errorf("exporter panic: %v", rec)
			svc.logger.Error(fmt.Sprintf("exporting report %s as %s: %v", r.ID, exp.Format(), err), err, core.View{Kind: "report", ID: r.ID})
			svc.record(exp.Format(), false)
			doc, ok = Document{}, false
		}
	}()

	var buf bytes.Buffer
	if err := exp.Export(&buf, r); err != nil {
		svc.logger.Error(fmt.Sprintf("exporting report %s as %s: %v", r.ID, exp.Format(), err), err, core.View{Kind: "report", ID: r.ID})
		svc.record(exp.Format(), false)
		return Document{}, false
	}
	svc.record(exp.Format(), true)
	return newDocument(exp, buf.Bytes()), true
}

func (svc *Service) record(format string, success bool) {
	if svc.recorder != nil {
		svc.recorder.IncExport(format, success)
	}
}

func (svc *Service) Count(ctx context.Context) int {
	return svc.repo.CountReports(ctx)
}

func newDocument(exp Exporter, body []byte) Document {
	return Document{
		Filename:    FilenameBase + exp.Extension(),
		ContentType: exp.ContentType(),
		Body:        body,
	}
}
