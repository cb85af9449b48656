package service

import (
	"context"
	"errors"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// PayloadCollector builds the render payload from a draft.
type PayloadCollector interface {
	Collect(ctx context.Context, draft model.FormDraft, reportID string) model.CertificatePayload
}

// Renderer turns a payload into a temporary document URL.
type Renderer interface {
	Render(ctx context.Context, payload model.CertificatePayload) (string, error)
}

// Persister copies a rendered document into durable storage.
type Persister interface {
	Persist(ctx context.Context, tempURL, userID, reportID, certificateNumber string) (*PersistResult, error)
}

// RecordUpdater writes the document pointer back onto the report.
type RecordUpdater interface {
	UpdatePDF(ctx context.Context, reportID string, update PDFUpdate) error
}

// Deliverer fetches the document bytes for the client.
type Deliverer interface {
	Deliver(ctx context.Context, bestURL, tempURL, filename string) (*Document, error)
}

// NotificationCreator queues a Part P building-control notification.
type NotificationCreator interface {
	CreatePartPNotification(ctx context.Context, reportID, userID string, draft model.FormDraft) error
}

// CacheInvalidator drops cached query groups.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

// ExportDeps are the collaborators of an Exporter.
type ExportDeps struct {
	Collector     PayloadCollector
	Renderer      Renderer
	Persister     Persister
	Records       RecordUpdater
	Delivery      Deliverer
	Notifications NotificationCreator
	Cache         CacheInvalidator
	Tracker       *ExportTracker
}

// ExportRequest asks for the certificate of one report.
type ExportRequest struct {
	ReportID string
	UserID   string
	Draft    model.FormDraft
}

// ExportResult is a successful export. PermanentURL is empty when durable
// storage failed; BestURL is then the temporary URL.
type ExportResult struct {
	Payload      model.CertificatePayload
	TempURL      string
	PermanentURL string
	StoragePath  string
	Document     *Document
	Warnings     []Warning
}

// BestURL is the durable URL when there is one, otherwise the temporary one.
func (r *ExportResult) BestURL() string {
	return firstNonEmpty(r.PermanentURL, r.TempURL)
}

// Exporter runs the certificate pipeline: collect, render, persist, record,
// deliver, then the queued side effects. Only authentication, validation,
// rendering and delivery can fail an export.
type Exporter struct {
	deps ExportDeps
	now  func() time.Time
}

func NewExporter(deps ExportDeps) *Exporter {
	if deps.Tracker == nil {
		deps.Tracker = NewExportTracker(0)
	}
	return &Exporter{deps: deps, now: time.Now}
}

// Tracker exposes the progress of running and finished exports.
func (e *Exporter) Tracker() *ExportTracker {
	return e.deps.Tracker
}

func (e *Exporter) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}
	ctx = logger.With(ctx, logger.ReportIDKey, req.ReportID)

	draft := req.Draft.Normalized()
	if missing := draft.MissingSections(); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	if err := e.deps.Tracker.Begin(req.ReportID, req.UserID); err != nil {
		return nil, err
	}
	finished := false
	defer func() {
		// A panic must not leave the report locked as generating.
		if !finished {
			e.deps.Tracker.Fail(req.ReportID, "export aborted")
		}
	}()

	result, err := e.run(ctx, req.ReportID, req.UserID, draft)
	finished = true
	if err != nil {
		logger.Error(ctx, "certificate export failed", "error", err)
		e.deps.Tracker.Fail(req.ReportID, err.Error())
		return nil, err
	}

	e.deps.Tracker.Succeed(req.ReportID, result.BestURL(), result.StoragePath, warningMessages(result.Warnings))
	logger.Info(ctx, "certificate export complete",
		"permanent", result.PermanentURL != "",
		"warnings", len(result.Warnings),
	)
	return result, nil
}

func (e *Exporter) run(ctx context.Context, reportID, userID string, draft model.FormDraft) (*ExportResult, error) {
	tracker := e.deps.Tracker
	result := &ExportResult{}

	result.Payload = e.deps.Collector.Collect(ctx, draft, reportID)
	tracker.SetProgress(reportID, model.ProgressCollected)

	tempURL, err := e.deps.Renderer.Render(ctx, result.Payload)
	if err != nil {
		var renderErr *RenderError
		if !errors.As(err, &renderErr) {
			err = &RenderError{Message: err.Error()}
		}
		return nil, err
	}
	result.TempURL = tempURL
	tracker.SetProgress(reportID, model.ProgressRendered)

	persisted, err := e.deps.Persister.Persist(ctx, tempURL, userID, reportID, draft.CertificateNumber)
	if err != nil {
		logger.Warn(ctx, "durable storage failed, using temporary URL", "error", err)
		result.Warnings = append(result.Warnings, Warning{Stage: StageStorage, Message: err.Error()})
	} else {
		result.PermanentURL = persisted.PermanentURL
		result.StoragePath = persisted.StoragePath
	}
	tracker.SetProgress(reportID, model.ProgressPersisted)

	now := e.now()
	err = e.deps.Records.UpdatePDF(ctx, reportID, PDFUpdate{
		PermanentURL: result.BestURL(),
		StoragePath:  result.StoragePath,
		GeneratedAt:  now,
	})
	recorded := err == nil
	if err != nil {
		logger.Warn(ctx, "report record not updated", "error", err)
		result.Warnings = append(result.Warnings, Warning{Stage: StageRecordUpdate, Message: err.Error()})
	}
	tracker.SetProgress(reportID, model.ProgressRecorded)

	filename := CertificateFilename(draft.CertificateNumber, draft.ClientName, now)
	doc, err := e.deps.Delivery.Deliver(ctx, result.BestURL(), tempURL, filename)
	if err != nil {
		// The record already points at the new document, so listings are stale
		// even though the export failed.
		if recorded {
			e.invalidateListings(ctx)
		}
		return nil, err
	}
	result.Document = doc
	tracker.SetProgress(reportID, model.ProgressDelivered)

	dispatcher := &Dispatcher{}
	if draft.PartPNotification && e.deps.Notifications != nil {
		dispatcher.Enqueue(Task{
			Stage: StageNotification,
			Run: func(ctx context.Context) error {
				return e.deps.Notifications.CreatePartPNotification(ctx, reportID, userID, draft)
			},
		})
	}
	if e.deps.Cache != nil {
		dispatcher.Enqueue(e.cacheTask())
	}
	result.Warnings = append(result.Warnings, dispatcher.Run(ctx)...)

	return result, nil
}

func (e *Exporter) cacheTask() Task {
	return Task{
		Stage: StageCache,
		Run: func(ctx context.Context) error {
			return e.deps.Cache.Invalidate(ctx, ExportCacheGroups...)
		},
	}
}

// invalidateListings runs the cache task outside a successful export. Its
// failure is only logged since there is no result to carry a warning.
func (e *Exporter) invalidateListings(ctx context.Context) {
	if e.deps.Cache == nil {
		return
	}
	dispatcher := &Dispatcher{}
	dispatcher.Enqueue(e.cacheTask())
	for _, w := range dispatcher.Run(ctx) {
		logger.Warn(ctx, "listing invalidation failed", "stage", w.Stage, "error", w.Message)
	}
}

func warningMessages(warnings []Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Stage+": "+w.Message)
	}
	return out
}
