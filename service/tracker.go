package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
)

// ExportTracker holds the progress of certificate exports in memory and
// refuses a second export of a report while one is running.
type ExportTracker struct {
	jobs    map[string]*model.ExportJob
	mu      sync.RWMutex
	maxJobs int // finished jobs kept, 0 = unlimited
	now     func() time.Time
}

func NewExportTracker(maxJobs int) *ExportTracker {
	if maxJobs < 0 {
		maxJobs = 0
	}
	return &ExportTracker{
		jobs:    make(map[string]*model.ExportJob),
		maxJobs: maxJobs,
		now:     time.Now,
	}
}

// Begin marks reportID as generating. It fails with ErrExportInProgress if
// an export of the same report has not finished.
func (t *ExportTracker) Begin(reportID, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.jobs[reportID]; ok && job.Status == model.ExportGenerating {
		return ErrExportInProgress
	}

	now := t.now()
	t.jobs[reportID] = &model.ExportJob{
		ReportID:  reportID,
		UserID:    userID,
		Status:    model.ExportGenerating,
		Progress:  model.ProgressStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.cleanupIfNeeded()
	return nil
}

func (t *ExportTracker) SetProgress(reportID string, progress int) {
	t.update(reportID, func(job *model.ExportJob) {
		job.Progress = progress
	})
}

func (t *ExportTracker) Succeed(reportID, pdfURL, storagePath string, warnings []string) {
	t.update(reportID, func(job *model.ExportJob) {
		job.Status = model.ExportSuccess
		job.Progress = model.ProgressDone
		job.PDFURL = pdfURL
		job.StoragePath = storagePath
		job.Warnings = append([]string(nil), warnings...)
		job.ErrorMsg = ""
	})
}

func (t *ExportTracker) Fail(reportID string, errMsg string) {
	t.update(reportID, func(job *model.ExportJob) {
		job.Status = model.ExportError
		job.ErrorMsg = errMsg
	})
}

// Get returns a copy of the job, or an idle job when reportID was never exported.
func (t *ExportTracker) Get(reportID string) model.ExportJob {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[reportID]
	if !ok {
		return model.ExportJob{ReportID: reportID, Status: model.ExportIdle}
	}
	out := *job
	out.Warnings = append([]string(nil), job.Warnings...)
	return out
}

// Count returns the number of tracked jobs
func (t *ExportTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

func (t *ExportTracker) update(reportID string, fn func(job *model.ExportJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[reportID]; ok {
		fn(job)
		job.UpdatedAt = t.now()
	}
}

// cleanupIfNeeded drops the oldest finished jobs once the tracker holds more
// than maxJobs. Running jobs are never dropped.
// Must be called with lock held
func (t *ExportTracker) cleanupIfNeeded() {
	if t.maxJobs <= 0 || len(t.jobs) <= t.maxJobs {
		return
	}

	finished := make([]*model.ExportJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		if job.Status != model.ExportGenerating {
			finished = append(finished, job)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].UpdatedAt.Before(finished[j].UpdatedAt)
	})

	removeCount := len(t.jobs) - t.maxJobs
	for i := 0; i < removeCount && i < len(finished); i++ {
		slog.Debug("dropping finished export job",
			"report_id", finished[i].ReportID,
			"updated_at", finished[i].UpdatedAt,
		)
		delete(t.jobs, finished[i].ReportID)
	}
}
