package service

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("authenticated user could not be resolved")
	ErrRenderFailed     = errors.New("PDF generation failed")
	ErrDeliveryFailed   = errors.New("certificate download failed")
	ErrExportInProgress = errors.New("an export for this report is already running")
	ErrReportNotFound   = errors.New("report not found")
	ErrInvalidEmail     = errors.New("recipient email is invalid")
)

// RenderError carries the render service's own message. It matches
// ErrRenderFailed with errors.Is.
type RenderError struct {
	Message string
}

func (e *RenderError) Error() string {
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return ErrRenderFailed
}

// ValidationError lists the certificate sections still incomplete.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "certificate incomplete: " + strings.Join(e.Missing, ", ")
}

// Warning is a degraded stage of an otherwise successful export.
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Warning stages.
const (
	StageStorage      = "storage"
	StageRecordUpdate = "record_update"
	StageNotification = "part_p_notification"
	StageCache        = "cache_invalidation"
)
