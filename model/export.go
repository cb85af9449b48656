package model

import (
	"time"
)

// ExportJob is the progress of one certificate export as shown to the user.
type ExportJob struct {
	ReportID    string    `json:"report_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"` // idle, generating, success, error
	Progress    int       `json:"progress"`
	PDFURL      string    `json:"pdf_url,omitempty"`
	StoragePath string    `json:"storage_path,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExportStatus constants
const (
	ExportIdle       = "idle"
	ExportGenerating = "generating"
	ExportSuccess    = "success"
	ExportError      = "error"
)

// Progress milestones reported while an export runs.
const (
	ProgressStarted   = 5
	ProgressCollected = 20
	ProgressRendered  = 50
	ProgressPersisted = 70
	ProgressRecorded  = 85
	ProgressDelivered = 95
	ProgressDone      = 100
)
