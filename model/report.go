package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is the persisted certificate. ReportID is the business identifier
// shared with the editor and is distinct from the row ID.
type Report struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	ReportID          string         `gorm:"size:64;uniqueIndex;not null" json:"report_id"`
	UserID            string         `gorm:"size:64;index;not null" json:"user_id"`
	CertificateType   string         `gorm:"size:16;not null" json:"certificate_type"`
	CertificateNumber string         `gorm:"size:64" json:"certificate_number"`
	ClientName        string         `gorm:"size:255;index" json:"client_name"`
	Draft             datatypes.JSON `json:"draft"`
	PDFURL            string         `gorm:"column:pdf_url" json:"pdf_url"`
	PDFGeneratedAt    *time.Time     `gorm:"column:pdf_generated_at" json:"pdf_generated_at,omitempty"`
	StoragePath       string         `json:"storage_path,omitempty"`
	Status            ReportStatus   `gorm:"size:16;not null;default:draft;index" json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ReportStatus tells drafts from reports with a generated certificate.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusCompleted ReportStatus = "completed"
)

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = ReportStatusDraft
	}
	return nil
}

// DecodeDraft unmarshals the stored draft. A report without a draft decodes
// to an empty draft.
func (r *Report) DecodeDraft() (FormDraft, error) {
	var draft FormDraft
	if len(r.Draft) == 0 {
		return draft, nil
	}
	if err := json.Unmarshal(r.Draft, &draft); err != nil {
		return draft, fmt.Errorf("failed to decode draft for %s: %w", r.ReportID, err)
	}
	return draft, nil
}

// ReportPhoto is an uploaded photo attached to an observation. Only the
// storage path is kept; the bytes live in object storage.
type ReportPhoto struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ReportID      string    `gorm:"size:64;index:idx_photo_report;not null" json:"report_id"`
	ReportType    string    `gorm:"size:16;index:idx_photo_report;not null" json:"report_type"`
	ObservationID string    `gorm:"size:64;not null" json:"observation_id"`
	FilePath      string    `gorm:"not null" json:"file_path"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ReportPhoto) TableName() string {
	return "report_photos"
}

func (p *ReportPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// NotificationStatus is the lifecycle of a Part P building-control notification.
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSubmitted NotificationStatus = "submitted"
)

// PartPNotification queues a building-control notification for notifiable work.
type PartPNotification struct {
	ID              string             `gorm:"primaryKey;size:36" json:"id"`
	ReportID        string             `gorm:"size:64;index;not null" json:"report_id"`
	UserID          string             `gorm:"size:64;index;not null" json:"user_id"`
	CertificateType string             `gorm:"size:16;not null" json:"certificate_type"`
	Status          NotificationStatus `gorm:"size:16;not null" json:"status"`
	FormSnapshot    datatypes.JSON     `json:"form_snapshot"`
	CreatedAt       time.Time          `json:"created_at"`
}

func (PartPNotification) TableName() string {
	return "part_p_notifications"
}

func (n *PartPNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
