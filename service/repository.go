package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportRepository persists certificate drafts and their generated documents.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Get returns the user's report. Reports owned by someone else are reported
// as not found.
func (r *ReportRepository) Get(ctx context.Context, reportID, userID string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", reportID, err)
	}
	return &report, nil
}

// SaveDraft creates or replaces the user's draft for reportID. The draft is
// stored normalized so every later read sees canonical inspection identities.
func (r *ReportRepository) SaveDraft(ctx context.Context, reportID, userID string, draft model.FormDraft) (*model.Report, error) {
	normalized := draft.Normalized()
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}

	var report model.Report
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("report_id = ?", reportID).First(&report).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			report = model.Report{
				ReportID:        reportID,
				UserID:          userID,
				CertificateType: model.CertificateTypeEIC,
			}
		case err != nil:
			return err
		case report.UserID != userID:
			return ErrReportNotFound
		}

		report.CertificateNumber = normalized.CertificateNumber
		report.ClientName = normalized.ClientName
		report.Draft = datatypes.JSON(data)
		return tx.Save(&report).Error
	})
	if errors.Is(err, ErrReportNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save draft %s: %w", reportID, err)
	}
	return &report, nil
}

// PDFUpdate is the document pointer written back after an export.
type PDFUpdate struct {
	PermanentURL string
	StoragePath  string
	GeneratedAt  time.Time
}

// UpdatePDF records the export's document on the report keyed by reportID
// and marks the report completed. An empty StoragePath leaves the stored path
// untouched.
func (r *ReportRepository) UpdatePDF(ctx context.Context, reportID string, update PDFUpdate) error {
	generatedAt := update.GeneratedAt
	values := map[string]any{
		"pdf_url":          update.PermanentURL,
		"pdf_generated_at": &generatedAt,
		"status":           model.ReportStatusCompleted,
	}
	if update.StoragePath != "" {
		values["storage_path"] = update.StoragePath
	}

	result := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("report_id = ?", reportID).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update report %s: %w", reportID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ListByUser returns the user's reports, most recently edited first. Drafts
// are not loaded.
func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := r.scoped(ctx, userID, limit).Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ListRecent returns the user's reports that have a generated document,
// newest document first.
func (r *ReportRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).Omit("draft").
		Where("user_id = ? AND pdf_url <> ''", userID).
		Order("pdf_generated_at DESC").
		Limit(limitOrDefault(limit)).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent certificates: %w", err)
	}
	return reports, nil
}

// ListByClient returns the user's reports whose client name contains name,
// case-insensitively.
func (r *ReportRepository) ListByClient(ctx context.Context, userID, name string, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := r.scoped(ctx, userID, limit).
		Where("LOWER(client_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(name))+"%").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer reports: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) scoped(ctx context.Context, userID string, limit int) *gorm.DB {
	return r.db.WithContext(ctx).Omit("draft").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limitOrDefault(limit))
}

func limitOrDefault(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

// PhotoRepository stores observation photo metadata.
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// ListByReport loads every photo of a report in one query.
func (r *PhotoRepository) ListByReport(ctx context.Context, reportID, reportType string) ([]model.ReportPhoto, error) {
	var photos []model.ReportPhoto
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND report_type = ?", reportID, reportType).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for %s: %w", reportID, err)
	}
	return photos, nil
}

func (r *PhotoRepository) Add(ctx context.Context, photo *model.ReportPhoto) error {
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return fmt.Errorf("failed to add photo: %w", err)
	}
	return nil
}

// NotificationRepository queues Part P notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreatePartPNotification stores a pending notification carrying the full draft.
func (r *NotificationRepository) CreatePartPNotification(ctx context.Context, reportID, userID string, draft model.FormDraft) error {
	snapshot, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode form snapshot: %w", err)
	}
	notification := model.PartPNotification{
		ReportID:        reportID,
		UserID:          userID,
		CertificateType: model.CertificateTypeEIC,
		Status:          model.NotificationStatusPending,
		FormSnapshot:    datatypes.JSON(snapshot),
	}
	if err := r.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create part P notification: %w", err)
	}
	return nil
}
