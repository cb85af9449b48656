package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/middleware"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportStore loads and saves certificate drafts.
type ReportStore interface {
	Get(ctx context.Context, reportID, userID string) (*model.Report, error)
	SaveDraft(ctx context.Context, reportID, userID string, draft model.FormDraft) (*model.Report, error)
}

// CertificateExporter runs the export pipeline.
type CertificateExporter interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
	Tracker() *service.ExportTracker
}

// StoredDeliverer re-delivers a previously generated certificate.
type StoredDeliverer interface {
	DeliverStored(ctx context.Context, report *model.Report) (*service.Document, error)
}

// Mailer sends a stored certificate by email.
type Mailer interface {
	Send(ctx context.Context, req service.EmailRequest) error
}

// PhotoRecorder stores observation photo metadata.
type PhotoRecorder interface {
	Add(ctx context.Context, photo *model.ReportPhoto) error
}

// CertificateDeps are the collaborators of a CertificateHandler. Photos and
// Blobs are only needed for photo upload; Cache may be nil.
type CertificateDeps struct {
	Reports   ReportStore
	Collector service.PayloadCollector
	Exporter  CertificateExporter
	Delivery  StoredDeliverer
	Mailer    Mailer
	Photos    PhotoRecorder
	Blobs     service.BlobStore
	Cache     service.CacheInvalidator
}

type CertificateHandler struct {
	deps CertificateDeps
}

func NewCertificateHandler(deps CertificateDeps) *CertificateHandler {
	return &CertificateHandler{deps: deps}
}

const maxPhotoSize = 10 << 20

// GetDraft returns the stored draft of a report.
func (h *CertificateHandler) GetDraft(c *gin.Context) {
	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reportId":        report.ReportID,
		"draft":           draft,
		"pdfUrl":          report.PDFURL,
		"pdfGeneratedAt":  report.PDFGeneratedAt,
		"updatedAt":       report.UpdatedAt,
		"missingSections": nonNil(draft.MissingSections()),
		"canGenerate":     draft.CanGenerateCertificate(),
	})
}

// SaveDraft creates or replaces the draft of a report.
func (h *CertificateHandler) SaveDraft(c *gin.Context) {
	userID := middleware.GetUserID(c)
	reportID := c.Param("reportId")

	var draft model.FormDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft: " + err.Error()})
		return
	}

	report, err := h.deps.Reports.SaveDraft(c.Request.Context(), reportID, userID, draft)
	if err != nil {
		writeReportError(c, err)
		return
	}
	h.invalidateListings(c.Request.Context())

	saved, err := report.DecodeDraft()
	if err != nil {
		logger.Error(c.Request.Context(), "saved draft unreadable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read saved draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reportId":        report.ReportID,
		"updatedAt":       report.UpdatedAt,
		"missingSections": nonNil(saved.MissingSections()),
		"canGenerate":     saved.CanGenerateCertificate(),
	})
}

// GetPayload returns the render payload the stored draft would produce.
func (h *CertificateHandler) GetPayload(c *gin.Context) {
	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.deps.Collector.Collect(c.Request.Context(), draft, report.ReportID))
}

// GetReadiness lists the sections still blocking generation.
func (h *CertificateHandler) GetReadiness(c *gin.Context) {
	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reportId":        report.ReportID,
		"missingSections": nonNil(draft.MissingSections()),
		"canGenerate":     draft.CanGenerateCertificate(),
	})
}

// Export generates the certificate and streams it back as a download. A JSON
// body, when present, is saved as the draft first.
func (h *CertificateHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	reportID := c.Param("reportId")

	if c.Request.ContentLength > 0 {
		var draft model.FormDraft
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft: " + err.Error()})
			return
		}
		if _, err := h.deps.Reports.SaveDraft(ctx, reportID, userID, draft); err != nil {
			writeReportError(c, err)
			return
		}
	}

	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}

	result, err := h.deps.Exporter.Export(ctx, service.ExportRequest{
		ReportID: report.ReportID,
		UserID:   userID,
		Draft:    draft,
	})
	if err != nil {
		writeExportError(c, err)
		return
	}

	c.Header(middleware.HeaderCertificateURL, result.BestURL())
	if result.StoragePath != "" {
		c.Header(middleware.HeaderStoragePath, result.StoragePath)
	}
	if len(result.Warnings) > 0 {
		if encoded, err := json.Marshal(result.Warnings); err == nil {
			c.Header(middleware.HeaderExportWarnings, string(encoded))
		}
	}
	writeDocument(c, result.Document)
}

// GetExportStatus reports the progress of the report's latest export.
func (h *CertificateHandler) GetExportStatus(c *gin.Context) {
	job := h.deps.Exporter.Tracker().Get(c.Param("reportId"))
	if job.UserID != "" && job.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Download re-delivers the last generated certificate.
func (h *CertificateHandler) Download(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}

	doc, err := h.deps.Delivery.DeliverStored(c.Request.Context(), report)
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No certificate has been generated for this report"})
		return
	case err != nil:
		logger.Error(c.Request.Context(), "certificate download failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrDeliveryFailed.Error()})
		return
	}
	writeDocument(c, doc)
}

type EmailCertificateRequest struct {
	RecipientEmail string   `json:"recipientEmail" binding:"required"`
	CC             []string `json:"cc"`
	CustomMessage  string   `json:"customMessage"`
}

// Email sends the report's certificate through the mail API.
func (h *CertificateHandler) Email(c *gin.Context) {
	var req EmailCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	if report.PDFURL == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Generate the certificate before emailing it"})
		return
	}

	err := h.deps.Mailer.Send(c.Request.Context(), service.EmailRequest{
		ReportID:       report.ReportID,
		RecipientEmail: req.RecipientEmail,
		CC:             req.CC,
		CustomMessage:  req.CustomMessage,
	})
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Error(c.Request.Context(), "certificate email failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateQuote pre-fills a quote from the certificate's client.
func (h *CertificateHandler) CreateQuote(c *gin.Context) {
	h.billing(c, service.BillingQuote)
}

// CreateInvoice pre-fills an invoice from the certificate's client.
func (h *CertificateHandler) CreateInvoice(c *gin.Context) {
	h.billing(c, service.BillingInvoice)
}

func (h *CertificateHandler) billing(c *gin.Context, kind string) {
	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.BillingFromCertificate(kind, report, draft))
}

// DownloadSchedule exports the schedule of tests as a spreadsheet.
func (h *CertificateHandler) DownloadSchedule(c *gin.Context) {
	report, draft, ok := h.loadDraft(c)
	if !ok {
		return
	}

	payload := h.deps.Collector.Collect(c.Request.Context(), draft, report.ReportID)
	var buf bytes.Buffer
	if err := service.WriteScheduleXLSX(&buf, payload); err != nil {
		logger.Error(c.Request.Context(), "schedule workbook failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build schedule"})
		return
	}

	c.Header("Content-Disposition", attachment(service.ScheduleFilename(draft.CertificateNumber)))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// UploadPhoto stores an observation photo and records it against the report.
func (h *CertificateHandler) UploadPhoto(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}

	observationID := strings.TrimSpace(c.PostForm("observationId"))
	if observationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observationId is required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Photo exceeds 10MB"})
		return
	}

	// Sniff the content rather than trusting the client's header.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	contentType := http.DetectContentType(buffer[:n])
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	objectName := fmt.Sprintf("photos/%s/%s%s", report.ReportID, uuid.New().String(), strings.ToLower(filepath.Ext(header.Filename)))
	if err := h.deps.Blobs.Upload(c.Request.Context(), objectName, file, header.Size, contentType); err != nil {
		logger.Error(c.Request.Context(), "photo upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	photo := &model.ReportPhoto{
		ReportID:      report.ReportID,
		ReportType:    model.CertificateTypeEIC,
		ObservationID: observationID,
		FilePath:      objectName,
	}
	if err := h.deps.Photos.Add(c.Request.Context(), photo); err != nil {
		logger.Error(c.Request.Context(), "photo record failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            photo.ID,
		"observationId": observationID,
		"filePath":      objectName,
		"url":           h.deps.Blobs.PublicURL(objectName),
	})
}

func (h *CertificateHandler) loadReport(c *gin.Context) (*model.Report, bool) {
	report, err := h.deps.Reports.Get(c.Request.Context(), c.Param("reportId"), middleware.GetUserID(c))
	if err != nil {
		writeReportError(c, err)
		return nil, false
	}
	return report, true
}

func (h *CertificateHandler) loadDraft(c *gin.Context) (*model.Report, model.FormDraft, bool) {
	report, ok := h.loadReport(c)
	if !ok {
		return nil, model.FormDraft{}, false
	}
	draft, err := report.DecodeDraft()
	if err != nil {
		logger.Error(c.Request.Context(), "stored draft unreadable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored draft is unreadable"})
		return nil, model.FormDraft{}, false
	}
	return report, draft.Normalized(), true
}

func (h *CertificateHandler) invalidateListings(ctx context.Context) {
	if h.deps.Cache == nil {
		return
	}
	if err := h.deps.Cache.Invalidate(ctx, service.CacheGroupMyReports, service.CacheGroupCustomerReports); err != nil {
		logger.Warn(ctx, "cache invalidation failed", "error", err)
	}
}

func writeReportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	logger.Error(c.Request.Context(), "report lookup failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
}

func writeExportError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var render *service.RenderError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           "Certificate incomplete",
			"missingSections": validation.Missing,
		})
	case errors.Is(err, service.ErrExportInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &render):
		c.JSON(http.StatusBadGateway, gin.H{"error": render.Message})
	case errors.Is(err, service.ErrDeliveryFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrDeliveryFailed.Error()})
	case errors.Is(err, service.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
	}
}

func writeDocument(c *gin.Context, doc *service.Document) {
	c.Header("Content-Disposition", attachment(doc.Filename))
	c.Header("Content-Length", strconv.Itoa(len(doc.Data)))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
