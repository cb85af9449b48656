package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/middleware"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/service"
	"github.com/gin-gonic/gin"
)

// ReportLister lists a user's reports.
type ReportLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Report, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Report, error)
	ListByClient(ctx context.Context, userID, name string, limit int) ([]model.Report, error)
}

// ReportsHandler serves the report listings the export invalidates.
type ReportsHandler struct {
	reports ReportLister
	cache   *service.QueryCache
}

func NewReportsHandler(reports ReportLister, cache *service.QueryCache) *ReportsHandler {
	if cache == nil {
		cache = service.NewQueryCache(0)
	}
	return &ReportsHandler{reports: reports, cache: cache}
}

// ReportSummary is a listing row; drafts are never listed.
type ReportSummary struct {
	ReportID          string             `json:"reportId"`
	Status            model.ReportStatus `json:"status"`
	CertificateType   string             `json:"certificateType"`
	CertificateNumber string             `json:"certificateNumber"`
	ClientName        string             `json:"clientName"`
	PDFURL            string             `json:"pdfUrl,omitempty"`
	PDFGeneratedAt    *time.Time         `json:"pdfGeneratedAt,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// List returns the user's reports, most recently edited first.
func (h *ReportsHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit := queryLimit(c)

	h.respond(c, service.CacheGroupMyReports, fmt.Sprintf("%s:%d", userID, limit), func(ctx context.Context) ([]model.Report, error) {
		return h.reports.ListByUser(ctx, userID, limit)
	})
}

// Recent returns the user's latest generated certificates.
func (h *ReportsHandler) Recent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit := queryLimit(c)

	h.respond(c, service.CacheGroupRecentCertificates, fmt.Sprintf("%s:%d", userID, limit), func(ctx context.Context) ([]model.Report, error) {
		return h.reports.ListRecent(ctx, userID, limit)
	})
}

// Customer returns the user's reports for a client name.
func (h *ReportsHandler) Customer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	limit := queryLimit(c)

	key := fmt.Sprintf("%s:%d:%s", userID, limit, strings.ToLower(name))
	h.respond(c, service.CacheGroupCustomerReports, key, func(ctx context.Context) ([]model.Report, error) {
		return h.reports.ListByClient(ctx, userID, name, limit)
	})
}

func (h *ReportsHandler) respond(c *gin.Context, group, key string, load func(ctx context.Context) ([]model.Report, error)) {
	ctx := c.Request.Context()
	summaries, err := service.Fetch(h.cache, group, key, func() ([]ReportSummary, error) {
		reports, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return summarize(reports), nil
	})
	if err != nil {
		logger.Error(ctx, "report listing failed", "group", group, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": summaries})
}

func summarize(reports []model.Report) []ReportSummary {
	out := make([]ReportSummary, len(reports))
	for i, r := range reports {
		out[i] = ReportSummary{
			ReportID:          r.ReportID,
			Status:            r.Status,
			CertificateType:   r.CertificateType,
			CertificateNumber: r.CertificateNumber,
			ClientName:        r.ClientName,
			PDFURL:            r.PDFURL,
			PDFGeneratedAt:    r.PDFGeneratedAt,
			UpdatedAt:         r.UpdatedAt,
		}
	}
	return out
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
