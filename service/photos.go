package service

import (
	"context"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// PhotoStore lists the photo rows uploaded for a report.
type PhotoStore interface {
	ListByReport(ctx context.Context, reportID, reportType string) ([]model.ReportPhoto, error)
}

// URLResolver turns a storage path into a URL the renderer can fetch.
type URLResolver interface {
	PublicURL(objectName string) string
}

// PhotoJoiner attaches photo URLs to observations with one query per report.
type PhotoJoiner struct {
	photos PhotoStore
	urls   URLResolver
}

func NewPhotoJoiner(photos PhotoStore, urls URLResolver) *PhotoJoiner {
	return &PhotoJoiner{photos: photos, urls: urls}
}

// Join returns every observation, each with its photo URLs and count. When
// the lookup fails or finds nothing the observations come back with empty
// photo lists; photos never block an export.
func (j *PhotoJoiner) Join(ctx context.Context, reportID string, observations []model.ObservationRow) []model.ObservationRow {
	out := make([]model.ObservationRow, len(observations))
	for i, o := range observations {
		o.PhotoEvidence = []string{}
		o.PhotoCount = 0
		out[i] = o
	}
	if len(out) == 0 || j == nil || j.photos == nil || j.urls == nil {
		return out
	}

	photos, err := j.photos.ListByReport(ctx, reportID, model.CertificateTypeEIC)
	if err != nil {
		logger.Warn(ctx, "photo lookup failed, exporting observations without photos", "error", err)
		return out
	}

	byObservation := make(map[string][]string)
	for _, p := range photos {
		if p.ObservationID == "" || p.FilePath == "" {
			continue
		}
		byObservation[p.ObservationID] = append(byObservation[p.ObservationID], j.urls.PublicURL(p.FilePath))
	}

	for i := range out {
		if urls, ok := byObservation[out[i].ID]; ok {
			out[i].PhotoEvidence = append([]string{}, urls...)
			out[i].PhotoCount = len(urls)
		}
	}

	logger.Debug(ctx, "observation photos joined", "photos", len(photos), "observations", len(out))
	return out
}
