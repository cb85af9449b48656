package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// DocumentFetcher downloads a document by URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// PersistResult locates the durable copy of a certificate.
type PersistResult struct {
	PermanentURL string `json:"permanentUrl"`
	StoragePath  string `json:"storagePath"`
}

// PersistenceRelay copies rendered documents from the renderer's expiring
// URL into permanent storage.
type PersistenceRelay struct {
	fetcher DocumentFetcher
	store   BlobStore
}

func NewPersistenceRelay(fetcher DocumentFetcher, store BlobStore) *PersistenceRelay {
	return &PersistenceRelay{fetcher: fetcher, store: store}
}

// Persist downloads tempURL and uploads it under StoragePath. Re-exporting
// the same report overwrites the previous copy.
func (r *PersistenceRelay) Persist(ctx context.Context, tempURL, userID, reportID, certificateNumber string) (*PersistResult, error) {
	data, _, err := r.fetcher.Fetch(ctx, tempURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rendered document: %w", err)
	}

	objectName := StoragePath(userID, reportID, certificateNumber)
	if err := r.store.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return nil, err
	}

	logger.Info(ctx, "certificate persisted", "storage_path", objectName, "size", len(data))
	return &PersistResult{
		PermanentURL: r.store.PublicURL(objectName),
		StoragePath:  objectName,
	}, nil
}

// StoragePath is the object name of a report's certificate:
// certificates/<user>/<report>/<certificate number or report>.pdf.
func StoragePath(userID, reportID, certificateNumber string) string {
	name := sanitizePart(certificateNumber)
	if name == "" {
		name = sanitizePart(reportID)
	}
	return path.Join("certificates", sanitizePart(userID), sanitizePart(reportID), name+".pdf")
}

// sanitizePart keeps letters, digits, '-', '_' and '.', turning spaces into
// '-' and dropping everything else.
func sanitizePart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), ".")
}
