package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// Document is a certificate ready to hand to the client.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	SourceURL   string
}

// Delivery fetches the bytes of a generated certificate.
type Delivery struct {
	fetcher DocumentFetcher
	store   BlobStore
}

// NewDelivery wires the URL fetcher and, optionally, the blob store used to
// re-deliver stored certificates.
func NewDelivery(fetcher DocumentFetcher, store BlobStore) *Delivery {
	return &Delivery{fetcher: fetcher, store: store}
}

// Deliver fetches the best available URL, then tempURL if that fails.
// Either URL may be empty.
func (d *Delivery) Deliver(ctx context.Context, bestURL, tempURL, filename string) (*Document, error) {
	var errs []error
	tried := map[string]bool{}
	for _, url := range []string{bestURL, tempURL} {
		if url == "" || tried[url] {
			continue
		}
		tried[url] = true

		data, contentType, err := d.fetcher.Fetch(ctx, url)
		if err != nil {
			logger.Warn(ctx, "certificate download failed", "url", url, "error", err)
			errs = append(errs, err)
			continue
		}
		return &Document{
			Filename:    filename,
			ContentType: pdfContentType(contentType),
			Data:        data,
			SourceURL:   url,
		}, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no document URL", ErrDeliveryFailed)
	}
	return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(errs...))
}

// DeliverStored re-delivers the document recorded on a report, reading the
// durable copy directly when one exists.
func (d *Delivery) DeliverStored(ctx context.Context, report *model.Report) (*Document, error) {
	filename := CertificateFilename(report.CertificateNumber, report.ClientName, generatedDate(report))

	if report.StoragePath != "" && d.store != nil {
		data, err := d.readStored(ctx, report.StoragePath)
		if err == nil {
			return &Document{
				Filename:    filename,
				ContentType: "application/pdf",
				Data:        data,
				SourceURL:   report.PDFURL,
			}, nil
		}
		logger.Warn(ctx, "stored certificate unreadable, falling back to URL", "storage_path", report.StoragePath, "error", err)
	}

	if report.PDFURL == "" {
		return nil, ErrReportNotFound
	}
	return d.Deliver(ctx, report.PDFURL, "", filename)
}

func (d *Delivery) readStored(ctx context.Context, objectName string) ([]byte, error) {
	rc, err := d.store.Open(ctx, objectName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func generatedDate(report *model.Report) time.Time {
	if report.PDFGeneratedAt != nil {
		return *report.PDFGeneratedAt
	}
	return report.UpdatedAt
}

func pdfContentType(contentType string) string {
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		return "application/pdf"
	}
	return contentType
}

// CertificateFilename builds EIC_<number>_<client>_<YYYY-MM-DD>.pdf. Parts
// are sanitised and empty parts become "Unknown".
func CertificateFilename(certificateNumber, clientName string, date time.Time) string {
	return fmt.Sprintf("EIC_%s_%s_%s.pdf",
		filenamePart(certificateNumber),
		filenamePart(clientName),
		date.Format("2006-01-02"),
	)
}

func filenamePart(s string) string {
	part := strings.Trim(sanitizePart(s), "-_")
	if part == "" {
		return "Unknown"
	}
	return part
}
