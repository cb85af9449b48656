package service

import (
	"fmt"
	"strings"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
)

// Billing document kinds derived from a certificate.
const (
	BillingQuote   = "quote"
	BillingInvoice = "invoice"
)

// BillingDraft pre-fills a quote or invoice with a certificate's client.
type BillingDraft struct {
	Kind                 string `json:"kind"`
	ClientName           string `json:"clientName"`
	ClientEmail          string `json:"clientEmail"`
	ClientPhone          string `json:"clientPhone"`
	ClientAddress        string `json:"clientAddress"`
	InstallationAddress  string `json:"installationAddress"`
	CertificateType      string `json:"certificateType"`
	CertificateReference string `json:"certificateReference"`
	ReportID             string `json:"reportId"`
	PDFURL               string `json:"pdfUrl,omitempty"`
	Description          string `json:"description"`
}

// BillingFromCertificate maps the certificate's client fields onto a quote
// or invoice draft. The client address falls back to the installation address.
func BillingFromCertificate(kind string, report *model.Report, draft model.FormDraft) BillingDraft {
	installation := strings.TrimSpace(draft.InstallationAddress)
	out := BillingDraft{
		Kind:                 kind,
		ClientName:           strings.TrimSpace(draft.ClientName),
		ClientEmail:          strings.TrimSpace(draft.ClientEmail),
		ClientPhone:          strings.TrimSpace(draft.ClientPhone),
		ClientAddress:        firstNonEmpty(strings.TrimSpace(draft.ClientAddress), installation),
		InstallationAddress:  installation,
		CertificateType:      "EIC",
		CertificateReference: draft.CertificateNumber,
	}
	if report != nil {
		out.ReportID = report.ReportID
		out.PDFURL = report.PDFURL
	}

	out.Description = "Electrical installation works"
	if installation != "" {
		out.Description += " at " + installation
	}
	if out.CertificateReference != "" {
		out.Description += fmt.Sprintf(" (EIC %s)", out.CertificateReference)
	}
	return out
}
