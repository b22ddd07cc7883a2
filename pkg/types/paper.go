// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperSource identifies which strategy produced a paper's PDF.
type PaperSource string

const (
	// SourceDirect means the deterministic Delivery.cfm URL answered
	// with the PDF.
	SourceDirect PaperSource = "direct"

	// SourcePage means the PDF URL was scraped from the paper's
	// landing page.
	SourcePage PaperSource = "page"
)

// Paper holds metadata for one downloaded paper, written next to the PDFs
// as a YAML record.
type Paper struct {
	// ID is the SSRN abstract ID, also the PDF filename stem.
	ID string `json:"id" yaml:"id"`

	// SourceURL is the paper URL as it appeared in the input file.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// DownloadURL is the URL the PDF bytes were actually fetched from.
	DownloadURL string `json:"download_url" yaml:"download_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Source records whether the direct URL or the page fallback
	// produced the file.
	Source PaperSource `json:"source" yaml:"source"`

	// SizeBytes is the size of the downloaded file.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// FetchedAt is when the download completed.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
