package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/ssrn-fetch/pkg/types"
)

const (
	acceptPDF  = "application/pdf,application/octet-stream,*/*"
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	defaultMaxRetries = 3

	copyChunkSize = 8192
)

// retryDelay is the pause between direct-download attempts. Tests override
// this to avoid real sleeps.
var retryDelay = 2 * time.Second

// DownloadPDF fetches the PDF for abstractID to destPath, trying the
// direct Delivery.cfm URL up to cfg.MaxRetries times with retryDelay
// between attempts. A non-PDF answer escalates to the landing-page
// fallback immediately; a transport or status failure on the final
// attempt escalates once before giving up. At most one fallback
// invocation happens per paper.
func DownloadPDF(client *http.Client, directURL, destPath, abstractID string, cfg types.FetchConfig, w io.Writer) (*types.Paper, error) {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	var lastErr *Error
	for attempt := 1; attempt <= retries; attempt++ {
		size, err := downloadDirect(client, directURL, destPath, abstractID, cfg)
		if err == nil {
			return &types.Paper{
				ID:          abstractID,
				DownloadURL: directURL,
				PDFPath:     destPath,
				Source:      types.SourceDirect,
				SizeBytes:   size,
				FetchedAt:   time.Now(),
			}, nil
		}

		switch err.Kind {
		case KindContentType:
			// The direct URL answered with something other than a PDF.
			// Retrying it would get the same answer; scrape the landing
			// page once instead.
			fmt.Fprintf(w, "  warning: direct link is not a PDF, parsing landing page\n")
			paper, pageErr := downloadFromPage(client, abstractID, destPath, cfg)
			if pageErr != nil {
				return nil, pageErr
			}
			return paper, nil

		case KindTransport, KindStatus:
			lastErr = err
			if attempt < retries {
				fmt.Fprintf(w, "  warning: attempt %d/%d failed: %s\n", attempt, retries, err.Detail)
				time.Sleep(retryDelay)
				continue
			}
			// Final attempt. Scrape the landing page before giving up.
			fmt.Fprintf(w, "  warning: attempt %d/%d failed: %s, parsing landing page\n", attempt, retries, err.Detail)
			paper, pageErr := downloadFromPage(client, abstractID, destPath, cfg)
			if pageErr != nil {
				return nil, errf(lastErr.Kind, "Direct download failed: %s; Page parsing also failed: %s",
					lastErr.Detail, pageErr.Error())
			}
			return paper, nil

		default:
			// Zero-byte results and local I/O failures are not retried:
			// the direct URL did answer, just not with a usable file.
			return nil, err
		}
	}
	return nil, lastErr
}

// downloadDirect performs one GET against the Delivery.cfm URL with the
// PDF header bundle. A 2xx answer whose content type does not indicate a
// PDF, on a URL without a .pdf suffix, comes back as KindContentType so
// the caller escalates instead of trusting the body.
func downloadDirect(client *http.Client, url, destPath, abstractID string, cfg types.FetchConfig) (int64, *Error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, errf(KindTransport, "creating request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", acceptPDF)
	req.Header.Set("Referer", LandingURL(abstractID))

	resp, err := client.Do(req)
	if err != nil {
		return 0, errf(KindTransport, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errf(KindStatus, "HTTP %d from %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "pdf") && !strings.HasSuffix(url, ".pdf") {
		return 0, errf(KindContentType, "content type %q is not a PDF", contentType)
	}

	return writeBody(resp.Body, destPath)
}

// writeBody streams body to destPath through a temp file in fixed-size
// chunks, renaming into place only after the zero-byte guard passes.
// SSRN serves empty bodies for some withdrawn papers; those must never be
// saved as successes.
func writeBody(body io.Reader, destPath string) (int64, *Error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, errf(KindUnknown, "creating temp file: %v", err)
	}
	tmpPath := tmpFile.Name()

	buf := make([]byte, copyChunkSize)
	_, copyErr := io.CopyBuffer(tmpFile, body, buf)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, errf(KindTransport, "writing download: %v", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, errf(KindUnknown, "closing temp file: %v", closeErr)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return 0, errf(KindUnknown, "stat temp file: %v", err)
	}
	if info.Size() == 0 {
		os.Remove(tmpPath)
		return 0, errf(KindEmptyFile, "File size is 0")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, errf(KindUnknown, "renaming temp file: %v", err)
	}
	return info.Size(), nil
}
