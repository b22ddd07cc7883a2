// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/ssrn-fetch/pkg/types"
)

var (
	// downloadTextPattern matches the visible "Download This Paper"
	// anchor text on SSRN landing pages.
	downloadTextPattern = regexp.MustCompile(`(?i)download this paper`)

	// buttonClassPattern matches the styling SSRN puts on its primary
	// download button.
	buttonClassPattern = regexp.MustCompile(`button-link.*primary`)
)

// downloadFromPage fetches the landing page for abstractID, locates the
// download anchor, and fetches the PDF from the resolved href. Network
// failures at either stage come back as descriptive Error values, never
// as raw transport errors.
func downloadFromPage(client *http.Client, abstractID, destPath string, cfg types.FetchConfig) (*types.Paper, *Error) {
	pageURL := LandingURL(abstractID)

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errf(KindTransport, "creating page request: %v", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", acceptHTML)

	resp, err := client.Do(req)
	if err != nil {
		return nil, errf(KindTransport, "Page request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errf(KindStatus, "Page request failed: HTTP %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errf(KindNoLink, "parsing page: %v", err)
	}

	href, ok := findDownloadLink(doc, abstractID)
	if !ok {
		return nil, errf(KindNoLink, "Unable to find download link in page")
	}
	downloadURL := resolveHref(href)

	pdfReq, err := http.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, errf(KindTransport, "creating download request: %v", err)
	}
	pdfReq.Header.Set("User-Agent", cfg.UserAgent)
	pdfReq.Header.Set("Accept", acceptPDF)
	pdfReq.Header.Set("Referer", pageURL)

	pdfResp, err := client.Do(pdfReq)
	if err != nil {
		return nil, errf(KindTransport, "download request failed: %v", err)
	}
	defer pdfResp.Body.Close()

	if pdfResp.StatusCode < 200 || pdfResp.StatusCode >= 300 {
		return nil, errf(KindStatus, "HTTP %d from %s", pdfResp.StatusCode, downloadURL)
	}

	size, werr := writeBody(pdfResp.Body, destPath)
	if werr != nil {
		return nil, werr
	}

	return &types.Paper{
		ID:          abstractID,
		DownloadURL: downloadURL,
		PDFPath:     destPath,
		Source:      types.SourcePage,
		SizeBytes:   size,
		FetchedAt:   time.Now(),
	}, nil
}

// findDownloadLink searches the landing page for the download anchor.
// The matchers run in order and the first anchor carrying an href wins;
// the order is a priority policy over SSRN markup variants: the data
// attribute is most specific, the visible text next, the button styling
// last.
func findDownloadLink(doc *goquery.Document, abstractID string) (string, bool) {
	matchers := []func(*goquery.Document) *goquery.Selection{
		func(d *goquery.Document) *goquery.Selection {
			return d.Find(fmt.Sprintf(`a[data-abstract-id=%q]`, abstractID))
		},
		func(d *goquery.Document) *goquery.Selection {
			return d.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
				return downloadTextPattern.MatchString(s.Text())
			})
		},
		func(d *goquery.Document) *goquery.Selection {
			return d.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
				class, _ := s.Attr("class")
				return buttonClassPattern.MatchString(class)
			})
		},
	}

	for _, match := range matchers {
		if href, ok := match(doc).First().Attr("href"); ok && href != "" {
			return href, true
		}
	}
	return "", false
}
