// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads SSRN paper PDFs from a list of paper URLs.
// The direct Delivery.cfm URL is tried first with bounded retries; when
// it fails or answers with a non-PDF payload, the paper's landing page
// is scraped for the download link.
package fetch

import (
	"fmt"
	"regexp"
	"strings"
)

// ssrnBase is the SSRN host serving both Delivery.cfm downloads and
// papers.cfm landing pages. Declared as a var so tests can substitute an
// httptest server.
var ssrnBase = "https://papers.ssrn.com"

// abstractIDPattern matches the numeric abstract_id query parameter in an
// SSRN paper URL.
var abstractIDPattern = regexp.MustCompile(`abstract_id=(\d+)`)

// ExtractAbstractID pulls the abstract ID out of an SSRN paper URL. When
// the URL carries the parameter more than once, the first occurrence wins.
func ExtractAbstractID(url string) (string, bool) {
	m := abstractIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DirectURL builds the deterministic Delivery.cfm download URL for an
// abstract ID, without contacting SSRN first.
func DirectURL(abstractID string) string {
	return fmt.Sprintf("%s/sol3/Delivery.cfm/%s.pdf?abstractid=%s&mirid=1",
		ssrnBase, abstractID, abstractID)
}

// LandingURL builds the papers.cfm landing page URL for an abstract ID.
// It doubles as the Referer for PDF requests.
func LandingURL(abstractID string) string {
	return fmt.Sprintf("%s/sol3/papers.cfm?abstract_id=%s", ssrnBase, abstractID)
}

// resolveHref turns an anchor href from the landing page into an absolute
// URL: host-relative paths get the host prefix, bare Delivery.cfm hrefs
// get host and /sol3/, anything else is taken as already absolute.
func resolveHref(href string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return ssrnBase + href
	case strings.HasPrefix(href, "Delivery.cfm"):
		return ssrnBase + "/sol3/" + href
	default:
		return href
	}
}
