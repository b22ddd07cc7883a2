package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ssrn-fetch/pkg/types"
)

const (
	metadataDir = "metadata"

	// timestampFormat is the failure-record timestamp layout.
	timestampFormat = "2006-01-02 15:04:05"

	// maxInlineFailures caps how many failures the summary prints before
	// pointing at the log file.
	maxInlineFailures = 10
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Failures   []types.FailureRecord
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any papers failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ReadURLList loads the JSON array of paper URLs from path. A missing or
// malformed file is fatal to the run; no network activity happens first.
func ReadURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("parsing URL list %s: %w", path, err)
	}
	return urls, nil
}

// FetchBatch processes the URL list one paper at a time, printing per-item
// status and returning a summary. Papers already on disk are skipped
// without a network call, every failure becomes a FailureRecord, and
// cfg.Delay separates consecutive papers. At the end of the run the
// failure log is rewritten when any record exists.
func FetchBatch(client *http.Client, urls []string, cfg types.FetchConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}
	metaDir := filepath.Join(cfg.OutputDir, metadataDir)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return result, fmt.Errorf("creating metadata directory: %w", err)
	}

	for i, url := range urls {
		if i > 0 && cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}
		prefix := fmt.Sprintf("[%d/%d]", i+1, len(urls))

		abstractID, ok := ExtractAbstractID(url)
		if !ok {
			detail := "Unable to extract abstract_id from URL"
			fmt.Fprintf(w, "%s failed:  %s (%s)\n", prefix, url, detail)
			result.Failed++
			result.Failures = append(result.Failures, types.FailureRecord{
				URL:       url,
				Error:     detail,
				Timestamp: time.Now().Format(timestampFormat),
			})
			continue
		}

		destPath := filepath.Join(cfg.OutputDir, abstractID+".pdf")
		if _, err := os.Stat(destPath); err == nil {
			fmt.Fprintf(w, "%s skipped: %s (already exists)\n", prefix, abstractID)
			result.Skipped++
			continue
		}

		fmt.Fprintf(w, "%s downloading: %s\n", prefix, abstractID)

		paper, err := DownloadPDF(client, DirectURL(abstractID), destPath, abstractID, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "%s failed:  %s (%v)\n", prefix, abstractID, err)
			result.Failed++
			// Drop any partial file so a re-run retries this paper.
			if _, statErr := os.Stat(destPath); statErr == nil {
				os.Remove(destPath)
			}
			result.Failures = append(result.Failures, types.FailureRecord{
				URL:        url,
				AbstractID: abstractID,
				Error:      err.Error(),
				Timestamp:  time.Now().Format(timestampFormat),
			})
			continue
		}

		paper.SourceURL = url
		fmt.Fprintf(w, "%s fetched: %s (%.1f KB, %s)\n", prefix, abstractID,
			float64(paper.SizeBytes)/1024, paper.Source)

		if err := writeMetadata(paper, filepath.Join(metaDir, abstractID+".yaml")); err != nil {
			fmt.Fprintf(w, "  warning: metadata write failed: %v\n", err)
		}
		result.Downloaded++
	}

	var logErr error
	if result.HasFailures() {
		if logErr = writeFailureLog(result.Failures, cfg.FailedLogFile); logErr != nil {
			logErr = fmt.Errorf("writing failure log: %w", logErr)
		}
	}
	printSummary(w, result, cfg)
	return result, logErr
}

// writeFailureLog replaces the failure log with the records from this
// run. Indented output with HTML escaping off keeps non-ASCII URLs and
// error text readable.
func writeFailureLog(records []types.FailureRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	encErr := enc.Encode(records)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

// writeMetadata writes a Paper record to a YAML file.
func writeMetadata(paper *types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(w io.Writer, result BatchResult, cfg types.FetchConfig) {
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	fmt.Fprintf(w, "Output directory: %s\n", cfg.OutputDir)

	if !result.HasFailures() {
		return
	}
	fmt.Fprintf(w, "Failure log: %s\n", cfg.FailedLogFile)
	fmt.Fprintln(w, "Failed URLs:")

	shown := result.Failures
	if len(shown) > maxInlineFailures {
		shown = shown[:maxInlineFailures]
	}
	for _, rec := range shown {
		fmt.Fprintf(w, "  - %s (%s)\n", rec.URL, rec.Error)
	}
	if rest := len(result.Failures) - len(shown); rest > 0 {
		fmt.Fprintf(w, "  ... %d more, see %s\n", rest, cfg.FailedLogFile)
	}
}
