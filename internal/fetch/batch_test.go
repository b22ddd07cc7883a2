// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ssrn-fetch/pkg/types"
)

func writeURLList(t *testing.T, dir string, urls []string) string {
	t.Helper()
	path := filepath.Join(dir, "urls.json")
	data, err := json.Marshal(urls)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadURLList(t *testing.T) {
	dir := t.TempDir()
	urls := []string{"https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1"}
	path := writeURLList(t, dir, urls)

	got, err := ReadURLList(path)
	if err != nil {
		t.Fatalf("ReadURLList: %v", err)
	}
	if len(got) != 1 || got[0] != urls[0] {
		t.Errorf("ReadURLList = %v, want %v", got, urls)
	}
}

func TestReadURLListMissing(t *testing.T) {
	_, err := ReadURLList(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestReadURLListMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadURLList(path); err == nil {
		t.Fatal("expected error for malformed input file")
	}
}

func TestFetchBatchMixed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/sol3/Delivery.cfm/") {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()
	restore := overrideSSRNBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)

	// Pre-create the second paper so it gets skipped.
	if err := os.WriteFile(filepath.Join(dir, "2222.pdf"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	urls := []string{
		"https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1111",
		"https://papers.ssrn.com/sol3/papers.cfm?abstract_id=2222",
		"https://example.com/no-id-here",
	}

	var buf bytes.Buffer
	result, err := FetchBatch(ts.Client(), urls, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}

	if result.Downloaded != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", result.Downloaded, result.Skipped, result.Failed)
	}
	if result.Total() != len(urls) {
		t.Errorf("Total() = %d, want %d", result.Total(), len(urls))
	}

	// Downloaded PDF on disk.
	data, err := os.ReadFile(filepath.Join(dir, "1111.pdf"))
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("PDF content = %q, want %q", string(data), fakePDFContent)
	}

	// Metadata record written for the success.
	metaData, err := os.ReadFile(filepath.Join(dir, "metadata", "1111.yaml"))
	if err != nil {
		t.Fatalf("reading metadata: %v", err)
	}
	var paper types.Paper
	if err := yaml.Unmarshal(metaData, &paper); err != nil {
		t.Fatalf("parsing metadata: %v", err)
	}
	if paper.ID != "1111" {
		t.Errorf("paper.ID = %q, want %q", paper.ID, "1111")
	}
	if paper.SourceURL != urls[0] {
		t.Errorf("paper.SourceURL = %q, want %q", paper.SourceURL, urls[0])
	}
	if paper.Source != types.SourceDirect {
		t.Errorf("paper.Source = %q, want %q", paper.Source, types.SourceDirect)
	}

	// Failure log holds exactly the failed item.
	logData, err := os.ReadFile(cfg.FailedLogFile)
	if err != nil {
		t.Fatalf("reading failure log: %v", err)
	}
	var records []types.FailureRecord
	if err := json.Unmarshal(logData, &records); err != nil {
		t.Fatalf("parsing failure log: %v", err)
	}
	if len(records) != result.Failed {
		t.Fatalf("log records = %d, want %d", len(records), result.Failed)
	}
	rec := records[0]
	if rec.URL != "https://example.com/no-id-here" {
		t.Errorf("record.URL = %q", rec.URL)
	}
	if rec.AbstractID != "" {
		t.Errorf("record.AbstractID = %q, want empty", rec.AbstractID)
	}
	if rec.Error != "Unable to extract abstract_id from URL" {
		t.Errorf("record.Error = %q", rec.Error)
	}
	if rec.Timestamp == "" {
		t.Error("record.Timestamp is empty")
	}

	out := buf.String()
	for _, want := range []string{"downloading: 1111", "skipped: 2222", "failed:", "Batch summary: 1 downloaded, 1 skipped, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFetchBatchSkipMakesNoRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()
	restore := overrideSSRNBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)
	if err := os.WriteFile(filepath.Join(dir, "3333.pdf"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result, err := FetchBatch(ts.Client(),
		[]string{"https://papers.ssrn.com/sol3/papers.cfm?abstract_id=3333"}, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestFetchBatchUnparsableURLMakesNoRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()
	restore := overrideSSRNBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	var buf bytes.Buffer
	result, err := FetchBatch(ts.Client(), []string{"https://example.com/no-id-here"}, testConfig(dir), &buf)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestFetchBatchNoLogWithoutFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()
	restore := overrideSSRNBase(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)

	var buf bytes.Buffer
	result, err := FetchBatch(ts.Client(),
		[]string{"https://papers.ssrn.com/sol3/papers.cfm?abstract_id=4444"}, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if result.Downloaded != 1 {
		t.Errorf("Downloaded = %d, want 1", result.Downloaded)
	}
	if _, statErr := os.Stat(cfg.FailedLogFile); statErr == nil {
		t.Error("failure log should not exist for a clean run")
	}
}

func TestFetchBatchSummaryTruncatesFailures(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	// Twelve unparsable URLs, no network needed.
	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/item-%d", i))
	}

	var buf bytes.Buffer
	result, err := FetchBatch(http.DefaultClient, urls, cfg, &buf)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if result.Failed != 12 {
		t.Fatalf("Failed = %d, want 12", result.Failed)
	}

	out := buf.String()
	if !strings.Contains(out, "... 2 more, see "+cfg.FailedLogFile) {
		t.Errorf("summary should point to the log for overflow failures:\n%s", out)
	}
	if got := strings.Count(out, "  - https://example.com/item-"); got != maxInlineFailures {
		t.Errorf("inline failures = %d, want %d", got, maxInlineFailures)
	}

	var records []types.FailureRecord
	logData, err := os.ReadFile(cfg.FailedLogFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(logData, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 12 {
		t.Errorf("log records = %d, want 12", len(records))
	}
}

func TestFetchBatchLogReplacedEachRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	// Seed a stale log from an earlier run.
	stale := []types.FailureRecord{{URL: "stale", Error: "old"}, {URL: "stale2", Error: "old"}}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(cfg.FailedLogFile, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := FetchBatch(http.DefaultClient, []string{"https://example.com/no-id"}, cfg, &buf); err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}

	logData, err := os.ReadFile(cfg.FailedLogFile)
	if err != nil {
		t.Fatal(err)
	}
	var records []types.FailureRecord
	if err := json.Unmarshal(logData, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].URL != "https://example.com/no-id" {
		t.Errorf("log should hold only this run's failures, got %v", records)
	}
}
