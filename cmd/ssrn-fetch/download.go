package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ssrn-fetch/internal/fetch"
	"github.com/pdiddy/ssrn-fetch/internal/httputil"
	"github.com/pdiddy/ssrn-fetch/pkg/types"
)

const (
	defaultInputFile  = "urls.json"
	defaultOutputDir  = "ssrn_papers"
	defaultFailedLog  = "failed_downloads.json"
	defaultTimeout    = 30 * time.Second
	defaultDelay      = 1 * time.Second
	defaultMaxRetries = 3

	// SSRN answers non-browser user agents with an HTML interstitial,
	// so the tool identifies as Chrome.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download paper PDFs for every URL in the input list",
	Long: `Download reads a JSON array of SSRN paper URLs, extracts each paper's
abstract ID, and fetches its PDF into the output directory. The direct
Delivery.cfm URL is tried first with bounded retries; when it fails or
answers with something other than a PDF, the paper's landing page is
scraped for the download link. Papers already on disk are skipped.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("input", defaultInputFile, "JSON file with the list of paper URLs")
	downloadCmd.Flags().String("output-dir", defaultOutputDir, "directory for downloaded PDFs")
	downloadCmd.Flags().String("failed-log", defaultFailedLog, "JSON file for failure records")
	downloadCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	downloadCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive papers")
	downloadCmd.Flags().Int("retries", defaultMaxRetries, "direct download attempts before the page fallback")
	downloadCmd.Flags().String("proxy", "", "outbound proxy URL (http, https, or socks5)")

	viper.BindPFlags(downloadCmd.Flags())

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: defaultUserAgent,
			ProxyURL:  viper.GetString("proxy"),
		},
		InputFile:     viper.GetString("input"),
		OutputDir:     viper.GetString("output-dir"),
		FailedLogFile: viper.GetString("failed-log"),
		Delay:         viper.GetDuration("delay"),
		MaxRetries:    viper.GetInt("retries"),
	}

	urls, err := fetch.ReadURLList(cfg.InputFile)
	if err != nil {
		return err
	}
	fmt.Printf("Read %d URLs from %s\n", len(urls), cfg.InputFile)

	client, err := httputil.NewClient(cfg.Timeout, cfg.ProxyURL)
	if err != nil {
		return err
	}
	if cfg.ProxyURL != "" {
		fmt.Printf("Using proxy: %s\n", cfg.ProxyURL)
	}

	result, err := fetch.FetchBatch(client, urls, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}
