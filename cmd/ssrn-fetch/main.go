// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ssrn-fetch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the ssrn-fetch CLI.
var rootCmd = &cobra.Command{
	Use:   "ssrn-fetch",
	Short: "Batch download SSRN paper PDFs",
	Long: `ssrn-fetch reads a JSON list of SSRN paper URLs and downloads each
paper's PDF. Papers already on disk are skipped, every failed paper is
recorded to a JSON log for later triage, and each run ends with a summary
of downloads, skips, and failures.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ssrn-fetch.yaml or ~/.config/ssrn-fetch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ssrn-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ssrn-fetch"))
		}
	}

	viper.SetEnvPrefix("SSRN_FETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
