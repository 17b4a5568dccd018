// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with environment variables to load, if present")
}

var envFile string

var rootCmd = &cobra.Command{
	Use:   "landing",
	Short: "hosting landing page with address suggestions",
	Long: `
landing serves a hosting landing page whose contact form suggests postal
addresses while the visitor types, and ships the tools to try the address
lookups from the command line.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnv(envFile)
	},
}

// loadEnv loads path into the environment. Variables already set win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
