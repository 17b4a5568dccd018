// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/jcodagnone/landing/server"
	"github.com/jcodagnone/landing/suggest"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	Addr  string
	Title string
}{}

var serveEngine = &suggest.Options{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the landing page web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyEnv(cmd, lookupEnv); err != nil {
			return err
		}

		if err := applyEnv(cmd, map[string]string{"addr": "LANDING_ADDR"}); err != nil {
			return err
		}

		g, cleanup, err := newGeocoder(context.Background(), lookupOptions)
		if err != nil {
			return err
		}
		defer cleanup()

		engine := *serveEngine
		engine.LookupTimeout = lookupOptions.Timeout

		s := server.NewServer(g, &server.Options{
			Engine: engine,
			Title:  serveOptions.Title,
		})

		return s.Run(serveOptions.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addLookupFlags(serveCmd.Flags())

	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", ":8080", "address to listen on (env LANDING_ADDR)")
	serveCmd.Flags().StringVar(&serveOptions.Title, "title", "", "landing page title")
	serveCmd.Flags().DurationVar(&serveEngine.QuietPeriod, "quiet-period", suggest.DefaultQuietPeriod,
		"typing pause before an address is looked up")
	serveCmd.Flags().DurationVar(&serveEngine.BlurDelay, "blur-delay", suggest.DefaultBlurDelay,
		"delay before the suggestion panel hides once the field loses focus")
	serveCmd.Flags().BoolVar(&serveEngine.ShowEmptyPanel, "show-empty-panel", false,
		"show the suggestion panel when a lookup finds nothing")
}
