// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/landing/suggest"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query...]",
	Short: "Look addresses up the way the contact form does",
	Long: `Looks up every query given as argument, or one query per line read from
stdin, and prints the query followed by its suggestions.

$ echo "123 Main St, Springfield" | landing suggest
123 Main St, Springfield		[{"display":"123 Main St, Springfield, IL, 62704",…}]
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyEnv(cmd, lookupEnv); err != nil {
			return err
		}

		g, cleanup, err := newGeocoder(context.Background(), lookupOptions)
		if err != nil {
			return err
		}
		defer cleanup()

		results := make(chan suggest.LookupResult, 8)
		engine := suggest.NewEngine(g, &suggest.Options{
			QuietPeriod:   time.Millisecond,
			LookupTimeout: lookupOptions.Timeout,
			OnLookup:      func(r suggest.LookupResult) { results <- r },
		})
		defer engine.Close()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
			bar = progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Looking up"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			defer bar.Finish()
		}

		return eachQuery(args, os.Stdin, func(query string) error {
			line := runQuery(engine, results, query)
			if bar != nil {
				_ = bar.Add(1)
			}

			_, err := fmt.Fprintln(os.Stdout, line)

			return err
		})
	},
}

// eachQuery calls fn with every argument or, without arguments, every line
// of input.
func eachQuery(args []string, input io.Reader, fn func(string) error) error {
	for _, q := range args {
		if err := fn(q); err != nil {
			return err
		}
	}

	if len(args) > 0 {
		return nil
	}

	if f, ok := input.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(os.Stderr, "Enter addresses to look up, one per line…")
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

// runQuery types query into the engine and formats the committed list.
func runQuery(engine *suggest.Engine, results <-chan suggest.LookupResult, query string) string {
	engine.TextChanged(query)

	if len([]rune(strings.TrimSpace(query))) < suggest.MinQueryLength {
		return fmt.Sprintf("%s\t%q", query, "too short")
	}

	for r := range results {
		if r.Outcome == suggest.OutcomeStale {
			continue
		}

		if r.Outcome == suggest.OutcomeFailed {
			return fmt.Sprintf("%s\t%q", query, r.Err)
		}

		break
	}

	s, err := json.Marshal(engine.State().Suggestions)
	if err != nil {
		return fmt.Sprintf("%s\t%q", query, err)
	}

	return fmt.Sprintf("%s\t\t%s", query, s)
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	addLookupFlags(suggestCmd.Flags())
}
