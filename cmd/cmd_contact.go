// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jcodagnone/landing/contact"
	"github.com/jcodagnone/landing/suggest"
	"github.com/spf13/cobra"
)

var (
	contactForm     = &contact.Form{}
	contactQuestion = &contact.Question{}
	contactOptions = &contact.ClientOptions{}
	contactLookup  string
	contactPath    string
)

var errNotSent = errors.New("not sent")

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Contact form tools",
}

var contactSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Fill and submit the contact form of a running server",
	Long: `Submits the contact form to a running server and prints the resulting toast.
With --lookup the address fields are filled from the first suggestion found
for the given text.

$ landing contact submit --name Ada --last-name Lovelace --email ada@example.com \
	--lookup "123 Main St, Springfield"
{"kind":"success","message":"dataSendSuccess",…}
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyEnv(cmd, lookupEnv); err != nil {
			return err
		}

		ctx := context.Background()

		if contactLookup != "" {
			if err := applyFirstSuggestion(ctx, contactForm, contactLookup); err != nil {
				return err
			}
		}

		contactOptions.EnableHTTPTrace = lookupOptions.HTTPTrace
		toast := contact.NewClient(contactOptions).Submit(ctx, contactForm, contactPath)

		return printToast(toast)
	},
}

var contactAskCmd = &cobra.Command{
	Use:   "ask",
	Short: "Send an FAQ question to a running server",
	Long: `Sends a question the way the FAQ section does and prints the resulting toast.
At least one valid email or phone is required.

$ landing contact ask --question "Do you host Go services?" --email ada@example.com
{"kind":"success","message":"dataSendSuccess"}
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		toast := contact.NewClient(contactOptions).Ask(context.Background(), contactQuestion)

		return printToast(toast)
	},
}

func printToast(toast contact.Toast) error {
	out, err := json.Marshal(toast)
	if err != nil {
		return fmt.Errorf("encoding toast: %w", err)
	}

	fmt.Println(string(out))

	if toast.Kind != contact.ToastSuccess {
		return errNotSent
	}

	return nil
}

func applyFirstSuggestion(ctx context.Context, form *contact.Form, query string) error {
	g, cleanup, err := newGeocoder(ctx, lookupOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	suggestions, err := g.Suggest(ctx, query)
	if err != nil {
		return fmt.Errorf("looking up %q: %w", query, err)
	}

	if len(suggestions) == 0 {
		log.Printf("⚠️ no address found for %q, keeping the address fields", query)

		return nil
	}

	sel := suggest.SelectionFrom(suggestions[0])
	log.Printf("📍 %s", suggestions[0].Display)
	form.Apply(sel)

	return nil
}

func init() {
	rootCmd.AddCommand(contactCmd)
	contactCmd.AddCommand(contactSubmitCmd)
	contactCmd.AddCommand(contactAskCmd)

	contactCmd.PersistentFlags().StringVar(&contactOptions.BaseURL, "url", "http://localhost:8080",
		"base URL of the landing server")

	flags := contactSubmitCmd.Flags()
	addLookupFlags(flags)

	flags.StringVar(&contactPath, "page-path", "/", "page the form is submitted from")
	flags.StringVar(&contactLookup, "lookup", "", "fill the address from the first suggestion for this text")
	flags.StringVar(&contactForm.Name, "name", "", "first name")
	flags.StringVar(&contactForm.LastName, "last-name", "", "last name")
	flags.StringVar(&contactForm.Email, "email", "", "email")
	flags.StringVar(&contactForm.Phone, "phone", "", "phone")
	flags.StringVar(&contactForm.Address, "address", "", "street address")
	flags.StringVar(&contactForm.City, "city", "", "city")
	flags.StringVar(&contactForm.State, "state", "", "state")
	flags.StringVar(&contactForm.Postal, "postal", "", "postal code")
	flags.StringVar(&contactForm.Message, "message", "", "message")

	askFlags := contactAskCmd.Flags()
	askFlags.StringVar(&contactQuestion.Question, "question", "", "question, at least 5 characters")
	askFlags.StringVar(&contactQuestion.Email, "email", "", "email to answer to")
	askFlags.StringVar(&contactQuestion.Phone, "phone", "", "phone to answer to")
}
