// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// DefaultKeyDisplayName is the display name of the Maps key looked up by
// APIKeyFromADC.
const DefaultKeyDisplayName = "Landing Geocoding Key"

// APIKeyFromADC retrieves the Google Maps API key through Application
// Default Credentials: it lists the keys of the credentials' project (or
// fallbackProject when the credentials carry none) and returns the secret of
// the one named displayName.
func APIKeyFromADC(ctx context.Context, fallbackProject, displayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		if fallbackProject == "" {
			return "", errors.New("no project found in default credentials")
		}

		// user credentials without a quota project
		projectID = fallbackProject
		log.Printf("⚠️ No Project ID found in credentials. Using fallback: %s", projectID)
	}

	if displayName == "" {
		displayName = DefaultKeyDisplayName
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret.
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but its secret is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}
