// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/landing/utils/htmlutils"
)

// Path where prospects are posted.
const Path = "/api/prospects/contact"

const logMessageLimit = 120

// Handler accepts a prospect. Any well formed JSON document is acknowledged;
// nothing is validated or stored.
func Handler(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err == nil {
		var doc any
		err = json.Unmarshal(body, &doc)
	}

	if err != nil {
		log.Printf("⚠️ reading prospect: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unexpected error"})

		return
	}

	logProspect(body)
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func logProspect(body []byte) {
	var p struct {
		Prospect

		Question string `json:"question"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		log.Printf("📨 prospect received (%d bytes, not a contact form)", len(body))

		return
	}

	if p.Question != "" {
		log.Printf("❓ question received: %s", plainText(p.Question))

		return
	}

	log.Printf("📨 prospect received from %q at %q: %s", p.Metadata.PagePath, p.City, plainText(p.Metadata.Message))
}

func plainText(s string) string {
	text, err := htmlutils.PlainText(s, logMessageLimit)
	if err != nil {
		return "(unreadable)"
	}

	return text
}
