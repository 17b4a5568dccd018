// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupHandlerTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST(Path, Handler)

	return router
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "contact form",
			body:     `{"name":"Ada","metadata":{"message":"<b>hello</b>","pagePath":"/"}}`,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "faq question",
			body:     `{"question":"Do you host Go?","phone":"5550100"}`,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "missing fields are not validated",
			body:     `{}`,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "any json document",
			body:     `[1,2,3]`,
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name:     "malformed",
			body:     `{"name":`,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"error":"Unexpected error"}`,
		},
		{
			name:     "empty body",
			body:     ``,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"error":"Unexpected error"}`,
		},
	}

	router := setupHandlerTest()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
