// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export turns rendered contract text into downloadable document
// artifacts (PDF, DOCX). The actual rendering is delegated to an external
// renderer service over HTTP; this package handles the protocol.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Format identifies a document output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f Format) bool {
	return f == FormatPDF || f == FormatDOCX
}

// MimeType returns the content type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/pdf"
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatDOCX:
		return ".docx"
	default:
		return ".pdf"
	}
}

// Request describes a document to generate.
type Request struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  Format `json:"format"`
}

// Result is a generated document artifact.
type Result struct {
	Data     []byte
	MimeType string
}

// Exporter generates document artifacts from contract content.
type Exporter interface {
	Export(ctx context.Context, req Request) (*Result, error)
}

// HTTPExporter calls an external renderer service. The renderer accepts a
// JSON request on POST /render and responds with the raw document bytes.
// Failed exports are not retried; the caller decides how to surface them.
type HTTPExporter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExporter creates an exporter for the renderer at baseURL.
// Returns nil if baseURL is empty, allowing the app to start without a
// renderer configured.
func NewHTTPExporter(baseURL string, timeout time.Duration) *HTTPExporter {
	if baseURL == "" {
		return nil
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPExporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Export sends the render request and returns the document bytes.
func (e *HTTPExporter) Export(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("renderer marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("renderer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("renderer http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("renderer read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer error (status %d): %s", resp.StatusCode, string(body))
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = req.Format.MimeType()
	}

	return &Result{Data: body, MimeType: mime}, nil
}
