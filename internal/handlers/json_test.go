package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contractd/internal/models"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: contract abc", models.ErrNotFound), http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrAlreadySigned, http.StatusBadRequest},
		{fmt.Errorf("%w: title is required", models.ErrValidation), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: renderer down", models.ErrExportFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: commit: broken pipe", models.ErrTransaction), http.StatusInternalServerError},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		writeServiceError(w, c.err)
		if w.Code != c.want {
			t.Errorf("%v: got %d, want %d", c.err, w.Code, c.want)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type: got %q", ct)
		}
	}

	// Internal errors must not leak details.
	w := httptest.NewRecorder()
	writeServiceError(w, errors.New("password=hunter2"))
	if strings.Contains(w.Body.String(), "hunter2") {
		t.Error("internal error leaked into response body")
	}

	// Neither must transaction failures.
	w = httptest.NewRecorder()
	writeServiceError(w, fmt.Errorf("%w: %v", models.ErrTransaction, errors.New("dsn=secret")))
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("transaction error leaked into response body")
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"x","bogus":true}`))
	var dst struct {
		Title string `json:"title"`
	}
	if err := readJSON(req, &dst); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestValidateTitle(t *testing.T) {
	if msg := validateTitle("  "); msg == "" {
		t.Error("expected error for blank title")
	}
	if msg := validateTitle(strings.Repeat("x", maxTitleLen+1)); msg == "" {
		t.Error("expected error for overlong title")
	}
	if msg := validateTitle("Service Agreement"); msg != "" {
		t.Errorf("unexpected error: %q", msg)
	}
}

func TestValidateTemplateFields(t *testing.T) {
	if msg := validateTemplateFields("", "body"); msg == "" {
		t.Error("expected error for empty name")
	}
	if msg := validateTemplateFields("name", " "); msg == "" {
		t.Error("expected error for empty body")
	}
	if msg := validateTemplateFields("name", strings.Repeat("b", maxBodyLen+1)); msg == "" {
		t.Error("expected error for overlong body")
	}
	if msg := validateTemplateFields("NDA", "Hello [name]"); msg != "" {
		t.Errorf("unexpected error: %q", msg)
	}
}

func TestValidatePassword(t *testing.T) {
	if msg := validatePassword("short"); msg == "" {
		t.Error("expected error for short password")
	}
	if msg := validatePassword(strings.Repeat("p", maxPasswordLen+1)); msg == "" {
		t.Error("expected error for overlong password")
	}
	if msg := validatePassword("longenough123"); msg != "" {
		t.Errorf("unexpected error: %q", msg)
	}
}
