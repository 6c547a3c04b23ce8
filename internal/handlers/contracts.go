package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"contractd/internal/contracts"
	"contractd/internal/export"
	"contractd/internal/middleware"
	"contractd/internal/models"
)

// Contracts groups the contract lifecycle HTTP handlers.
type Contracts struct {
	svc *contracts.Service
}

// NewContracts creates a new Contracts handler group.
func NewContracts(svc *contracts.Service) *Contracts {
	return &Contracts{svc: svc}
}

// List returns the requester's contracts.
func (h *Contracts) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	page, perPage := pageParams(r)
	q := r.URL.Query()

	f := contracts.ListFilter{
		Status:  models.ContractStatus(q.Get("status")),
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := q.Get("template_id"); raw != "" {
		if tid, err := uuid.Parse(raw); err == nil {
			f.TemplateID = &tid
		}
	}

	items, total, err := h.svc.List(actor, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, PerPage: perPage})
}

// Get returns one contract with its variables, parties, and documents.
func (h *Contracts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	c, err := h.svc.Get(middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create generates a contract from a template.
func (h *Contracts) Create(w http.ResponseWriter, r *http.Request) {
	var in contracts.CreateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateTitle(in.Title); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c, err := h.svc.Create(middleware.UserFromCtx(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update applies a partial field set to a contract.
func (h *Contracts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var in contracts.UpdateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.Update(middleware.UserFromCtx(r.Context()), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a contract and its stored document artifacts.
func (h *Contracts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "contract deleted"})
}

// Sign marks a contract as signed by the requester.
func (h *Contracts) Sign(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	c, err := h.svc.Sign(middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type exportRequest struct {
	Format export.Format `json:"format"`
}

// Export renders the contract into a document artifact and returns the
// record with a presigned download URL.
func (h *Contracts) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	req := exportRequest{Format: export.FormatPDF}
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	doc, url, err := h.svc.ExportDocument(r.Context(), middleware.UserFromCtx(r.Context()), id, req.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document":     doc,
		"download_url": url,
	})
}

// Statistics returns the requester's contract counts.
func (h *Contracts) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(middleware.UserFromCtx(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
