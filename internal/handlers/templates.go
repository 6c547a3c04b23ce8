package handlers

import (
	"net/http"
	"strconv"

	"contractd/internal/middleware"
	"contractd/internal/templates"
)

// Templates groups the template catalog HTTP handlers.
type Templates struct {
	svc *templates.Service
}

// NewTemplates creates a new Templates handler group.
func NewTemplates(svc *templates.Service) *Templates {
	return &Templates{svc: svc}
}

// List returns templates visible to the requester. Anonymous requests
// see only public templates.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	page, perPage := pageParams(r)
	q := r.URL.Query()

	items, total, err := h.svc.List(actor, templates.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: total, Page: page, PerPage: perPage})
}

// Get returns one template with its declared variables.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	t, err := h.svc.Get(middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create adds a template to the requester's catalog.
func (h *Templates) Create(w http.ResponseWriter, r *http.Request) {
	var in templates.CreateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateTemplateFields(in.Name, in.Body); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	t, err := h.svc.Create(r.Context(), middleware.UserFromCtx(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update applies a partial field set to a template.
func (h *Templates) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var in templates.UpdateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.svc.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete removes a template that no contract references.
func (h *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
}

// Clone copies a visible template into the requester's catalog.
func (h *Templates) Clone(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	dup, err := h.svc.Clone(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

// Categories returns the distinct categories of public templates.
func (h *Templates) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Popular returns the most-used public templates.
func (h *Templates) Popular(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Popular(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HighlyRated returns the best-rated public templates.
func (h *Templates) HighlyRated(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.HighlyRated(r.Context(), limitParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
