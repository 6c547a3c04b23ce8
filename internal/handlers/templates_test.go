package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contractd/internal/models"
)

func templateRouter(h *Templates) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/templates", h.List)
	r.Get("/api/templates/categories", h.Categories)
	r.Get("/api/templates/popular", h.Popular)
	r.Get("/api/templates/{id}", h.Get)
	r.Post("/api/templates", h.Create)
	r.Put("/api/templates/{id}", h.Update)
	r.Delete("/api/templates/{id}", h.Delete)
	r.Post("/api/templates/{id}/clone", h.Clone)
	return r
}

func TestTemplateHandlersCRUD(t *testing.T) {
	db := testDB(t)
	premium := testUser(t, db, models.RolePremium)
	user := testUser(t, db, models.RoleUser)
	r := templateRouter(NewTemplates(testTemplateService(db)))
	name := "Handler NDA " + uuid.NewString()[:8]

	// Create a public template as premium.
	body := `{"name":"` + name + `","body":"Between [a] and [b]","category":"Legal","is_public":true}`
	req := httptest.NewRequest("POST", "/api/templates", strings.NewReader(body))
	req = req.WithContext(asUser(req.Context(), premium))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", w.Code, w.Body.String())
	}
	var created models.Template
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// A regular user publishing maps to 403.
	req = httptest.NewRequest("POST", "/api/templates", strings.NewReader(
		`{"name":"Nope","body":"b","is_public":true}`))
	req = req.WithContext(asUser(req.Context(), user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("publish as user: got %d, want 403", w.Code)
	}

	// Anonymous Get of a public template works and counts usage.
	req = httptest.NewRequest("GET", "/api/templates/"+created.ID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous get: got %d", w.Code)
	}

	// Clone as another user.
	req = httptest.NewRequest("POST", "/api/templates/"+created.ID.String()+"/clone", nil)
	req = req.WithContext(asUser(req.Context(), user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("clone: got %d, body %s", w.Code, w.Body.String())
	}
	var dup models.Template
	json.Unmarshal(w.Body.Bytes(), &dup)
	if dup.OwnerID != user.ID || dup.IsPublic {
		t.Errorf("clone: %+v", dup)
	}

	// Update as a stranger maps to 403.
	req = httptest.NewRequest("PUT", "/api/templates/"+created.ID.String(), strings.NewReader(`{"name":"Hijack"}`))
	req = req.WithContext(asUser(req.Context(), user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("update as stranger: got %d, want 403", w.Code)
	}

	// Delete own clone.
	req = httptest.NewRequest("DELETE", "/api/templates/"+dup.ID.String(), nil)
	req = req.WithContext(asUser(req.Context(), user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("delete clone: got %d", w.Code)
	}

	// Listings and categories respond for anonymous requests.
	for _, path := range []string{"/api/templates?search=" + name[:7], "/api/templates/categories", "/api/templates/popular"} {
		req = httptest.NewRequest("GET", path, nil)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got %d", path, w.Code)
		}
	}
}

func TestTemplateHandlersValidation(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db, models.RoleUser)
	r := templateRouter(NewTemplates(testTemplateService(db)))

	// Missing body fails field validation.
	req := httptest.NewRequest("POST", "/api/templates", strings.NewReader(`{"name":"X"}`))
	req = req.WithContext(asUser(req.Context(), user))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing body: got %d, want 422", w.Code)
	}

	// Unknown id maps to 404.
	req = httptest.NewRequest("GET", "/api/templates/"+uuid.NewString(), nil)
	req = req.WithContext(asUser(req.Context(), user))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", w.Code)
	}
}
