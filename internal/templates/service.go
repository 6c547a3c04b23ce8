// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templates implements the template catalog: CRUD with
// visibility rules, cloning, and the cached category/popular listings.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"contractd/internal/authz"
	"contractd/internal/cache"
	"contractd/internal/models"
	"contractd/internal/store"
)

// Service coordinates template operations. listings may be nil when no
// Redis is configured; cached reads then fall through to the database.
type Service struct {
	templates *store.TemplateStore
	policy    *authz.Policy
	listings  *cache.ListingCache
}

// NewService creates the template service.
func NewService(templates *store.TemplateStore, policy *authz.Policy, listings *cache.ListingCache) *Service {
	return &Service{templates: templates, policy: policy, listings: listings}
}

// VariableInput declares a template input field.
type VariableInput struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Required     bool     `json:"required"`
	DefaultValue *string  `json:"default_value"`
	Options      []string `json:"options"`
}

// CreateInput carries the fields for a new template.
type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Body        string          `json:"body"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	IsPublic    bool            `json:"is_public"`
	Variables   []VariableInput `json:"variables"`
}

// UpdateInput carries a partial field set. Nil pointers leave the field
// unchanged; a non-nil Variables slice replaces the declared set.
type UpdateInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Body        *string         `json:"body"`
	Category    *string         `json:"category"`
	Tags        []string        `json:"tags"`
	IsPublic    *bool           `json:"is_public"`
	IsActive    *bool           `json:"is_active"`
	Variables   []VariableInput `json:"variables"`
}

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Category string
	Search   string
	SortBy   string
	Page     int
	PerPage  int
}

// List returns templates visible to the actor: public ones plus the
// actor's own private ones. actor may be nil for anonymous browsing.
func (s *Service) List(actor *models.User, f ListFilter) ([]models.Template, int, error) {
	var viewerID *uuid.UUID
	if actor != nil {
		viewerID = &actor.ID
	}
	return s.templates.List(store.TemplateFilter{
		Category: f.Category,
		Search:   f.Search,
		ViewerID: viewerID,
		SortBy:   f.SortBy,
		Page:     f.Page,
		PerPage:  f.PerPage,
	})
}

// Get returns a template with its declared variables. Viewing someone
// else's template counts as usage.
func (s *Service) Get(actor *models.User, id uuid.UUID) (*models.Template, error) {
	t, err := s.templates.FindByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, id)
	}
	if !s.policy.CanViewTemplate(actor, t) {
		return nil, models.ErrForbidden
	}

	if actor == nil || actor.ID != t.OwnerID {
		if err := s.templates.IncrementUsage(id); err != nil {
			slog.Warn("template usage increment failed", "template_id", id, "error", err)
		} else {
			t.UsageCount++
		}
	}
	return t, nil
}

// Create inserts a new template owned by the actor. Publishing a public
// template requires the publish permission (premium or admin).
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Template, error) {
	if !s.policy.Can(actor, authz.PermCreateTemplates) {
		return nil, models.ErrForbidden
	}
	if in.IsPublic && !s.policy.CanPublishTemplate(actor) {
		return nil, models.ErrForbidden
	}
	if err := validate(in.Name, in.Body); err != nil {
		return nil, err
	}

	t := &models.Template{
		OwnerID:     actor.ID,
		Name:        in.Name,
		Description: in.Description,
		Body:        in.Body,
		Category:    in.Category,
		Tags:        in.Tags,
		IsPublic:    in.IsPublic,
		IsActive:    true,
	}

	created, err := s.templates.Create(t, toVariables(in.Variables))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	slog.Info("template created", "template_id", created.ID, "owner_id", actor.ID, "public", created.IsPublic)
	return created, nil
}

// Update applies a partial field set. Replacing the declared variables
// bumps the template version.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UpdateInput) (*models.Template, error) {
	t, err := s.templates.FindByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyTemplate(actor, t) {
		return nil, models.ErrForbidden
	}
	if in.IsPublic != nil && *in.IsPublic && !t.IsPublic && !s.policy.CanPublishTemplate(actor) {
		return nil, models.ErrForbidden
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", models.ErrValidation)
		}
		t.Name = *in.Name
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Body != nil {
		if strings.TrimSpace(*in.Body) == "" {
			return nil, fmt.Errorf("%w: body cannot be empty", models.ErrValidation)
		}
		t.Body = *in.Body
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Tags != nil {
		t.Tags = in.Tags
	}
	if in.IsPublic != nil {
		t.IsPublic = *in.IsPublic
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}

	replaceVars := in.Variables != nil
	if err := s.templates.Update(t, toVariables(in.Variables), replaceVars); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.templates.FindByID(id)
}

// Delete removes a template. Templates still referenced by contracts
// cannot be deleted; deactivate them instead.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	t, err := s.templates.FindByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: template %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyTemplate(actor, t) {
		return models.ErrForbidden
	}

	count, err := s.templates.ContractCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d contracts still reference this template", models.ErrValidation, count)
	}

	if err := s.templates.Delete(id); err != nil {
		return err
	}

	s.invalidate(ctx)
	slog.Info("template deleted", "template_id", id, "actor_id", actor.ID)
	return nil
}

// Clone deep-copies a visible template into the actor's own catalog.
// The copy is private with usage and rating reset.
func (s *Service) Clone(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Template, error) {
	if !s.policy.Can(actor, authz.PermCloneTemplates) {
		return nil, models.ErrForbidden
	}

	t, err := s.templates.FindByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, id)
	}
	if !s.policy.CanViewTemplate(actor, t) {
		return nil, models.ErrForbidden
	}

	dup, err := s.templates.Clone(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if dup == nil {
		// Source deleted between the visibility check and the copy.
		return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, id)
	}

	s.invalidate(ctx)
	slog.Info("template cloned", "source_id", id, "clone_id", dup.ID, "actor_id", actor.ID)
	return dup, nil
}

// Categories returns the distinct categories of active public templates,
// read through the listing cache.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	key := cache.CategoriesKey()
	if s.listings != nil {
		if payload, ok := s.listings.Get(ctx, key); ok {
			var cats []string
			if err := json.Unmarshal(payload, &cats); err == nil {
				return cats, nil
			}
		}
	}

	cats, err := s.templates.Categories()
	if err != nil {
		return nil, err
	}

	if s.listings != nil {
		if payload, err := json.Marshal(cats); err == nil {
			s.listings.Set(ctx, key, payload)
		}
	}
	return cats, nil
}

// Popular returns the most-used public templates, read through the
// listing cache.
func (s *Service) Popular(ctx context.Context, limit int) ([]models.Template, error) {
	return s.cachedListing(ctx, cache.PopularKey(limit), "popular", limit)
}

// HighlyRated returns the best-rated public templates, read through the
// listing cache.
func (s *Service) HighlyRated(ctx context.Context, limit int) ([]models.Template, error) {
	return s.cachedListing(ctx, cache.HighlyRatedKey(limit), "rating", limit)
}

func (s *Service) cachedListing(ctx context.Context, key, sortBy string, limit int) ([]models.Template, error) {
	if limit < 1 || limit > 50 {
		limit = 6
	}

	if s.listings != nil {
		if payload, ok := s.listings.Get(ctx, key); ok {
			var items []models.Template
			if err := json.Unmarshal(payload, &items); err == nil {
				return items, nil
			}
		}
	}

	items, _, err := s.templates.List(store.TemplateFilter{
		SortBy:  sortBy,
		Page:    1,
		PerPage: limit,
	})
	if err != nil {
		return nil, err
	}

	if s.listings != nil {
		if payload, err := json.Marshal(items); err == nil {
			s.listings.Set(ctx, key, payload)
		}
	}
	return items, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.listings != nil {
		s.listings.InvalidateAll(ctx)
	}
}

func validate(name, body string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: body is required", models.ErrValidation)
	}
	return nil
}

func toVariables(in []VariableInput) []models.TemplateVariable {
	vars := make([]models.TemplateVariable, 0, len(in))
	for i, v := range in {
		vars = append(vars, models.TemplateVariable{
			Name:         v.Name,
			Type:         v.Type,
			Label:        v.Label,
			Required:     v.Required,
			DefaultValue: v.DefaultValue,
			Options:      v.Options,
			Position:     i,
		})
	}
	return vars
}
