// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package contracts implements the contract lifecycle: generation from a
// template, updates with re-rendering, signing, document export, and
// deletion. Every operation checks the authorization gate before touching
// the database.
package contracts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contractd/internal/authz"
	"contractd/internal/export"
	"contractd/internal/models"
	"contractd/internal/render"
	"contractd/internal/storage"
	"contractd/internal/store"
)

// ArtifactStore is the object storage surface the service needs for
// document artifacts. *storage.Client satisfies it.
type ArtifactStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Service coordinates contract operations across the stores, the binder,
// the export adapter, and object storage.
type Service struct {
	contracts *store.ContractStore
	templates *store.TemplateStore
	documents *store.DocumentStore
	policy    *authz.Policy
	exporter  export.Exporter
	artifacts ArtifactStore
}

// NewService creates the contract service. exporter and artifacts may be
// nil when no renderer or object storage is configured; ExportDocument
// then fails with ErrExportFailed.
func NewService(db DBStores, policy *authz.Policy, exporter export.Exporter, artifacts ArtifactStore) *Service {
	return &Service{
		contracts: db.Contracts,
		templates: db.Templates,
		documents: db.Documents,
		policy:    policy,
		exporter:  exporter,
		artifacts: artifacts,
	}
}

// DBStores bundles the stores the service reads and writes.
type DBStores struct {
	Contracts *store.ContractStore
	Templates *store.TemplateStore
	Documents *store.DocumentStore
}

// VariableInput is a (name, value) binding supplied by the client.
// Bindings apply in slice order when rendering.
type VariableInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PartyInput describes a contract participant.
type PartyInput struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
	Country *string `json:"country"`
	TaxID   *string `json:"tax_id"`
}

// CreateInput carries the fields for generating a new contract.
type CreateInput struct {
	TemplateID  uuid.UUID       `json:"template_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ExpiresAt   *time.Time      `json:"expires_at"`
	TotalValue  *float64        `json:"total_value"`
	Currency    string          `json:"currency"`
	Variables   []VariableInput `json:"variables"`
	Parties     []PartyInput    `json:"parties"`
}

// UpdateInput carries a partial field set. Nil pointers leave the field
// unchanged. A non-nil Variables or Parties slice replaces the full set;
// replacing variables re-renders the content from the template body.
type UpdateInput struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *models.ContractStatus `json:"status"`
	ExpiresAt   *time.Time             `json:"expires_at"`
	TotalValue  *float64               `json:"total_value"`
	Currency    *string                `json:"currency"`
	Variables   []VariableInput        `json:"variables"`
	Parties     []PartyInput           `json:"parties"`
}

// ListFilter narrows a contract listing. Listings are always scoped to
// the actor's own contracts.
type ListFilter struct {
	Status     models.ContractStatus
	TemplateID *uuid.UUID
	Search     string
	SortBy     string
	Page       int
	PerPage    int
}

// Create generates a contract from a template. The content is rendered
// from the template body with the supplied bindings, and the contract
// row plus its variables and parties are persisted in one transaction.
func (s *Service) Create(actor *models.User, in CreateInput) (*models.Contract, error) {
	if !s.policy.Can(actor, authz.PermCreateContracts) {
		return nil, models.ErrForbidden
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}

	tmpl, err := s.templates.FindByID(in.TemplateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, in.TemplateID)
	}
	if !s.policy.CanViewTemplate(actor, tmpl) {
		return nil, models.ErrForbidden
	}

	vars, bindings := toVariables(in.Variables)

	c := &models.Contract{
		OwnerID:     actor.ID,
		TemplateID:  tmpl.ID,
		Title:       in.Title,
		Description: in.Description,
		Content:     render.Render(tmpl.Body, bindings),
		Status:      models.ContractStatusDraft,
		GeneratedAt: time.Now(),
		ExpiresAt:   in.ExpiresAt,
		TotalValue:  in.TotalValue,
		Currency:    in.Currency,
	}

	created, err := s.contracts.Create(c, vars, toParties(in.Parties))
	if err != nil {
		return nil, err
	}

	slog.Info("contract created",
		"contract_id", created.ID, "template_id", tmpl.ID, "owner_id", actor.ID)
	return created, nil
}

// Get returns a contract with its variables, parties, and documents.
func (s *Service) Get(actor *models.User, id uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: contract %s", models.ErrNotFound, id)
	}
	if !s.policy.CanViewContract(actor, c) {
		return nil, models.ErrForbidden
	}
	return c, nil
}

// List returns the actor's contracts matching the filter plus the total
// count before pagination.
func (s *Service) List(actor *models.User, f ListFilter) ([]models.Contract, int, error) {
	if !s.policy.Can(actor, authz.PermViewContracts) {
		return nil, 0, models.ErrForbidden
	}
	if f.Status != "" && !models.ValidContractStatus(f.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", models.ErrValidation, f.Status)
	}
	return s.contracts.List(store.ContractFilter{
		OwnerID:    actor.ID,
		Status:     f.Status,
		TemplateID: f.TemplateID,
		Search:     f.Search,
		SortBy:     f.SortBy,
		Page:       f.Page,
		PerPage:    f.PerPage,
	})
}

// Update applies a partial field set. Replacing the variable set
// re-renders the content from the current template body in the same
// transaction as the field changes. Concurrent updates are
// last-writer-wins; no row locking.
func (s *Service) Update(actor *models.User, id uuid.UUID, in UpdateInput) (*models.Contract, error) {
	c, err := s.contracts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: contract %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyContract(actor, c) {
		return nil, models.ErrForbidden
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", models.ErrValidation)
		}
		c.Title = *in.Title
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Status != nil {
		if !models.ValidContractStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, *in.Status)
		}
		c.Status = *in.Status
	}
	if in.ExpiresAt != nil {
		c.ExpiresAt = in.ExpiresAt
	}
	if in.TotalValue != nil {
		c.TotalValue = in.TotalValue
	}
	if in.Currency != nil {
		c.Currency = *in.Currency
	}

	var vars []models.ContractVariable
	replaceVars := in.Variables != nil
	if replaceVars {
		var bindings []render.Binding
		vars, bindings = toVariables(in.Variables)

		tmpl, err := s.templates.FindByID(c.TemplateID)
		if err != nil {
			return nil, err
		}
		if tmpl == nil {
			return nil, fmt.Errorf("%w: template %s", models.ErrNotFound, c.TemplateID)
		}
		c.Content = render.Render(tmpl.Body, bindings)
	}

	var parties []models.ContractParty
	replaceParties := in.Parties != nil
	if replaceParties {
		parties = toParties(in.Parties)
	}

	if err := s.contracts.Update(c, vars, replaceVars, parties, replaceParties); err != nil {
		return nil, err
	}
	return s.contracts.FindByID(id)
}

// Delete removes a contract. Document artifacts are deleted from object
// storage first; the row delete cascades to variables, parties, and
// document records. An artifact delete failure aborts before the row is
// touched, so retrying is safe.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	c, err := s.contracts.FindByID(id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: contract %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyContract(actor, c) {
		return models.ErrForbidden
	}

	if s.artifacts != nil {
		for _, d := range c.Documents {
			if err := s.artifacts.Delete(ctx, d.S3Key); err != nil {
				return fmt.Errorf("delete artifact for document %s: %w", d.ID, err)
			}
		}
	}

	if err := s.contracts.Delete(id); err != nil {
		return err
	}

	slog.Info("contract deleted", "contract_id", id, "actor_id", actor.ID)
	return nil
}

// Sign marks the contract as signed by the actor and activates it.
// A signed contract cannot be signed again.
func (s *Service) Sign(actor *models.User, id uuid.UUID) (*models.Contract, error) {
	c, err := s.contracts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: contract %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyContract(actor, c) {
		return nil, models.ErrForbidden
	}
	if c.IsSigned {
		return nil, models.ErrAlreadySigned
	}

	now := time.Now()
	if err := s.contracts.Sign(id, actor.DisplayName, now); err != nil {
		return nil, err
	}

	slog.Info("contract signed",
		"contract_id", id, "signed_by", actor.DisplayName, "actor_id", actor.ID, "signed_at", now)
	return s.contracts.FindByID(id)
}

// ExportDocument renders the contract into a document artifact, uploads
// it to object storage, records it, and returns the record plus a
// presigned download URL. Failed exports are not retried.
func (s *Service) ExportDocument(ctx context.Context, actor *models.User, id uuid.UUID, format export.Format) (*models.Document, string, error) {
	if !export.ValidFormat(format) {
		return nil, "", fmt.Errorf("%w: unsupported format %q", models.ErrValidation, format)
	}

	c, err := s.contracts.FindByID(id)
	if err != nil {
		return nil, "", err
	}
	if c == nil {
		return nil, "", fmt.Errorf("%w: contract %s", models.ErrNotFound, id)
	}
	if !s.policy.CanModifyContract(actor, c) {
		return nil, "", models.ErrForbidden
	}

	if s.exporter == nil || s.artifacts == nil {
		return nil, "", fmt.Errorf("%w: renderer or storage not configured", models.ErrExportFailed)
	}

	res, err := s.exporter.Export(ctx, export.Request{
		Title:   c.Title,
		Content: c.Content,
		Format:  format,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrExportFailed, err)
	}

	docID := uuid.New()
	key := storage.DocumentKey(c.ID, docID, format.Ext())
	if err := s.artifacts.Upload(ctx, key, res.MimeType, bytes.NewReader(res.Data), int64(len(res.Data))); err != nil {
		return nil, "", fmt.Errorf("%w: upload: %v", models.ErrExportFailed, err)
	}

	doc, err := s.documents.Create(&models.Document{
		ContractID: c.ID,
		Name:       c.Title,
		DocType:    string(format),
		S3Key:      key,
		FileName:   c.Title + format.Ext(),
		MimeType:   res.MimeType,
		SizeBytes:  int64(len(res.Data)),
		Version:    "1.0",
	})
	if err != nil {
		return nil, "", err
	}

	url, err := s.artifacts.PresignedURL(ctx, key, storage.DefaultDownloadExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("%w: presign: %v", models.ErrExportFailed, err)
	}

	slog.Info("contract exported",
		"contract_id", c.ID, "document_id", doc.ID, "format", format, "actor_id", actor.ID)
	return doc, url, nil
}

// Statistics returns the actor's per-owner contract counts. The expired
// count is derived from expires_at; stored statuses are not modified.
func (s *Service) Statistics(actor *models.User) (*store.Statistics, error) {
	if !s.policy.Can(actor, authz.PermViewStatistics) {
		return nil, models.ErrForbidden
	}
	return s.contracts.StatisticsFor(actor.ID)
}

func toVariables(in []VariableInput) ([]models.ContractVariable, []render.Binding) {
	vars := make([]models.ContractVariable, 0, len(in))
	bindings := make([]render.Binding, 0, len(in))
	for i, v := range in {
		vars = append(vars, models.ContractVariable{
			Name:     v.Name,
			Type:     v.Type,
			Value:    v.Value,
			Position: i,
		})
		bindings = append(bindings, render.Binding{Name: v.Name, Value: v.Value})
	}
	return vars, bindings
}

func toParties(in []PartyInput) []models.ContractParty {
	parties := make([]models.ContractParty, 0, len(in))
	for _, p := range in {
		parties = append(parties, models.ContractParty{
			Name:    p.Name,
			Type:    p.Type,
			Email:   p.Email,
			Phone:   p.Phone,
			Address: p.Address,
			City:    p.City,
			State:   p.State,
			ZipCode: p.ZipCode,
			Country: p.Country,
			TaxID:   p.TaxID,
		})
	}
	return parties
}
