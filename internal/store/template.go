// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"contractd/internal/models"
)

// TemplateStore handles all contract template database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// TemplateFilter narrows and orders a template listing.
type TemplateFilter struct {
	Category string     // exact match on category when non-empty
	Search   string     // substring match on name, description, or tags
	ViewerID *uuid.UUID // include this owner's private templates alongside public ones
	SortBy   string     // "created_at" (default), "popular", "rating", "name"
	Page     int        // 1-based
	PerPage  int
}

const templateColumns = `id, owner_id, name, description, body, category, tags,
	is_public, is_active, version, usage_count, rating, created_at, updated_at`

// List returns active templates matching the filter plus the total count
// before pagination. Anonymous viewers (nil ViewerID) see only public
// templates.
func (s *TemplateStore) List(f TemplateFilter) ([]models.Template, int, error) {
	where := []string{"is_active = TRUE"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ViewerID != nil {
		where = append(where, fmt.Sprintf("(is_public = TRUE OR owner_id = %s)", arg(*f.ViewerID)))
	} else {
		where = append(where, "is_public = TRUE")
	}
	if f.Category != "" {
		where = append(where, fmt.Sprintf("category = %s", arg(f.Category)))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR tags ILIKE %s)", p, p, p))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRow("SELECT COUNT(*) FROM templates WHERE "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	order := "created_at DESC"
	switch f.SortBy {
	case "popular":
		order = "usage_count DESC"
	case "rating":
		order = "rating DESC NULLS LAST"
	case "name":
		order = "name ASC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}

	query := fmt.Sprintf(
		"SELECT %s FROM templates WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		templateColumns, whereClause, order, arg(perPage), arg((page-1)*perPage),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, total, rows.Err()
}

// FindByID retrieves a template with its declared variables. Returns nil
// if not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRow("SELECT "+templateColumns+" FROM templates WHERE id = $1", id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}

	vars, err := s.variablesFor(id)
	if err != nil {
		return nil, err
	}
	t.Variables = vars
	return t, nil
}

// Create inserts a template and its declared variables in one transaction.
func (s *TemplateStore) Create(t *models.Template, vars []models.TemplateVariable) (*models.Template, error) {
	result := &models.Template{}
	err := inTx(s.db, func(tx *sql.Tx) error {
		var tags string
		err := tx.QueryRow(`
			INSERT INTO templates (owner_id, name, description, body, category, tags, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+templateColumns,
			t.OwnerID, t.Name, t.Description, t.Body, t.Category,
			strings.Join(t.Tags, ","), t.IsPublic,
		).Scan(
			&result.ID, &result.OwnerID, &result.Name, &result.Description, &result.Body,
			&result.Category, &tags, &result.IsPublic, &result.IsActive, &result.Version,
			&result.UsageCount, &result.Rating, &result.CreatedAt, &result.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		result.Tags = splitTags(tags)

		return insertTemplateVariables(tx, result.ID, vars)
	})
	if err != nil {
		return nil, err
	}

	result.Variables, err = s.variablesFor(result.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update modifies a template and bumps its version. When replaceVars is
// true the declared variables are deleted and recreated from vars.
func (s *TemplateStore) Update(t *models.Template, vars []models.TemplateVariable, replaceVars bool) error {
	return inTx(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE templates SET
				name = $1, description = $2, body = $3, category = $4, tags = $5,
				is_public = $6, is_active = $7, version = version + 1, updated_at = NOW()
			WHERE id = $8
		`, t.Name, t.Description, t.Body, t.Category, strings.Join(t.Tags, ","),
			t.IsPublic, t.IsActive, t.ID,
		)
		if err != nil {
			return fmt.Errorf("update template: %w", err)
		}

		if replaceVars {
			if _, err := tx.Exec(`DELETE FROM template_variables WHERE template_id = $1`, t.ID); err != nil {
				return fmt.Errorf("delete template variables: %w", err)
			}
			if err := insertTemplateVariables(tx, t.ID, vars); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a template. Declared variables cascade at the schema level.
func (s *TemplateStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Clone deep-copies a template for a new owner: fresh identity for the
// template and every declared variable row, name suffixed, visibility
// private, usage and rating reset.
func (s *TemplateStore) Clone(id, newOwner uuid.UUID) (*models.Template, error) {
	src, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}

	dup := &models.Template{
		OwnerID:     newOwner,
		Name:        src.Name + " (Copy)",
		Description: src.Description,
		Body:        src.Body,
		Category:    src.Category,
		Tags:        src.Tags,
		IsPublic:    false,
	}
	vars := make([]models.TemplateVariable, len(src.Variables))
	for i, v := range src.Variables {
		vars[i] = models.TemplateVariable{
			Name: v.Name, Type: v.Type, Label: v.Label,
			Required: v.Required, DefaultValue: v.DefaultValue,
			Options: v.Options, Position: v.Position,
		}
	}
	return s.Create(dup, vars)
}

// IncrementUsage bumps a template's usage counter.
func (s *TemplateStore) IncrementUsage(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	return nil
}

// Categories returns the distinct non-empty categories of active templates.
func (s *TemplateStore) Categories() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT category FROM templates
		WHERE is_active = TRUE AND category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("template categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ContractCount returns how many contracts reference the template.
// Deletion is refused while this is non-zero.
func (s *TemplateStore) ContractCount(id uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM contracts WHERE template_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("template contract count: %w", err)
	}
	return n, nil
}

// variablesFor loads a template's declared variables in position order.
func (s *TemplateStore) variablesFor(templateID uuid.UUID) ([]models.TemplateVariable, error) {
	rows, err := s.db.Query(`
		SELECT id, template_id, name, type, label, required, default_value, options, position
		FROM template_variables WHERE template_id = $1 ORDER BY position
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template variables: %w", err)
	}
	defer rows.Close()

	var vars []models.TemplateVariable
	for rows.Next() {
		var v models.TemplateVariable
		var options sql.NullString
		if err := rows.Scan(
			&v.ID, &v.TemplateID, &v.Name, &v.Type, &v.Label,
			&v.Required, &v.DefaultValue, &options, &v.Position,
		); err != nil {
			return nil, fmt.Errorf("scan template variable: %w", err)
		}
		if options.Valid {
			v.Options = splitTags(options.String)
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

func insertTemplateVariables(tx *sql.Tx, templateID uuid.UUID, vars []models.TemplateVariable) error {
	for i, v := range vars {
		var options any
		if v.Options != nil {
			options = strings.Join(v.Options, ",")
		}
		_, err := tx.Exec(`
			INSERT INTO template_variables (template_id, name, type, label, required, default_value, options, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, templateID, v.Name, v.Type, v.Label, v.Required, v.DefaultValue, options, i)
		if err != nil {
			return fmt.Errorf("insert template variable %q: %w", v.Name, err)
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*models.Template, error) {
	t := &models.Template{}
	var tags string
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.Body,
		&t.Category, &tags, &t.IsPublic, &t.IsActive, &t.Version,
		&t.UsageCount, &t.Rating, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Tags = splitTags(tags)
	return t, nil
}

// splitTags converts the comma-separated storage form to a slice,
// dropping empty entries.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
