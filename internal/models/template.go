// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Template represents a reusable contract template. The body contains
// placeholder tokens of the form [name] that are substituted with
// per-contract variable values when a contract is generated.
type Template struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Body        string             `json:"body"`
	Category    string             `json:"category"`
	Tags        []string           `json:"tags"`
	IsPublic    bool               `json:"is_public"`
	IsActive    bool               `json:"is_active"`
	Version     int                `json:"version"`
	UsageCount  int                `json:"usage_count"`
	Rating      *float64           `json:"rating,omitempty"`
	Variables   []TemplateVariable `json:"variables,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TemplateVariable declares an input the template expects. The declared
// schema drives form rendering on the client; the binder itself does not
// enforce it.
type TemplateVariable struct {
	ID           uuid.UUID `json:"id"`
	TemplateID   uuid.UUID `json:"template_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"` // "text", "number", "date", "select"
	Label        string    `json:"label"`
	Required     bool      `json:"required"`
	DefaultValue *string   `json:"default_value,omitempty"`
	Options      []string  `json:"options,omitempty"` // For "select" type
	Position     int       `json:"position"`
}
