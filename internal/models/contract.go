// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusExpired   ContractStatus = "expired"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// ValidContractStatus reports whether s is a member of the status enum.
func ValidContractStatus(s ContractStatus) bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusExpired, ContractStatusCancelled:
		return true
	}
	return false
}

// Contract represents a generated contract instance. Content is derived
// from the template body and the contract's variable values, and is
// recomputed whenever the variables change.
type Contract struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	TemplateID  uuid.UUID          `json:"template_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Content     string             `json:"content"`
	Status      ContractStatus     `json:"status"`
	GeneratedAt time.Time          `json:"generated_at"`
	ExpiresAt   *time.Time         `json:"expires_at,omitempty"`
	TotalValue  *float64           `json:"total_value,omitempty"`
	Currency    string             `json:"currency"`
	IsSigned    bool               `json:"is_signed"`
	SignedAt    *time.Time         `json:"signed_at,omitempty"`
	SignedBy    *string            `json:"signed_by,omitempty"`
	Variables   []ContractVariable `json:"variables,omitempty"`
	Parties     []ContractParty    `json:"parties,omitempty"`
	Documents   []Document         `json:"documents,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ContractVariable is a concrete (name, value) binding attached to a
// contract. Bindings are applied in position order when rendering.
type ContractVariable struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Value      string    `json:"value"`
	Position   int       `json:"position"`
}

// ContractParty is a participant attached to a contract. Parties have no
// identity beyond the contract relationship and are deleted with it.
type ContractParty struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // "individual" or "company"
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	City       *string   `json:"city,omitempty"`
	State      *string   `json:"state,omitempty"`
	ZipCode    *string   `json:"zip_code,omitempty"`
	Country    *string   `json:"country,omitempty"`
	TaxID      *string   `json:"tax_id,omitempty"`
}
