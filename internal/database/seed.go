package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a pair of public starter templates. No-op when users
// already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "admin@contractd.local", string(hash), "Admin", "admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, t := range starterTemplates {
		var templateID string
		err := db.QueryRow(`
			INSERT INTO templates (owner_id, name, description, body, category, tags, is_public, usage_count, rating)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
			RETURNING id
		`, adminID, t.name, t.description, t.body, t.category, strings.Join(t.tags, ","), t.usage, t.rating).Scan(&templateID)
		if err != nil {
			return fmt.Errorf("seed template %q: %w", t.name, err)
		}
		for i, v := range t.variables {
			_, err := db.Exec(`
				INSERT INTO template_variables (template_id, name, type, label, required, position)
				VALUES ($1, $2, $3, $4, TRUE, $5)
			`, templateID, v.name, v.typ, v.label, i)
			if err != nil {
				return fmt.Errorf("seed template variable %q: %w", v.name, err)
			}
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@contractd.local",
		"password", "admin",
	)

	return nil
}

type seedVariable struct {
	name, typ, label string
}

type seedTemplate struct {
	name, description, body, category string
	tags                              []string
	usage                             int
	rating                            float64
	variables                         []seedVariable
}

var starterTemplates = []seedTemplate{
	{
		name:        "Service Agreement",
		description: "A comprehensive service agreement template for freelancers and service providers.",
		category:    "Service",
		tags:        []string{"service", "freelance", "agreement"},
		usage:       45,
		rating:      4.5,
		body: `SERVICE AGREEMENT

This Service Agreement is entered into between [client_name] ("Client") and [service_provider_name] ("Provider").

1. SERVICES. Provider agrees to perform the following services: [service_description]

2. TERM. This agreement begins on [start_date] and ends on [end_date].

3. COMPENSATION. Client agrees to pay Provider [payment_amount], payable [payment_terms].

Signed,

[client_name]                [service_provider_name]`,
		variables: []seedVariable{
			{"client_name", "text", "Client name"},
			{"service_provider_name", "text", "Service provider name"},
			{"service_description", "textarea", "Description of services"},
			{"start_date", "date", "Start date"},
			{"end_date", "date", "End date"},
			{"payment_amount", "number", "Payment amount"},
			{"payment_terms", "text", "Payment terms"},
		},
	},
	{
		name:        "Non-Disclosure Agreement",
		description: "Confidentiality agreement template for protecting sensitive information.",
		category:    "Legal",
		tags:        []string{"NDA", "confidentiality", "legal"},
		usage:       32,
		rating:      4.3,
		body: `NON-DISCLOSURE AGREEMENT

This agreement is between [disclosing_party] ("Disclosing Party") and [receiving_party] ("Receiving Party").

The Receiving Party agrees to hold in strict confidence the following: [confidential_information]

This obligation remains in effect for [duration] from the effective date of [effective_date].

[disclosing_party]                [receiving_party]`,
		variables: []seedVariable{
			{"disclosing_party", "text", "Disclosing party"},
			{"receiving_party", "text", "Receiving party"},
			{"confidential_information", "textarea", "Confidential information"},
			{"duration", "text", "Duration"},
			{"effective_date", "date", "Effective date"},
		},
	},
}
