// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contractd/internal/models"
)

// ContractStore handles all contract database operations. Writes that
// span the contract row and its child variable/party rows run inside a
// single transaction: a failure anywhere rolls back everything.
type ContractStore struct {
	db *sql.DB
}

// NewContractStore creates a new ContractStore with the given database connection.
func NewContractStore(db *sql.DB) *ContractStore {
	return &ContractStore{db: db}
}

// ContractFilter narrows and orders a contract listing.
type ContractFilter struct {
	OwnerID    uuid.UUID // required: contracts are always listed per owner
	Status     models.ContractStatus
	TemplateID *uuid.UUID
	Search     string // substring match on title or description
	SortBy     string // "created_at" (default), "title", "expires_at"
	Page       int
	PerPage    int
}

const contractColumns = `id, owner_id, template_id, title, description, content,
	status, generated_at, expires_at, total_value, currency,
	is_signed, signed_at, signed_by, created_at, updated_at`

// List returns the owner's contracts matching the filter plus the total
// count before pagination.
func (s *ContractStore) List(f ContractFilter) ([]models.Contract, int, error) {
	where := []string{}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where = append(where, fmt.Sprintf("owner_id = %s", arg(f.OwnerID)))
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = %s", arg(f.Status)))
	}
	if f.TemplateID != nil {
		where = append(where, fmt.Sprintf("template_id = %s", arg(*f.TemplateID)))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM contracts WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	order := "created_at DESC"
	switch f.SortBy {
	case "title":
		order = "title ASC"
	case "expires_at":
		order = "expires_at ASC NULLS LAST"
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
		"SELECT %s FROM contracts WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		contractColumns, whereClause, order, arg(perPage), arg((page-1)*perPage),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *c)
	}
	return contracts, total, rows.Err()
}

// FindByID retrieves a contract with its variables, parties, and
// documents loaded. Returns nil if not found.
func (s *ContractStore) FindByID(id uuid.UUID) (*models.Contract, error) {
	row := s.db.QueryRow("SELECT "+contractColumns+" FROM contracts WHERE id = $1", id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contract by id: %w", err)
	}

	if c.Variables, err = s.variablesFor(id); err != nil {
		return nil, err
	}
	if c.Parties, err = s.partiesFor(id); err != nil {
		return nil, err
	}
	if c.Documents, err = s.documentsFor(id); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts the contract row and all child variable and party rows
// in one transaction. Content must already be rendered by the caller;
// a failure on any child insert rolls the whole creation back.
func (s *ContractStore) Create(c *models.Contract, vars []models.ContractVariable, parties []models.ContractParty) (*models.Contract, error) {
	result := &models.Contract{}
	err := inTx(s.db, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO contracts (owner_id, template_id, title, description, content,
			                       status, expires_at, total_value, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+contractColumns,
			c.OwnerID, c.TemplateID, c.Title, c.Description, c.Content,
			models.ContractStatusDraft, c.ExpiresAt, c.TotalValue, currencyOrDefault(c.Currency),
		).Scan(scanContractDest(result)...)
		if err != nil {
			return fmt.Errorf("create contract: %w", err)
		}

		if err := insertContractVariables(tx, result.ID, vars); err != nil {
			return err
		}
		return insertContractParties(tx, result.ID, parties)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(result.ID)
}

// Update applies field changes to a contract. When replaceVars is true
// the variable rows are deleted and recreated from vars in the same
// transaction; likewise for parties. Content is written as supplied.
func (s *ContractStore) Update(c *models.Contract, vars []models.ContractVariable, replaceVars bool, parties []models.ContractParty, replaceParties bool) error {
	return inTx(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE contracts SET
				title = $1, description = $2, content = $3, status = $4,
				expires_at = $5, total_value = $6, currency = $7, updated_at = NOW()
			WHERE id = $8
		`, c.Title, c.Description, c.Content, c.Status,
			c.ExpiresAt, c.TotalValue, currencyOrDefault(c.Currency), c.ID,
		)
		if err != nil {
			return fmt.Errorf("update contract: %w", err)
		}

		if replaceVars {
			if _, err := tx.Exec(`DELETE FROM contract_variables WHERE contract_id = $1`, c.ID); err != nil {
				return fmt.Errorf("delete contract variables: %w", err)
			}
			if err := insertContractVariables(tx, c.ID, vars); err != nil {
				return err
			}
		}
		if replaceParties {
			if _, err := tx.Exec(`DELETE FROM contract_parties WHERE contract_id = $1`, c.ID); err != nil {
				return fmt.Errorf("delete contract parties: %w", err)
			}
			if err := insertContractParties(tx, c.ID, parties); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a contract. Child variables, parties, and document rows
// cascade at the schema level; export artifacts in object storage must
// be removed by the caller first.
func (s *ContractStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	return nil
}

// Sign marks a contract as signed and moves it to active status.
func (s *ContractStore) Sign(id uuid.UUID, signedBy string, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE contracts SET
			is_signed = TRUE, signed_at = $1, signed_by = $2,
			status = $3, updated_at = NOW()
		WHERE id = $4
	`, at, signedBy, models.ContractStatusActive, id)
	if err != nil {
		return fmt.Errorf("sign contract: %w", err)
	}
	return nil
}

// Statistics summarizes an owner's contracts for the dashboard.
type Statistics struct {
	Total      int     `json:"total_contracts"`
	Active     int     `json:"active_contracts"`
	Signed     int     `json:"signed_contracts"`
	Expired    int     `json:"expired_contracts"`
	Draft      int     `json:"draft_contracts"`
	TotalValue float64 `json:"total_value"`
}

// StatisticsFor computes per-owner contract counts. "Expired" is the
// derived expires_at < now() predicate, not the stored status: a
// contract past its deadline counts here even while its status field
// still reads active.
func (s *ContractStore) StatisticsFor(ownerID uuid.UUID) (*Statistics, error) {
	stats := &Statistics{}
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE is_signed),
			COUNT(*) FILTER (WHERE expires_at IS NOT NULL AND expires_at < NOW()),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COALESCE(SUM(total_value), 0)
		FROM contracts WHERE owner_id = $1
	`, ownerID).Scan(
		&stats.Total, &stats.Active, &stats.Signed,
		&stats.Expired, &stats.Draft, &stats.TotalValue,
	)
	if err != nil {
		return nil, fmt.Errorf("contract statistics: %w", err)
	}
	return stats, nil
}

func (s *ContractStore) variablesFor(contractID uuid.UUID) ([]models.ContractVariable, error) {
	rows, err := s.db.Query(`
		SELECT id, contract_id, name, type, value, position
		FROM contract_variables WHERE contract_id = $1 ORDER BY position
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list contract variables: %w", err)
	}
	defer rows.Close()

	var vars []models.ContractVariable
	for rows.Next() {
		var v models.ContractVariable
		if err := rows.Scan(&v.ID, &v.ContractID, &v.Name, &v.Type, &v.Value, &v.Position); err != nil {
			return nil, fmt.Errorf("scan contract variable: %w", err)
		}
		vars = append(vars, v)
	}
	return vars, rows.Err()
}

func (s *ContractStore) partiesFor(contractID uuid.UUID) ([]models.ContractParty, error) {
	rows, err := s.db.Query(`
		SELECT id, contract_id, name, type, email, phone, address, city, state, zip_code, country, tax_id
		FROM contract_parties WHERE contract_id = $1 ORDER BY name
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list contract parties: %w", err)
	}
	defer rows.Close()

	var parties []models.ContractParty
	for rows.Next() {
		var p models.ContractParty
		if err := rows.Scan(
			&p.ID, &p.ContractID, &p.Name, &p.Type, &p.Email, &p.Phone,
			&p.Address, &p.City, &p.State, &p.ZipCode, &p.Country, &p.TaxID,
		); err != nil {
			return nil, fmt.Errorf("scan contract party: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (s *ContractStore) documentsFor(contractID uuid.UUID) ([]models.Document, error) {
	rows, err := s.db.Query(`
		SELECT id, contract_id, name, doc_type, s3_key, file_name, mime_type, size_bytes, version, created_at
		FROM contract_documents WHERE contract_id = $1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("list contract documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.ContractID, &d.Name, &d.DocType, &d.S3Key,
			&d.FileName, &d.MimeType, &d.SizeBytes, &d.Version, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contract document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func insertContractVariables(tx *sql.Tx, contractID uuid.UUID, vars []models.ContractVariable) error {
	for i, v := range vars {
		typ := v.Type
		if typ == "" {
			typ = "text"
		}
		_, err := tx.Exec(`
			INSERT INTO contract_variables (contract_id, name, type, value, position)
			VALUES ($1, $2, $3, $4, $5)
		`, contractID, v.Name, typ, v.Value, i)
		if err != nil {
			return fmt.Errorf("insert contract variable %q: %w", v.Name, err)
		}
	}
	return nil
}

func insertContractParties(tx *sql.Tx, contractID uuid.UUID, parties []models.ContractParty) error {
	for _, p := range parties {
		typ := p.Type
		if typ == "" {
			typ = "individual"
		}
		_, err := tx.Exec(`
			INSERT INTO contract_parties (contract_id, name, type, email, phone, address, city, state, zip_code, country, tax_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, contractID, p.Name, typ, p.Email, p.Phone, p.Address, p.City, p.State, p.ZipCode, p.Country, p.TaxID)
		if err != nil {
			return fmt.Errorf("insert contract party %q: %w", p.Name, err)
		}
	}
	return nil
}

func scanContract(row scanner) (*models.Contract, error) {
	c := &models.Contract{}
	if err := row.Scan(scanContractDest(c)...); err != nil {
		return nil, err
	}
	return c, nil
}

func scanContractDest(c *models.Contract) []any {
	return []any{
		&c.ID, &c.OwnerID, &c.TemplateID, &c.Title, &c.Description, &c.Content,
		&c.Status, &c.GeneratedAt, &c.ExpiresAt, &c.TotalValue, &c.Currency,
		&c.IsSigned, &c.SignedAt, &c.SignedBy, &c.CreatedAt, &c.UpdatedAt,
	}
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
