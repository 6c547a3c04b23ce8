// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"contractd/internal/models"
)

// DocumentStore handles export artifact records. The binary itself lives
// in object storage; rows here only carry the S3 key and metadata.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new DocumentStore with the given database connection.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, contract_id, name, doc_type, s3_key, file_name,
	mime_type, size_bytes, version, created_at`

// Create inserts a new document record and returns it with the generated ID.
func (s *DocumentStore) Create(d *models.Document) (*models.Document, error) {
	err := s.db.QueryRow(`
		INSERT INTO contract_documents (contract_id, name, doc_type, s3_key, file_name, mime_type, size_bytes, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+documentColumns,
		d.ContractID, d.Name, d.DocType, d.S3Key, d.FileName, d.MimeType, d.SizeBytes, d.Version,
	).Scan(
		&d.ID, &d.ContractID, &d.Name, &d.DocType, &d.S3Key,
		&d.FileName, &d.MimeType, &d.SizeBytes, &d.Version, &d.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

// FindByID retrieves a document record. Returns nil if not found.
func (s *DocumentStore) FindByID(id uuid.UUID) (*models.Document, error) {
	d := &models.Document{}
	err := s.db.QueryRow(
		"SELECT "+documentColumns+" FROM contract_documents WHERE id = $1", id,
	).Scan(
		&d.ID, &d.ContractID, &d.Name, &d.DocType, &d.S3Key,
		&d.FileName, &d.MimeType, &d.SizeBytes, &d.Version, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return d, nil
}

// ListByContract returns all document records for a contract, newest first.
func (s *DocumentStore) ListByContract(contractID uuid.UUID) ([]models.Document, error) {
	rows, err := s.db.Query(
		"SELECT "+documentColumns+" FROM contract_documents WHERE contract_id = $1 ORDER BY created_at DESC",
		contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.ContractID, &d.Name, &d.DocType, &d.S3Key,
			&d.FileName, &d.MimeType, &d.SizeBytes, &d.Version, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document record by ID.
func (s *DocumentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM contract_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
