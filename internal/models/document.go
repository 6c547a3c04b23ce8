package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a generated export artifact (typically a PDF) owned
// exclusively by the contract that produced it. The binary lives in
// object storage; the row records its S3 key and metadata.
type Document struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Name       string    `json:"name"`
	DocType    string    `json:"doc_type"`
	S3Key      string    `json:"-"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
}
