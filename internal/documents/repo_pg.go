package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, template_code, status, property_id, property_address, buyer_id, seller_id, agent_id, transaction_id, category, category_number, version, page_count, fields, signers, signatures, storage_key, file_name, size_bytes, created_by, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, template_code, status, property_id, property_address, buyer_id, seller_id, agent_id, transaction_id,
    category, category_number, version, page_count, fields, signers, signatures, storage_key, file_name,
    size_bytes, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	fieldsJSON, err := json.Marshal(doc.Fields)
	if err != nil {
		return err
	}
	signersJSON, err := json.Marshal(doc.Signers)
	if err != nil {
		return err
	}
	signaturesJSON, err := json.Marshal(doc.Signatures)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.TemplateCode,
		string(doc.Status),
		doc.Meta.PropertyID,
		nullString(doc.Meta.PropertyAddress),
		nullString(doc.Meta.BuyerID),
		nullString(doc.Meta.SellerID),
		nullString(doc.Meta.AgentID),
		nullString(doc.Meta.TransactionID),
		nullString(doc.Meta.Category),
		doc.Meta.CategoryNumber,
		doc.Meta.Version,
		doc.Meta.PageCount,
		fieldsJSON,
		signersJSON,
		signaturesJSON,
		nullString(doc.StorageKey),
		nullString(doc.FileName),
		doc.SizeBytes,
		nullString(doc.CreatedBy),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, documentID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns documents newest-first, honoring the filter.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE ($1 = '' OR property_id = $1)
  AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, filter.PropertyID, string(filter.Status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateStatus applies an optimistic status transition. The WHERE clause pins
// both the expected status and updatedAt so a concurrent writer loses with
// ErrStaleState instead of silently overwriting.
func (r *PGRepo) UpdateStatus(ctx context.Context, documentID string, from DocumentStatus, expectedUpdatedAt time.Time, to DocumentStatus, now time.Time) error {
	const query = `
UPDATE documents
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4 AND updated_at = $5`

	res, err := r.DB.ExecContext(ctx, query, string(to), now, documentID, string(from), expectedUpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a vanished row from a lost race.
		if _, getErr := r.GetByID(ctx, documentID); getErr != nil {
			return getErr
		}
		return ErrStaleState
	}
	return nil
}

// AppendActivity records one audit-trail entry.
func (r *PGRepo) AppendActivity(ctx context.Context, activity Activity) error {
	const query = `
INSERT INTO document_activity (document_id, action, user_id, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query,
		activity.DocumentID,
		activity.Action,
		nullString(activity.UserID),
		activity.CreatedAt,
	)
	return err
}

// ListActivity returns a document's audit trail oldest-first.
func (r *PGRepo) ListActivity(ctx context.Context, documentID string) ([]Activity, error) {
	const query = `
SELECT document_id, action, user_id, created_at
FROM document_activity
WHERE document_id = $1
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var userID sql.NullString
		if err := rows.Scan(&a.DocumentID, &a.Action, &userID, &a.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			a.UserID = userID.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status string
	var propertyAddress, buyerID, sellerID, agentID, transactionID, category sql.NullString
	var storageKey, fileName, createdBy sql.NullString
	var fieldsJSON, signersJSON, signaturesJSON []byte

	err := row.Scan(
		&doc.ID,
		&doc.TemplateCode,
		&status,
		&doc.Meta.PropertyID,
		&propertyAddress,
		&buyerID,
		&sellerID,
		&agentID,
		&transactionID,
		&category,
		&doc.Meta.CategoryNumber,
		&doc.Meta.Version,
		&doc.Meta.PageCount,
		&fieldsJSON,
		&signersJSON,
		&signaturesJSON,
		&storageKey,
		&fileName,
		&doc.SizeBytes,
		&createdBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}

	doc.Status = DocumentStatus(status)
	if propertyAddress.Valid {
		doc.Meta.PropertyAddress = propertyAddress.String
	}
	if buyerID.Valid {
		doc.Meta.BuyerID = buyerID.String
	}
	if sellerID.Valid {
		doc.Meta.SellerID = sellerID.String
	}
	if agentID.Valid {
		doc.Meta.AgentID = agentID.String
	}
	if transactionID.Valid {
		doc.Meta.TransactionID = transactionID.String
	}
	if category.Valid {
		doc.Meta.Category = category.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if fileName.Valid {
		doc.FileName = fileName.String
	}
	if createdBy.Valid {
		doc.CreatedBy = createdBy.String
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &doc.Fields); err != nil {
			return Document{}, err
		}
	}
	if len(signersJSON) > 0 {
		if err := json.Unmarshal(signersJSON, &doc.Signers); err != nil {
			return Document{}, err
		}
	}
	if len(signaturesJSON) > 0 {
		if err := json.Unmarshal(signaturesJSON, &doc.Signatures); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
