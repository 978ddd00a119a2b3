package documents

import (
	"time"

	"dealdocs-backend/internal/render"
)

// CreateRequest is the caller-facing generation request body.
type CreateRequest struct {
	TemplateCode     string         `json:"templateCode"`
	PropertyID       string         `json:"propertyId"`
	PropertyAddress  string         `json:"propertyAddress"`
	BuyerID          string         `json:"buyerId"`
	SellerID         string         `json:"sellerId"`
	AgentID          string         `json:"agentId"`
	TransactionID    string         `json:"transactionId"`
	Fields           map[string]any `json:"fields"`
	SendForSignature bool           `json:"sendForSignature"`
	Signers          []Signer       `json:"signers"`
}

// AdvanceRequest names the lifecycle state to move to.
type AdvanceRequest struct {
	TargetStatus string `json:"targetStatus"`
}

// DocumentResponse is the wire shape of a document.
type DocumentResponse struct {
	DocumentID   string          `json:"documentId"`
	TemplateCode string          `json:"templateCode"`
	Status       DocumentStatus  `json:"status"`
	Meta         Metadata        `json:"meta"`
	Fields       map[string]any  `json:"fields,omitempty"`
	Signers      []Signer        `json:"signers,omitempty"`
	Signatures   []SignatureData `json:"signatures,omitempty"`
	FileName     string          `json:"fileName,omitempty"`
	SizeBytes    int64           `json:"sizeBytes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateResponse is the generation response: the document handle plus URLs
// for fetching the artifact, when the store could sign them.
type CreateResponse struct {
	DocumentID string           `json:"documentId"`
	Status     DocumentStatus   `json:"status"`
	PDFURL     string           `json:"pdfUrl,omitempty"`
	PreviewURL string           `json:"previewUrl,omitempty"`
	Warnings   []render.Warning `json:"warnings,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:   doc.ID,
		TemplateCode: doc.TemplateCode,
		Status:       doc.Status,
		Meta:         doc.Meta,
		Fields:       doc.Fields,
		Signers:      doc.Signers,
		Signatures:   doc.Signatures,
		FileName:     doc.FileName,
		SizeBytes:    doc.SizeBytes,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
