package documents

import "time"

// DocumentStatus is the lifecycle state of a generated document.
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "draft"
	StatusPendingReview    DocumentStatus = "pending_review"
	StatusPendingSignature DocumentStatus = "pending_signature"
	StatusSigned           DocumentStatus = "signed"
	StatusCompleted        DocumentStatus = "completed"
	StatusCancelled        DocumentStatus = "cancelled"
	StatusExpired          DocumentStatus = "expired"
)

// Metadata is the transaction context a document was generated for.
type Metadata struct {
	PropertyID      string `json:"propertyId"`
	PropertyAddress string `json:"propertyAddress,omitempty"`
	BuyerID         string `json:"buyerId,omitempty"`
	SellerID        string `json:"sellerId,omitempty"`
	AgentID         string `json:"agentId,omitempty"`
	TransactionID   string `json:"transactionId,omitempty"`
	Category        string `json:"category,omitempty"`
	CategoryNumber  int    `json:"categoryNumber,omitempty"`
	Version         int    `json:"version"`
	PageCount       int    `json:"pageCount"`
}

// Signer identifies one party expected to sign.
type Signer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Order int    `json:"order,omitempty"`
}

// SignatureData records one signature placeholder or captured mark.
type SignatureData struct {
	FieldID    string     `json:"fieldId"`
	SignerID   string     `json:"signerId,omitempty"`
	SignerRole string     `json:"signerRole"`
	Type       string     `json:"type"`
	Value      string     `json:"value,omitempty"`
	SignedAt   *time.Time `json:"signedAt,omitempty"`
	IPAddress  string     `json:"ipAddress,omitempty"`
}

// Activity is one entry in a document's audit trail.
type Activity struct {
	DocumentID string    `json:"documentId"`
	Action     string    `json:"action"`
	UserID     string    `json:"userId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Document tracks one generation instance of a template through its
// lifecycle. The lifecycle service is the sole mutator of Status and
// UpdatedAt; the storage adapter only ever reads/writes the binary keyed by
// StorageKey.
type Document struct {
	ID           string
	TemplateCode string
	Status       DocumentStatus
	Meta         Metadata
	Fields       map[string]any
	Signers      []Signer
	Signatures   []SignatureData
	StorageKey   string
	FileName     string
	SizeBytes    int64
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
