package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"dealdocs-backend/internal/fields"
	"dealdocs-backend/internal/render"
	"dealdocs-backend/internal/shared/metrics"
	"dealdocs-backend/internal/shared/storage/object"
	"dealdocs-backend/internal/shared/telemetry"
	"dealdocs-backend/internal/templates"
)

const (
	ActionCreated   = "created"
	actionStatusFmt = "status:%s"
)

// Renderer produces the filled artifact for a template. Satisfied by
// *render.Renderer.
type Renderer interface {
	Render(ctx context.Context, def templates.TemplateDefinition, schema templates.FieldSchema, values map[string]any, marks []render.SignatureMark, opts render.Options) (render.Output, error)
}

// Service contains business logic for the document lifecycle. It is the sole
// mutator of document status; per-document serialization is enforced by the
// repo's optimistic UpdateStatus rather than a held lock.
type Service struct {
	Registry       *templates.Registry
	Repo           Repo
	Renderer       Renderer
	Store          object.ObjectStore
	RenderTimeout  time.Duration
	StorageTimeout time.Duration
	SignedURLTTL   time.Duration
	Policy         render.BoundsPolicy
}

// CreateInput is a validated-upstream generation request.
type CreateInput struct {
	TemplateCode     string
	Meta             Metadata
	Fields           map[string]any
	SendForSignature bool
	Signers          []Signer
	CreatedBy        string
}

// Create runs the full generation pipeline: schema resolution, rendering,
// artifact upload, then the metadata insert. It is all-or-nothing: a failure
// after the upload deletes the artifact so no blob is left referenced by a
// document that was never persisted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Document, []render.Warning, error) {
	metrics.IncGenerationStarted()
	started := metrics.NowMillis()
	doc, warnings, err := s.create(ctx, in)
	if err != nil {
		metrics.IncGenerationFailed()
		return Document{}, nil, err
	}
	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(metrics.NowMillis() - started)
	return doc, warnings, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (Document, []render.Warning, error) {
	if in.TemplateCode == "" || in.Meta.PropertyID == "" {
		return Document{}, nil, fmt.Errorf("%w: templateCode and propertyId are required", ErrInvalidInput)
	}
	if in.SendForSignature && len(in.Signers) == 0 {
		return Document{}, nil, fmt.Errorf("%w: sendForSignature requires at least one signer", ErrInvalidInput)
	}

	def, err := s.Registry.Get(in.TemplateCode)
	if err != nil {
		return Document{}, nil, err
	}
	schema, err := s.Registry.Schema(in.TemplateCode)
	if err != nil {
		return Document{}, nil, err
	}

	result := fields.Resolve(schema, in.Fields)
	if !result.OK() {
		return Document{}, nil, &ValidationError{Fields: result.Errors}
	}

	signatures := buildSignatures(schema, in.Signers)
	marks := make([]render.SignatureMark, 0, len(signatures))
	for _, sig := range signatures {
		marks = append(marks, render.SignatureMark{
			FieldID: sig.FieldID,
			Role:    sig.SignerRole,
			Type:    sig.Type,
			Value:   sig.Value,
		})
	}

	renderCtx, cancelRender := s.withTimeout(ctx, s.RenderTimeout)
	defer cancelRender()
	out, err := s.Renderer.Render(renderCtx, def, schema, result.Values, marks, render.Options{Policy: s.Policy})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Document{}, nil, fmt.Errorf("%w: render: %s", ErrTimeout, err)
		}
		return Document{}, nil, err
	}

	now := time.Now().UTC()
	doc := Document{
		ID:           uuid.NewString(),
		TemplateCode: def.Code,
		Status:       StatusDraft,
		Meta:         in.Meta,
		Fields:       result.Values,
		Signers:      in.Signers,
		Signatures:   signatures,
		FileName:     def.Code + ".pdf",
		SizeBytes:    int64(len(out.PDF)),
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	doc.Meta.Category = def.Category
	doc.Meta.CategoryNumber = def.CategoryNumber
	doc.Meta.PageCount = out.PageCount
	if doc.Meta.Version == 0 {
		doc.Meta.Version = 1
	}
	if in.SendForSignature {
		doc.Status = StatusPendingSignature
	}
	doc.StorageKey = artifactKey(doc.ID, def.Code)

	storeCtx, cancelStore := s.withTimeout(ctx, s.StorageTimeout)
	defer cancelStore()
	if _, err := s.Store.Put(storeCtx, doc.StorageKey, "application/pdf", bytes.NewReader(out.PDF)); err != nil {
		return Document{}, nil, mapStorageErr(err)
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.discardArtifact(doc.StorageKey)
		return Document{}, nil, err
	}

	s.appendActivity(ctx, doc.ID, ActionCreated, in.CreatedBy)
	telemetry.Info("document.created", map[string]any{
		"document_id":   doc.ID,
		"template_code": doc.TemplateCode,
		"status":        string(doc.Status),
		"size_bytes":    doc.SizeBytes,
		"warnings":      len(out.Warnings),
	})
	return doc, out.Warnings, nil
}

// Advance moves a document along the lifecycle graph. A lost race against a
// concurrent transition surfaces as ErrStaleState; cancel and expire are
// idempotent when the document already rests in that terminal state.
func (s *Service) Advance(ctx context.Context, documentID string, target DocumentStatus, userID string) (Document, error) {
	if !ValidStatus(target) {
		return Document{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, target)
	}

	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.Status == target && IsTerminal(target) {
		return doc, nil
	}
	if !CanTransition(doc.Status, target) {
		return Document{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, target)
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, documentID, doc.Status, doc.UpdatedAt, target, now); err != nil {
		return Document{}, err
	}

	metrics.IncTransition()
	s.appendActivity(ctx, documentID, fmt.Sprintf(actionStatusFmt, target), userID)
	telemetry.Info("document.status", map[string]any{
		"document_id": documentID,
		"from":        string(doc.Status),
		"to":          string(target),
	})

	doc.Status = target
	doc.UpdatedAt = now
	return doc, nil
}

// Cancel moves a document to cancelled.
func (s *Service) Cancel(ctx context.Context, documentID, userID string) (Document, error) {
	return s.Advance(ctx, documentID, StatusCancelled, userID)
}

// Expire moves a document to expired.
func (s *Service) Expire(ctx context.Context, documentID, userID string) (Document, error) {
	return s.Advance(ctx, documentID, StatusExpired, userID)
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents matching the filter, newest-first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.Repo.List(ctx, filter)
}

// Activity returns a document's audit trail oldest-first.
func (s *Service) Activity(ctx context.Context, documentID string) ([]Activity, error) {
	if _, err := s.Repo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.Repo.ListActivity(ctx, documentID)
}

// Download streams the stored artifact. A vanished blob behind an existing
// document record is a retrieval failure, not a missing document.
func (s *Service) Download(ctx context.Context, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, nil, err
	}

	storeCtx, cancel := s.withTimeout(ctx, s.StorageTimeout)
	body, err := s.Store.Get(storeCtx, doc.StorageKey)
	if err != nil {
		cancel()
		return Document{}, nil, mapStorageErr(err)
	}
	metrics.IncDownload()
	return doc, &cancelOnClose{ReadCloser: body, cancel: cancel}, nil
}

// SignedURL returns a short-lived URL for the document's artifact.
func (s *Service) SignedURL(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	storeCtx, cancel := s.withTimeout(ctx, s.StorageTimeout)
	defer cancel()
	url, err := s.Store.SignedURL(storeCtx, doc.StorageKey, s.SignedURLTTL)
	if err != nil {
		return "", mapStorageErr(err)
	}
	return url, nil
}

func (s *Service) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

/// appendActivity is best-effort: a failed audit insert never fails the
// operation it records.
func (s *Service) appendActivity(ctx context.Context, documentID, action, userID string) {
	err := s.Repo.AppendActivity(ctx, Activity{
		DocumentID: documentID,
		Action:     action,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		telemetry.Warn("document.activity_failed", map[string]any{
			"document_id": documentID,
			"action":      action,
			"error":       err.Error(),
		})
	}
}

// discardArtifact removes an uploaded blob after a failed insert so the store
// holds no orphan referenced by nothing.
func (s *Service) discardArtifact(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("document.artifact_orphaned", map[string]any{
			"storage_key": key,
			"error":       err.Error(),
		})
	}
}

// buildSignatures pairs the schema's signature fields with the supplied
// signers by role, leaving SignerID empty for unmatched placeholders.
func buildSignatures(schema templates.FieldSchema, signers []Signer) []SignatureData {
	byRole := make(map[string]Signer, len(signers))
	for _, signer := range signers {
		if _, ok := byRole[signer.Role]; !ok {
			byRole[signer.Role] = signer
		}
	}
	out := make([]SignatureData, 0, len(schema.Signatures))
	for _, sig := range schema.Signatures {
		data := SignatureData{
			FieldID:    sig.ID,
			SignerRole: sig.Role,
			Type:       sig.Type,
		}
		if signer, ok := byRole[sig.Role]; ok {
			data.SignerID = signer.ID
		}
		out = append(out, data)
	}
	return out
}

func artifactKey(documentID, templateCode string) string {
	return "documents/" + documentID + "/" + templateCode + ".pdf"
}

func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	case errors.Is(err, object.ErrNotFound):
		return fmt.Errorf("%w: artifact missing: %s", ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, err)
	}
}

// cancelOnClose ties a storage read context to the body's lifetime.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}
