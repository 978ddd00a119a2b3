package documents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dealdocs-backend/internal/render"
	"dealdocs-backend/internal/shared/storage/object"
	local "dealdocs-backend/internal/shared/storage/object/local"
	"dealdocs-backend/internal/templates"
)

type stubRenderer struct {
	out render.Output
	err error
}

func (r *stubRenderer) Render(ctx context.Context, def templates.TemplateDefinition, schema templates.FieldSchema, values map[string]any, marks []render.SignatureMark, opts render.Options) (render.Output, error) {
	if r.err != nil {
		return render.Output{}, r.err
	}
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	out := r.out
	if out.PDF == nil {
		out.PDF = []byte("%PDF-1.7 stub")
		out.PageCount = schema.PageCount
	}
	return out, nil
}

// failingRepo makes Create fail after the artifact upload so orphan cleanup
// is observable.
type failingRepo struct {
	*MemoryRepo
}

func (r *failingRepo) Create(ctx context.Context, doc Document) error {
	return errors.New("insert failed")
}

func newTestService(t *testing.T, repo Repo, renderer Renderer) (*Service, object.ObjectStore) {
	t.Helper()
	registry, err := templates.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := local.New(t.TempDir(), "test-secret")
	return &Service{
		Registry:       registry,
		Repo:           repo,
		Renderer:       renderer,
		Store:          store,
		RenderTimeout:  5 * time.Second,
		StorageTimeout: 5 * time.Second,
		SignedURLTTL:   15 * time.Minute,
	}, store
}

func validInput() CreateInput {
	return CreateInput{
		TemplateCode: "CA_RPA",
		Meta:         Metadata{PropertyID: "prop-1", PropertyAddress: "123 Main St"},
		Fields: map[string]any{
			"buyerName":           "Ada Buyer",
			"sellerName":          "Sam Seller",
			"propertyAddress":     "123 Main St, Sacramento CA",
			"purchasePrice":       850000,
			"financingType":       "cash",
			"earnestMoneyDeposit": 25000,
		},
		CreatedBy: "user-1",
	}
}

func TestCreateProducesDraft(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, warnings, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Status != StatusDraft {
		t.Fatalf("status = %s, want %s", doc.Status, StatusDraft)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if doc.StorageKey != "documents/"+doc.ID+"/CA_RPA.pdf" {
		t.Fatalf("storage key = %q", doc.StorageKey)
	}
	if doc.Meta.PageCount != 10 {
		t.Fatalf("page count = %d, want 10", doc.Meta.PageCount)
	}
	// Defaults from the schema must be persisted with the document.
	if got, ok := doc.Fields["closeOfEscrowDays"].(float64); !ok || got != 30 {
		t.Fatalf("closeOfEscrowDays = %v", doc.Fields["closeOfEscrowDays"])
	}

	body, err := store.Get(ctx, doc.StorageKey)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	body.Close()

	activity, err := svc.Activity(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Action != ActionCreated {
		t.Fatalf("activity = %+v", activity)
	}
}

func TestCreateSendForSignature(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})

	in := validInput()
	in.SendForSignature = true
	in.Signers = []Signer{
		{ID: "s-1", Name: "Ada Buyer", Email: "ada@example.com", Role: "buyer"},
		{ID: "s-2", Name: "Sam Seller", Email: "sam@example.com", Role: "seller"},
	}

	doc, _, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Status != StatusPendingSignature {
		t.Fatalf("status = %s, want %s", doc.Status, StatusPendingSignature)
	}
	if len(doc.Signatures) != 4 {
		t.Fatalf("signatures = %d, want 4", len(doc.Signatures))
	}
	for _, sig := range doc.Signatures {
		if sig.SignerID == "" {
			t.Fatalf("signature %s has no signer bound", sig.FieldID)
		}
	}
}

func TestCreateSendForSignatureNeedsSigners(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})

	in := validInput()
	in.SendForSignature = true

	_, _, err := svc.Create(context.Background(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateValidationFailurePersistsNothing(t *testing.T) {
	repo := NewMemoryRepo()
	svc, store := newTestService(t, repo, &stubRenderer{})
	ctx := context.Background()

	in := validInput()
	delete(in.Fields, "sellerName")

	_, _, err := svc.Create(ctx, in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	found := false
	for _, fe := range ve.Fields {
		if fe.Field == "sellerName" && fe.Code == "MISSING_REQUIRED_FIELD" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing sellerName error in %+v", ve.Fields)
	}

	keys, err := store.List(ctx, "documents/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("artifacts left behind: %v", keys)
	}
	docs, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("repo.List: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("documents persisted on failure: %d", len(docs))
	}
}

func TestCreateUnknownTemplate(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})

	in := validInput()
	in.TemplateCode = "NOPE"

	_, _, err := svc.Create(context.Background(), in)
	if !errors.Is(err, templates.ErrNotFound) {
		t.Fatalf("err = %v, want templates.ErrNotFound", err)
	}
}

func TestCreateRenderFailureLeavesNoArtifact(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo(), &stubRenderer{err: render.ErrTemplateLoadFailed})
	ctx := context.Background()

	_, _, err := svc.Create(ctx, validInput())
	if !errors.Is(err, render.ErrTemplateLoadFailed) {
		t.Fatalf("err = %v", err)
	}
	keys, _ := store.List(ctx, "documents/")
	if len(keys) != 0 {
		t.Fatalf("artifacts left behind: %v", keys)
	}
}

func TestCreateInsertFailureDiscardsArtifact(t *testing.T) {
	svc, store := newTestService(t, &failingRepo{NewMemoryRepo()}, &stubRenderer{})
	ctx := context.Background()

	_, _, err := svc.Create(ctx, validInput())
	if err == nil {
		t.Fatal("expected error")
	}
	keys, _ := store.List(ctx, "documents/")
	if len(keys) != 0 {
		t.Fatalf("orphaned artifacts: %v", keys)
	}
}

func TestAdvanceFollowsGraph(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Advance(ctx, doc.ID, StatusSigned, "user-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("draft -> signed err = %v, want ErrInvalidTransition", err)
	}

	for _, target := range []DocumentStatus{StatusPendingReview, StatusPendingSignature, StatusSigned, StatusCompleted} {
		updated, err := svc.Advance(ctx, doc.ID, target, "user-1")
		if err != nil {
			t.Fatalf("Advance to %s: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("status = %s, want %s", updated.Status, target)
		}
	}

	if _, err := svc.Advance(ctx, doc.ID, StatusCancelled, "user-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed -> cancelled err = %v, want ErrInvalidTransition", err)
	}

	activity, err := svc.Activity(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) != 5 {
		t.Fatalf("activity entries = %d, want 5", len(activity))
	}
}

func TestAdvanceUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	if _, err := svc.Advance(context.Background(), "doc-1", "finished", "user-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.Cancel(ctx, doc.ID, "user-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	second, err := svc.Cancel(ctx, doc.ID, "user-1")
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if first.Status != StatusCancelled || second.Status != StatusCancelled {
		t.Fatalf("statuses = %s, %s", first.Status, second.Status)
	}
	// Cancelled is terminal for everything else, including expire.
	if _, err := svc.Expire(ctx, doc.ID, "user-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expire after cancel err = %v", err)
	}
}

func TestOptimisticUpdateRejectsStaleWriter(t *testing.T) {
	repo := NewMemoryRepo()
	svc, _ := newTestService(t, repo, &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A competing transition lands first.
	if _, err := svc.Advance(ctx, doc.ID, StatusPendingReview, "other"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	// The loser still holds the draft snapshot.
	err = repo.UpdateStatus(ctx, doc.ID, doc.Status, doc.UpdatedAt, StatusCancelled, time.Now().UTC())
	if !errors.Is(err, ErrStaleState) {
		t.Fatalf("err = %v, want ErrStaleState", err)
	}
}

func TestDownloadMissingArtifact(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, doc.StorageKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, _, err = svc.Download(ctx, doc.ID)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestDownloadStorageTimeout(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The store checks its context before touching disk, so an already
	// expired deadline surfaces as a timeout even with the artifact present.
	svc.StorageTimeout = time.Nanosecond
	_, _, err = svc.Download(ctx, doc.ID)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestDownloadUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	_, _, err := svc.Download(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSignedURL(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo(), &stubRenderer{})
	ctx := context.Background()

	doc, _, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	url, err := svc.SignedURL(ctx, doc.ID)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.Contains(url, doc.StorageKey) || !strings.Contains(url, "token=") {
		t.Fatalf("url = %q", url)
	}
}
