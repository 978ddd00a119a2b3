package documents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dealdocs-backend/internal/shared/server/middleware"
	local "dealdocs-backend/internal/shared/storage/object/local"
	"dealdocs-backend/internal/templates"
)

func setupDocumentsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := templates.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	svc := &Service{
		Registry:       registry,
		Repo:           NewMemoryRepo(),
		Renderer:       &stubRenderer{},
		Store:          local.New(t.TempDir(), "test-secret"),
		RenderTimeout:  5 * time.Second,
		StorageTimeout: 5 * time.Second,
		SignedURLTTL:   15 * time.Minute,
	}

	router := gin.New()
	router.Use(middleware.Identity())
	rg := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(rg)
	return router
}

func createTestDocument(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"templateCode": "CA_RPA",
		"propertyId":   "prop-1",
		"fields": map[string]any{
			"buyerName":           "Ada Buyer",
			"sellerName":          "Sam Seller",
			"propertyAddress":     "123 Main St, Sacramento CA",
			"purchasePrice":       850000,
			"financingType":       "cash",
			"earnestMoneyDeposit": 25000,
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.Code, resp.Body.String())
	}
	var created CreateResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatal("empty documentId")
	}
	return created.DocumentID
}

func TestCreateDocumentEndpoint(t *testing.T) {
	router := setupDocumentsRouter(t)

	body, _ := json.Marshal(map[string]any{
		"templateCode": "CA_RPA",
		"propertyId":   "prop-1",
		"fields": map[string]any{
			"buyerName":           "Ada Buyer",
			"sellerName":          "Sam Seller",
			"propertyAddress":     "123 Main St",
			"purchasePrice":       850000,
			"financingType":       "cash",
			"earnestMoneyDeposit": 25000,
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var created CreateResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Status != StatusDraft {
		t.Fatalf("status = %s, want draft", created.Status)
	}
	if created.PDFURL == "" {
		t.Fatal("expected a signed pdfUrl")
	}
}

func TestCreateDocumentValidationError(t *testing.T) {
	router := setupDocumentsRouter(t)

	body, _ := json.Marshal(map[string]any{
		"templateCode": "CA_RPA",
		"propertyId":   "prop-1",
		"fields": map[string]any{
			"buyerName": "Ada Buyer",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
				Code  string `json:"code"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errResp.Error.Code != ErrorCodeValidation {
		t.Fatalf("code = %s", errResp.Error.Code)
	}
	if len(errResp.Error.Details) == 0 {
		t.Fatal("expected per-field details")
	}
}

func TestCreateDocumentUnknownTemplate(t *testing.T) {
	router := setupDocumentsRouter(t)

	body, _ := json.Marshal(map[string]any{
		"templateCode": "NOPE",
		"propertyId":   "prop-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "TEMPLATE_NOT_FOUND") {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestAdvanceEndpoint(t *testing.T) {
	router := setupDocumentsRouter(t)
	documentID := createTestDocument(t, router)

	// Skipping review is rejected.
	body, _ := json.Marshal(AdvanceRequest{TargetStatus: "signed"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+documentID+"/advance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), ErrorCodeInvalidTransition) {
		t.Fatalf("body = %s", resp.Body.String())
	}

	body, _ = json.Marshal(AdvanceRequest{TargetStatus: "pending_review"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+documentID+"/advance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var doc DocumentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Status != StatusPendingReview {
		t.Fatalf("status = %s", doc.Status)
	}
}

func TestCancelEndpointIdempotent(t *testing.T) {
	router := setupDocumentsRouter(t)
	documentID := createTestDocument(t, router)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+documentID+"/cancel", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d, body %s", i, resp.Code, resp.Body.String())
		}
	}
}

func TestDownloadEndpoint(t *testing.T) {
	router := setupDocumentsRouter(t)
	documentID := createTestDocument(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+documentID+"/download", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "CA_RPA.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a pdf: %q", resp.Body.String())
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	router := setupDocumentsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), ErrorCodeNotFound) {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestListDocumentsFilter(t *testing.T) {
	router := setupDocumentsRouter(t)
	createTestDocument(t, router)
	createTestDocument(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?propertyId=prop-1&status=draft", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var listed struct {
		Documents []DocumentResponse `json:"documents"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(listed.Documents))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents?status=completed", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Documents) != 0 {
		t.Fatalf("documents = %d, want 0", len(listed.Documents))
	}
}
