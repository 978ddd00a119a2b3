package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealdocs-backend/internal/render"
	"dealdocs-backend/internal/shared/server/middleware"
	"dealdocs-backend/internal/shared/server/respond"
	"dealdocs-backend/internal/shared/util"
	"dealdocs-backend/internal/templates"
)

// Handler wires HTTP handlers to the document lifecycle service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.create)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/activity", h.activity)
	rg.POST("/documents/:id/advance", h.advance)
	rg.POST("/documents/:id/cancel", h.cancel)
	rg.POST("/documents/:id/expire", h.expire)
	rg.GET("/documents/:id/download", h.download)
	rg.GET("/documents/:id/url", h.signedURL)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	c.Set("templateCode", req.TemplateCode)

	doc, warnings, err := h.Svc.Create(c.Request.Context(), CreateInput{
		TemplateCode: req.TemplateCode,
		Meta: Metadata{
			PropertyID:      req.PropertyID,
			PropertyAddress: req.PropertyAddress,
			BuyerID:         req.BuyerID,
			SellerID:        req.SellerID,
			AgentID:         req.AgentID,
			TransactionID:   req.TransactionID,
		},
		Fields:           req.Fields,
		SendForSignature: req.SendForSignature,
		Signers:          req.Signers,
		CreatedBy:        middleware.UserIDFromContext(c),
	})
	if err != nil {
		h.writeError(c, err, "failed to create document")
		return
	}
	c.Set("documentId", doc.ID)
	c.Set("statusTransition", fmt.Sprintf("-> %s", doc.Status))

	resp := CreateResponse{
		DocumentID: doc.ID,
		Status:     doc.Status,
		Warnings:   warnings,
	}
	// URL signing is best-effort here; the download route always works.
	if url, err := h.Svc.SignedURL(c.Request.Context(), doc.ID); err == nil {
		resp.PDFURL = url
		resp.PreviewURL = url
	}
	respond.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		PropertyID: c.Query("propertyId"),
		Status:     DocumentStatus(c.Query("status")),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err, "failed to list documents")
		return
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": out})
}

func (h *Handler) get(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Get(c.Request.Context(), documentID)
	if err != nil {
		h.writeError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) activity(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	entries, err := h.Svc.Activity(c.Request.Context(), documentID)
	if err != nil {
		h.writeError(c, err, "failed to fetch activity")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"activity": entries})
}

func (h *Handler) advance(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetStatus == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "targetStatus is required", nil)
		return
	}

	doc, err := h.Svc.Advance(c.Request.Context(), documentID, DocumentStatus(req.TargetStatus), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err, "failed to advance document")
		return
	}
	c.Set("statusTransition", fmt.Sprintf("-> %s", doc.Status))
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) cancel(c *gin.Context) {
	h.terminal(c, StatusCancelled)
}

func (h *Handler) expire(c *gin.Context) {
	h.terminal(c, StatusExpired)
}

func (h *Handler) terminal(c *gin.Context, target DocumentStatus) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, err := h.Svc.Advance(c.Request.Context(), documentID, target, middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err, "failed to "+string(target)+" document")
		return
	}
	c.Set("statusTransition", fmt.Sprintf("-> %s", doc.Status))
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	doc, body, err := h.Svc.Download(c.Request.Context(), documentID)
	if err != nil {
		h.writeError(c, err, "failed to download document")
		return
	}
	defer body.Close()

	fileName := doc.FileName
	if fileName == "" {
		fileName = doc.TemplateCode + ".pdf"
	}
	if safe, err := util.SanitizeFileName(fileName); err == nil {
		fileName = safe
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/pdf")
	if doc.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func (h *Handler) signedURL(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	url, err := h.Svc.SignedURL(c.Request.Context(), documentID)
	if err != nil {
		h.writeError(c, err, "failed to sign url")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"url": url})
}

// writeError maps service and pipeline errors onto the wire contract. The
// fallback message keeps internals out of responses.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeValidation, "field resolution failed", ve.Fields)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, templates.ErrNotFound):
		respond.Error(c, http.StatusNotFound, render.ErrorCodeTemplateNotFound, "template not found", nil)
	case errors.Is(err, templates.ErrNoSchema):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeValidation, "template is not implemented for generation", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "document not found", nil)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, ErrorCodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, ErrStaleState):
		respond.Error(c, http.StatusConflict, ErrorCodeStaleState, "document state changed concurrently, retry", nil)
	case errors.Is(err, ErrTimeout):
		respond.Error(c, http.StatusGatewayTimeout, ErrorCodeTimeout, "operation timed out", nil)
	case errors.Is(err, ErrStorageUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, ErrorCodeStorageUnavailable, "artifact storage unavailable", nil)
	case errors.Is(err, render.ErrTemplateNotFound):
		respond.Error(c, http.StatusNotFound, render.ErrorCodeTemplateNotFound, "template base file not found", nil)
	case errors.Is(err, render.ErrGeometryMismatch):
		respond.Error(c, http.StatusInternalServerError, render.ErrorCodeGeometryMismatch, "template geometry mismatch", nil)
	case errors.Is(err, render.ErrFieldOutOfBounds):
		respond.Error(c, http.StatusUnprocessableEntity, render.ErrorCodeFieldOutOfBounds, err.Error(), nil)
	case errors.Is(err, render.ErrTemplateLoadFailed):
		respond.Error(c, http.StatusInternalServerError, render.ErrorCodeTemplateLoadFailed, "template could not be loaded", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, fallback, nil)
	}
}
