package templates

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealdocs-backend/internal/shared/server/respond"
)

// Handler exposes the template catalog over HTTP.
type Handler struct {
	Registry *Registry
}

// NewHandler constructs a Handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{Registry: registry}
}

// RegisterRoutes attaches template routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.list)
	rg.GET("/templates/:code", h.get)
}

func (h *Handler) list(c *gin.Context) {
	var filter Filter
	filter.Category = c.Query("category")
	if v := c.Query("commonlyUsed"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			filter.CommonlyUsed = &parsed
		}
	}
	if v := c.Query("implemented"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			filter.Implemented = &parsed
		}
	}

	respond.JSON(c, http.StatusOK, h.Registry.List(filter))
}

func (h *Handler) get(c *gin.Context) {
	code := c.Param("code")
	c.Set("templateCode", code)

	def, err := h.Registry.Get(code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "template not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch template", nil)
		return
	}

	resp := gin.H{"template": def}
	if schema, err := h.Registry.Schema(code); err == nil {
		resp["schema"] = schema
	}
	respond.JSON(c, http.StatusOK, resp)
}
