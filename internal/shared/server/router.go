package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dealdocs-backend/internal/documents"
	"dealdocs-backend/internal/shared/config"
	"dealdocs-backend/internal/shared/metrics"
	"dealdocs-backend/internal/shared/server/middleware"
	"dealdocs-backend/internal/shared/server/respond"
	"dealdocs-backend/internal/shared/storage/object"
	"dealdocs-backend/internal/shared/util"
	"dealdocs-backend/internal/templates"
)

// RouterDeps carries the handlers and stores the router mounts.
type RouterDeps struct {
	Config          config.Config
	TemplateHandler *templates.Handler
	DocumentHandler *documents.Handler

	// ArtifactStore backs the /artifacts route that local signed URLs point
	// at. Nil when the store presigns its own URLs (S3, MinIO).
	ArtifactStore     object.ObjectStore
	ArtifactURLSecret string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ArtifactStore != nil {
		api.GET("/artifacts/*key", serveArtifact(deps.ArtifactStore, deps.ArtifactURLSecret))
	}

	return r
}

// serveArtifact fulfils the token-guarded URLs issued by the local store.
func serveArtifact(store object.ObjectStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		expiresRaw := c.Query("expires")
		token := c.Query("token")

		expires, err := strconv.ParseInt(expiresRaw, 10, 64)
		if err != nil || time.Now().UTC().Unix() > expires {
			respond.Error(c, http.StatusForbidden, "FORBIDDEN", "url expired", nil)
			return
		}
		want := util.HashToken(secret + "|" + key + "|" + expiresRaw)
		if token != want {
			respond.Error(c, http.StatusForbidden, "FORBIDDEN", "invalid token", nil)
			return
		}

		body, err := store.Get(c.Request.Context(), key)
		if err != nil {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "artifact not found", nil)
			return
		}
		defer body.Close()

		contentType := "application/octet-stream"
		if strings.HasSuffix(key, ".pdf") {
			contentType = "application/pdf"
		}
		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, body)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
