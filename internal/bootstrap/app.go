package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"dealdocs-backend/internal/documents"
	"dealdocs-backend/internal/render"
	"dealdocs-backend/internal/shared/config"
	"dealdocs-backend/internal/shared/server"
	"dealdocs-backend/internal/shared/storage/db"
	"dealdocs-backend/internal/shared/storage/object"
	localstore "dealdocs-backend/internal/shared/storage/object/local"
	miniostore "dealdocs-backend/internal/shared/storage/object/minio"
	s3store "dealdocs-backend/internal/shared/storage/object/s3"
	"dealdocs-backend/internal/templates"
)

// App holds shared dependencies wired from configuration.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Registry         *templates.Registry
	Renderer         *render.Renderer
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	TemplatesHandler *templates.Handler
}

// Build prepares all dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := templates.NewRegistryWithAssets(cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("build template registry: %w", err)
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Registry: registry,
		Renderer: render.New(cfg.TemplateDir),
	}

	buildServices(app)

	deps := server.RouterDeps{
		Config:          cfg,
		TemplateHandler: app.TemplatesHandler,
		DocumentHandler: app.DocumentsHandler,
	}
	if cfg.ObjectStoreType == "local" {
		deps.ArtifactStore = store
		deps.ArtifactURLSecret = cfg.LocalURLSecret
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		if strings.TrimSpace(cfg.MinioEndpoint) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=minio requires MINIO_ENDPOINT")
		}
		return miniostore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.LocalURLSecret), nil
	}
}

func buildServices(app *App) {
	var repo documents.Repo
	if app.DB != nil {
		repo = &documents.PGRepo{DB: app.DB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	svc := &documents.Service{
		Registry:       app.Registry,
		Repo:           repo,
		Renderer:       app.Renderer,
		Store:          app.Store,
		RenderTimeout:  app.Config.RenderTimeout,
		StorageTimeout: app.Config.StorageTimeout,
		SignedURLTTL:   app.Config.SignedURLTTL,
		Policy:         render.PolicySkip,
	}

	app.DocumentsRepo = repo
	app.DocumentsService = svc
	app.DocumentsHandler = documents.NewHandler(svc)
	app.TemplatesHandler = templates.NewHandler(app.Registry)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
