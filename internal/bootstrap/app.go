package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"receipt-backend/internal/auth"
	"receipt-backend/internal/catalog"
	"receipt-backend/internal/ocr"
	sharedauth "receipt-backend/internal/shared/auth"
	"receipt-backend/internal/shared/config"
	"receipt-backend/internal/shared/server"
	"receipt-backend/internal/shared/storage/db"
	"receipt-backend/internal/shared/storage/object"
	localstore "receipt-backend/internal/shared/storage/object/local"
	s3store "receipt-backend/internal/shared/storage/object/s3"
	"receipt-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Archive object.Store

	UsersRepo   users.Repo
	CatalogRepo catalog.Repo
	OCRClient   *ocr.Client
	AuthService *auth.Service
	Sessions    *sharedauth.Manager

	OCRHandler     *ocr.Handler
	AuthHandler    *auth.Handler
	OAuthFlow      *auth.OAuthFlow
	CatalogHandler *catalog.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Archive: archive,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		OCRHandler:     app.OCRHandler,
		AuthHandler:    app.AuthHandler,
		OAuthFlow:      app.OAuthFlow,
		CatalogHandler: app.CatalogHandler,
		Sessions:       app.Sessions,
	})

	return app, nil
}

// buildDB connects to the record store. Missing credentials disable the
// store: dependent endpoints fail with a configuration error instead of
// dereferencing an absent handle.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.StoreDSN == "" {
		log.Printf("bootstrap: record store credentials missing; store-backed endpoints disabled")
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.StoreDSN, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: record store connect failed; store-backed endpoints disabled: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ArchiveStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	cfg := app.Config

	var usersRepo users.Repo
	var catalogRepo catalog.Repo
	if app.DB != nil {
		usersRepo = &users.PGRepo{DB: app.DB}
		catalogRepo = &catalog.PGRepo{DB: app.DB}
	}

	if catalogRepo != nil && cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("bootstrap: redis ping failed; catalog cache disabled: %v", err)
		} else {
			catalogRepo = catalog.NewCachedRepo(catalogRepo, client)
		}
		cancel()
	}

	sessions := sharedauth.NewManager(cfg.JWTSecret, 24*time.Hour)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	authSvc := auth.NewService(verifier, usersRepo)

	app.UsersRepo = usersRepo
	app.CatalogRepo = catalogRepo
	app.OCRClient = ocr.NewClient(cfg.OCRAPIURL, cfg.OCRSecret)
	app.AuthService = authSvc
	app.Sessions = sessions
	app.OCRHandler = ocr.NewHandler(app.OCRClient, app.Archive)
	app.AuthHandler = auth.NewHandler(authSvc)
	app.OAuthFlow = auth.NewOAuthFlow(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, authSvc, sessions)
	app.CatalogHandler = catalog.NewHandler(catalogRepo)
}

func isDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}
