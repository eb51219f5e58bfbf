package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"careerboard/internal/blob"
	"careerboard/internal/config"
	"careerboard/internal/cv"
	"careerboard/internal/database"
	"careerboard/internal/database/migration"
	dbpostgres "careerboard/internal/database/postgres"
	"careerboard/internal/database/seeder"
	"careerboard/internal/domain/admin"
	"careerboard/internal/enrich"
	"careerboard/internal/infrastructure/cache"
	"careerboard/internal/listing"
	"careerboard/internal/notify"
	"careerboard/internal/pkg/jwt"
	"careerboard/internal/repository"
	"careerboard/internal/resource"
	"careerboard/internal/scoring"
	"careerboard/internal/store"
	"careerboard/internal/store/dynamo"
	"careerboard/internal/store/memory"
	"careerboard/internal/usecase/auth"
	"careerboard/internal/ws"
)

type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Store store.Store
	Cache *cache.Redis
	Hub   *ws.Hub

	// Listings holds one service per resource in route registration order.
	Listings []*listing.Service
	Blobs    *blob.Store
	Analyzer *cv.Analyzer
	Auth     *auth.Service
	JWT      jwt.Service

	stopHub context.CancelFunc
}

func NewContainer(cfg config.Config) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := log.Default()
	c := &Container{Config: cfg, Logger: logger}

	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Store = st

	var sink notify.Sink = notify.Nop{}
	if cfg.Notify.WebsocketEnabled {
		hubCtx, stop := context.WithCancel(context.Background())
		c.Hub = ws.NewHub(logger)
		c.stopHub = stop
		go c.Hub.Run(hubCtx)
		sink = ws.NewSink(c.Hub)
	}

	logos := enrich.NewLogoResolver(cfg.Logo, logger)
	c.Listings = NewListingServices(resource.All(cfg.Store), st,
		listing.WithLogoResolver(logos),
		listing.WithSink(sink),
		listing.WithLogger(logger),
	)

	c.Blobs, err = blob.Connect(ctx, cfg.Blob, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	if cfg.Blob.Bucket == "" {
		logger.Printf("[Blob] S3_BUCKET not set, uploads and CV analysis are unavailable")
	}

	var provider scoring.Provider
	gemini, err := scoring.NewGeminiProvider(ctx, cfg.AI)
	if err != nil {
		logger.Printf("[Scoring] provider init failed, analysis will use fallback results: %v", err)
	} else if gemini != nil {
		provider = gemini
	} else {
		logger.Printf("[Scoring] GEMINI_API_KEY not set, analysis will use fallback results")
	}
	scorer := scoring.NewScorer(provider, cfg.AI.Timeout, logger)
	c.Analyzer = cv.NewAnalyzer(c.Blobs, scorer, c.Listing(resource.Jobs), logger)

	admins, err := c.openAdmins(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Auth = auth.NewService(admins)
	c.JWT = jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	c.Cache = cache.NewRedis(cfg.Redis, logger)

	return c, nil
}

// OpenStore returns the configured document store.
func OpenStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Printf("[Store] using in-process store, data is not persisted")
		return memory.New(resource.Schemas(resource.All(cfg.Store))), nil
	default:
		st, err := dynamo.Connect(ctx, cfg.Store, logger)
		if err != nil {
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		return st, nil
	}
}

func NewListingServices(resources []listing.Resource, st store.Store, opts ...listing.Option) []*listing.Service {
	out := make([]*listing.Service, 0, len(resources))
	for _, res := range resources {
		out = append(out, listing.NewService(res, st, opts...))
	}
	return out
}

// Listing returns the service for the named resource, or nil.
func (c *Container) Listing(name string) *listing.Service {
	for _, svc := range c.Listings {
		if svc.Resource().Name == name {
			return svc
		}
	}
	return nil
}

// openAdmins selects the admin account store. With a database the schema is migrated and
// the bootstrap admin seeded into it; otherwise the bootstrap admin lives in memory.
func (c *Container) openAdmins(ctx context.Context) (admin.Repository, error) {
	cfg := c.Config
	if !cfg.Database.Enabled() {
		repo := repository.NewStaticAdminRepository()
		if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
			c.Logger.Printf("[Auth] no database and no ADMIN_EMAIL/ADMIN_PASSWORD, admin login is disabled")
			return repo, nil
		}
		err := auth.NewService(repo).Bootstrap(ctx, auth.BootstrapInput{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Name:     cfg.Admin.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		return repo, nil
	}

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	c.DB = db

	if err := (migration.Runner{}).Run(ctx, db.SQLDB()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := (seeder.Runner{Seeders: seeder.Defaults(cfg.Admin), Logger: c.Logger}).Run(ctx, db); err != nil {
		return nil, err
	}
	return repository.NewPostgresAdminRepository(db), nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.stopHub != nil {
		c.stopHub()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
