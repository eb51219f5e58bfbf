package app

import (
	"fmt"
	"strings"

	"careerboard/internal/config"
	"careerboard/internal/delivery/http/handler"
	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/delivery/http/routes"
	v1 "careerboard/internal/delivery/http/routes/v1"
	"careerboard/internal/listing"
	"careerboard/internal/ratelimit"
	"careerboard/internal/resource"
	"careerboard/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// maxBodyBytes bounds request bodies, bulk-upload files included.
const maxBodyBytes = 10 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	cfg := c.Config
	errMw := middleware.NewErrorMiddleware(c.Logger, cfg.App.IsDevelopment())

	f := fiber.New(fiber.Config{
		AppName:      cfg.App.AppName,
		BodyLimit:    maxBodyBytes,
		ErrorHandler: errMw.Handle,
	})

	registerGlobalMiddleware(f, c, errMw)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}
	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container, errMw *middleware.ErrorMiddleware) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	groups := ratelimit.GroupsFromConfig(c.Config.RateLimit)
	storage := ratelimit.Storage(c.Cache)

	listings := make([]*handler.ListingHandler, 0, len(c.Listings))
	finders := make(map[string]handler.DuplicateFinder, len(c.Listings))
	for _, svc := range c.Listings {
		listings = append(listings, handler.NewListingHandler(svc))
		finders[svc.Resource().Name] = svc
	}

	deps := v1.Deps{
		Listings:     listings,
		PublicCreate: map[string]bool{resource.Subscriptions: true},
		Auth:         handler.NewAuthHandler(c.Auth, c.JWT),
		AI:           handler.NewAIHandler(c.Analyzer),
		S3:           handler.NewS3Handler(c.Blobs),
		Admin:        handler.NewAdminHandler(finders),
		RequireAdmin: middleware.NewAuthMiddleware(c.JWT).Middleware(),
		APILimit:     ratelimit.New(groups.API, storage),
		AuthLimit:    ratelimit.New(groups.Auth, storage),
		AILimit:      ratelimit.New(groups.AI, storage),
	}

	var wsHandler *ws.Handler
	if c.Hub != nil {
		wsHandler = ws.NewHandler(c.Hub, c.Logger)
	}

	routes.NewRegistry(deps, wsHandler).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

var _ handler.ListingService = (*listing.Service)(nil)
