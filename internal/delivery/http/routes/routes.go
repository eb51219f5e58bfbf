package routes

import (
	"careerboard/internal/delivery/http/handler"
	v1 "careerboard/internal/delivery/http/routes/v1"
	"careerboard/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	ws     *ws.Handler
	v1     v1.Deps
}

// NewRegistry wires the route tree. wsHandler may be nil to leave the feed disabled.
func NewRegistry(deps v1.Deps, wsHandler *ws.Handler) *Registry {
	return &Registry{health: handler.NewHealthHandler(), ws: wsHandler, v1: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerFeed(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	app.Get("/health", r.health.Handle)
}

func (r *Registry) registerFeed(app *fiber.App) {
	if r.ws == nil {
		return
	}
	app.Get("/ws/listings", r.ws.HandleListingsWS)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1)
}
