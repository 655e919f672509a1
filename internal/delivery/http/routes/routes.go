package routes

import (
	"net/http"

	"skillgap/internal/delivery/http/handler"
	v1 "skillgap/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	health      *handler.HealthHandler
	v1          v1.Handlers
	auth        fiber.Handler
	metrics     http.Handler
	metricsPath string
}

type Option func(*Registry)

// WithAuth guards the API routes. Health and metrics stay open.
func WithAuth(mw fiber.Handler) Option {
	return func(r *Registry) { r.auth = mw }
}

func WithMetrics(path string, h http.Handler) Option {
	return func(r *Registry) {
		r.metricsPath = path
		r.metrics = h
	}
}

func NewRegistry(health *handler.HealthHandler, handlers v1.Handlers, opts ...Option) *Registry {
	r := &Registry{health: health, v1: handlers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.metrics == nil || r.metricsPath == "" {
		return
	}
	app.Get(r.metricsPath, adaptor.HTTPHandler(r.metrics))
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1, r.auth)
}
