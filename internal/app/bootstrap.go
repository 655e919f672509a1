package app

import (
	"strings"

	"skillgap/internal/config"
	"skillgap/internal/delivery/http/handler"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/delivery/http/routes"
	v1 "skillgap/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app on top of an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config, logger logrus.FieldLogger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger logrus.FieldLogger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger.WithField("component", "http")).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger.WithField("component", "http")).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	handlers := v1.Handlers{
		Normalize:           handler.NewNormalizeHandler(c.Normalizer),
		Taxonomy:            handler.NewTaxonomyHandler(c.Taxonomy),
		EmployeeSkill:       handler.NewEmployeeSkillHandler(c.EmployeeSkills),
		PositionRequirement: handler.NewPositionRequirementHandler(c.PositionRequirements),
		GapAnalysis:         handler.NewGapAnalysisHandler(c.GapAnalysis),
	}

	var opts []routes.Option
	if c.JWT != nil {
		opts = append(opts, routes.WithAuth(middleware.NewAuthMiddleware(c.JWT).Middleware()))
	}
	if c.Metrics != nil {
		opts = append(opts, routes.WithMetrics(c.Config.Metrics.Path, c.Metrics.Handler()))
	}

	var db, cachePinger handler.Pinger
	if c.DB != nil {
		db = c.DB
	}
	if c.Cache != nil && !c.Config.Redis.Disabled {
		cachePinger = c.Cache
	}

	routes.NewRegistry(handler.NewHealthHandler(db, cachePinger), handlers, opts...).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", errors.New("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
