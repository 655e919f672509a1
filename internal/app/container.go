package app

import (
	"context"
	"time"

	"skillgap/internal/config"
	"skillgap/internal/database"
	"skillgap/internal/database/migration"
	dbpostgres "skillgap/internal/database/postgres"
	"skillgap/internal/database/seeder"
	"skillgap/internal/infrastructure/cache"
	"skillgap/internal/metrics"
	"skillgap/internal/pkg/jwt"
	"skillgap/internal/repository"
	"skillgap/internal/usecase"
	"skillgap/migrations"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const startupTimeout = 30 * time.Second

// Container owns every long-lived dependency of the server.
type Container struct {
	Config  config.Config
	Logger  logrus.FieldLogger
	DB      database.DB
	Cache   *cache.Redis
	Metrics *metrics.Metrics
	JWT     jwt.Service

	Normalizer           usecase.NormalizerUsecase
	Taxonomy             usecase.TaxonomyUsecase
	EmployeeSkills       usecase.EmployeeSkillUsecase
	PositionRequirements usecase.PositionRequirementUsecase
	GapAnalysis          usecase.GapAnalysisUsecase
}

func NewContainer(cfg config.Config, logger logrus.FieldLogger) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	runner := migration.Runner{Dir: cfg.App.MigrationsDir, FS: migrations.FS, Logger: logger.WithField("component", "migration")}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	if cfg.Auth.AccessSecret != "" {
		c.JWT = jwt.NewHMACService(cfg.Auth.AccessSecret, 0)
	} else {
		logger.Warn("JWT_ACCESS_SECRET is empty; API routes are unauthenticated")
	}

	if cfg.App.SeedTaxonomy {
		seeders := seeder.Runner{Seeders: seeder.Defaults(c.Cache, logger), Logger: logger}
		if err := seeders.Run(ctx, db); err != nil {
			_ = c.Close()
			return nil, errors.Wrap(err, "seed taxonomy")
		}
	}

	c.wireUsecases()
	return c, nil
}

func (c *Container) wireUsecases() {
	taxonomyRepo := repository.NewPostgresTaxonomyRepository(c.DB)
	skillRepo := repository.NewPostgresEmployeeSkillRepository(c.DB)
	requirementRepo := repository.NewPostgresPositionRequirementRepository(c.DB)

	threshold := c.Config.Normalizer.ConfidenceThreshold
	defaults := usecase.NormalizeOptions{
		ConfidenceThreshold: &threshold,
		MaxMatches:          c.Config.Normalizer.MaxMatches,
		BatchSize:           c.Config.Normalizer.BatchSize,
	}
	normalizer := usecase.NewNormalizer(taxonomyRepo, c.Cache, defaults, c.Metrics, c.Logger)
	resolver := usecase.NewHierarchyResolver(taxonomyRepo, c.Metrics, c.Logger)

	c.Normalizer = normalizer
	c.Taxonomy = usecase.NewTaxonomyUsecase(taxonomyRepo, resolver, c.Logger)
	c.EmployeeSkills = usecase.NewEmployeeSkillUsecase(skillRepo, taxonomyRepo, normalizer, c.Logger)
	c.PositionRequirements = usecase.NewPositionRequirementUsecase(requirementRepo, taxonomyRepo, c.Logger)
	c.GapAnalysis = usecase.NewGapAnalysisUsecase(c.EmployeeSkills, c.PositionRequirements, c.Metrics, c.Logger)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.WithError(err).Warn("close cache")
		}
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
