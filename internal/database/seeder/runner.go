package seeder

import (
	"context"
	"time"

	"skillgap/internal/database"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Runner struct {
	Seeders []Seeder
	Logger  logrus.FieldLogger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return errors.Wrapf(err, "seed %s", s.Name())
		}
		logger.WithFields(logrus.Fields{
			"seeder":   s.Name(),
			"duration": time.Since(start).String(),
		}).Info("seeder finished")
	}
	return nil
}
