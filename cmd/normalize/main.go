// Command normalize maps raw skill strings onto the taxonomy without running
// the HTTP server. Skills come from the arguments, or one per line on stdin.
//
//	normalize -snapshot taxonomy.json "Pythn" "project mgmt"
//	cat skills.txt | normalize -db -threshold 0.8
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"skillgap/internal/config"
	dbpostgres "skillgap/internal/database/postgres"
	"skillgap/internal/database/seeder"
	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/infrastructure/cache"
	"skillgap/internal/pkg/logger"
	"skillgap/internal/repository"
	"skillgap/internal/repository/memory"
	"skillgap/internal/usecase"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, log); err != nil {
		log.WithError(err).Fatal("normalize failed")
	}
}

type options struct {
	snapshot   string
	useDB      bool
	threshold  float64
	maxMatches int
	hierarchy  bool
	cluster    bool
	timeout    time.Duration
}

func parseFlags(args []string) (options, []string, error) {
	var o options
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.snapshot, "snapshot", "", "taxonomy snapshot JSON file (default: built-in taxonomy)")
	fs.BoolVar(&o.useDB, "db", false, "read the taxonomy from the configured database")
	fs.Float64Var(&o.threshold, "threshold", usecase.DefaultConfidenceThreshold, "confidence threshold in [0,1]")
	fs.IntVar(&o.maxMatches, "max-matches", usecase.DefaultMaxMatches, "candidates kept per skill")
	fs.BoolVar(&o.hierarchy, "hierarchy", true, "resolve category/subcategory/group for candidates")
	fs.BoolVar(&o.cluster, "cluster", false, "group near-duplicate inputs instead of normalizing")
	fs.DurationVar(&o.timeout, "timeout", time.Minute, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}

	if o.threshold < 0 || o.threshold > 1 {
		return options{}, nil, errors.Errorf("threshold must be within [0,1], got %v", o.threshold)
	}
	if o.useDB && o.snapshot != "" {
		return options{}, nil, errors.New("-db and -snapshot are mutually exclusive")
	}
	return o, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, log *logrus.Logger) error {
	opts, skills, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		if skills, err = readLines(stdin); err != nil {
			return err
		}
	}
	if len(skills) == 0 {
		return errors.New("no raw skills given")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	repo, normCache, closeFn, err := openTaxonomy(ctx, opts, log)
	if err != nil {
		return err
	}
	defer closeFn()

	normalizer := usecase.NewNormalizer(repo, normCache, usecase.NormalizeOptions{}, nil, log)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if opts.cluster {
		return enc.Encode(dto.ClusterResponse{Clusters: normalizer.ClusterSkills(skills, 0)})
	}

	results := normalizer.NormalizeSkills(ctx, skills, usecase.NormalizeOptions{
		ConfidenceThreshold: &opts.threshold,
		MaxMatches:          opts.maxMatches,
		IncludeHierarchy:    &opts.hierarchy,
	})
	return enc.Encode(dto.NewNormalizeResponse(results))
}

// openTaxonomy returns the store to normalize against. The database mode also
// uses the Redis cache when one is configured.
func openTaxonomy(ctx context.Context, opts options, log *logrus.Logger) (repository.TaxonomyRepository, usecase.NormalizationCache, func(), error) {
	if opts.useDB {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, nil, err
		}
		log.SetLevel(logger.New(cfg.App, cfg.Log).GetLevel())

		db, err := dbpostgres.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "connect database")
		}
		rc := cache.NewRedis(cfg.Redis, log)
		closeFn := func() {
			_ = rc.Close()
			_ = db.Close()
		}
		return repository.NewPostgresTaxonomyRepository(db), rc, closeFn, nil
	}

	snap, err := loadSnapshot(opts.snapshot)
	if err != nil {
		return nil, nil, nil, err
	}
	tree, err := snap.Flatten()
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("items", len(tree.Items)).Debug("taxonomy snapshot loaded")
	return memory.NewTaxonomyFromTree(tree), nil, func() {}, nil
}

func loadSnapshot(path string) (taxonomy.Snapshot, error) {
	if path == "" {
		return seeder.DefaultSnapshot()
	}
	f, err := os.Open(path)
	if err != nil {
		return taxonomy.Snapshot{}, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()
	return taxonomy.ParseSnapshot(f)
}

func readLines(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, nil
	}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, errors.Wrap(sc.Err(), "read stdin")
}
