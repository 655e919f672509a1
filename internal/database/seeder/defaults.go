package seeder

import (
	"bytes"
	_ "embed"

	"skillgap/internal/domain/taxonomy"

	"github.com/sirupsen/logrus"
)

//go:embed data/taxonomy.json
var defaultTaxonomy []byte

// DefaultSnapshot is the curated taxonomy shipped with the binary.
func DefaultSnapshot() (taxonomy.Snapshot, error) {
	return taxonomy.ParseSnapshot(bytes.NewReader(defaultTaxonomy))
}

func Defaults(cache CacheInvalidator, logger logrus.FieldLogger) []Seeder {
	return []Seeder{
		TaxonomySeeder{Cache: cache, Logger: logger},
	}
}
