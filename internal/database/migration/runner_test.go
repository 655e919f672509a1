package migration

import (
	"testing"
	"testing/fstest"

	"skillgap/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortsAndChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("  SELECT 1;\n")},
		"README.md":      {Data: []byte("ignored")},
		"V3_bad.sql":     {Data: []byte("ignored")},
	}

	migs, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 2)

	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "first", migs[0].Name)
	assert.Equal(t, "SELECT 1;", migs[0].SQL)
	assert.Len(t, migs[0].Checksum, 64)
	assert.Equal(t, int64(2), migs[1].Version)
}

func TestLoadMigrations_Rejects(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"duplicate version", fstest.MapFS{
			"V1__a.sql": {Data: []byte("SELECT 1;")},
			"V1__b.sql": {Data: []byte("SELECT 1;")},
		}},
		{"empty file", fstest.MapFS{
			"V1__a.sql": {Data: []byte("   ")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrations(tt.fsys)
			assert.Error(t, err)
		})
	}
}

func TestLoadMigrations_NilFS(t *testing.T) {
	migs, err := loadMigrations(nil)
	require.NoError(t, err)
	assert.Empty(t, migs)
}

func TestRunner_FallsBackToEmbeddedSchema(t *testing.T) {
	r := Runner{Dir: t.TempDir() + "/missing", FS: migrations.FS}

	migs, err := loadMigrations(r.source())
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, "skill_taxonomy", migs[0].Name)
	assert.Contains(t, migs[0].SQL, "skill_taxonomy_items")
}
