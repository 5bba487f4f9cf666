package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/mateatletas/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestEmbeddedMigrations_CreateReadTables(t *testing.T) {
	var schema strings.Builder
	err := fs.WalkDir(migrations.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return err
		}
		body, err := fs.ReadFile(migrations.FS, path)
		if err != nil {
			return err
		}
		schema.Write(body)
		return nil
	})
	require.NoError(t, err)

	for _, table := range []string{"tutores", "estudiantes", "inscripciones_mensuales"} {
		assert.Contains(t, schema.String(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema.String(), "fecha_vencimiento")
}
