package migrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_init_schema_migrations.sql", true, 1, "init_schema_migrations"},
		{"0012_add_macro.sql", true, 12, "add_macro"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := ParseFilename(tt.filename)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("CREATE TABLE test (id INT64);"))
	assert.Equal(t, a, Checksum([]byte("CREATE TABLE test (id INT64);")))
	assert.NotEqual(t, a, Checksum([]byte("CREATE TABLE different (id INT64);")))
	assert.Len(t, a, 64)
}

func TestReadMigrations(t *testing.T) {
	raw := "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.customers` (customer_id INT64);"
	fsys := fstest.MapFS{
		"0002_create_transactions.sql": {Data: []byte("SELECT 2;")},
		"0001_create_customers.sql":    {Data: []byte(raw)},
		"README.md":                    {Data: []byte("docs")},
		"archive/0003_old.sql":         {Data: []byte("SELECT 3;")},
	}

	got, err := ReadMigrations(context.Background(), fsys, "proj", "synth")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "create_customers", got[0].Name)
	assert.Equal(t, "CREATE TABLE `proj.synth.customers` (customer_id INT64);", got[0].SQL)
	assert.Equal(t, Checksum([]byte(raw)), got[0].Checksum, "checksum ignores placeholder values")
	assert.Equal(t, 2, got[1].Version)
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1;")},
		"0001_b.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := ReadMigrations(context.Background(), fsys, "p", "d")
	assert.Error(t, err)
}

func TestPending(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "a", Checksum: "c1"},
		{Version: 2, Name: "b", Checksum: "c2"},
		{Version: 3, Name: "c", Checksum: "c3"},
	}
	applied := []AppliedMigration{
		{Version: 1, Checksum: "c1"},
		{Version: 2, Checksum: "changed"},
	}

	got := Pending(context.Background(), migrations, applied)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Version)

	assert.Len(t, Pending(context.Background(), migrations, nil), 3)
}

func TestIsNotFound(t *testing.T) {
	notFound := &googleapi.Error{Code: http.StatusNotFound, Message: "Not found: Table proj:synth.schema_migrations"}
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("query: %w", notFound)))
	assert.False(t, IsNotFound(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, IsNotFound(errors.New("Not found")))
}

func TestRepositoryMigrations(t *testing.T) {
	got, err := ReadMigrations(context.Background(), os.DirFS("../../migrations/bigquery"), "proj", "synth")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i, m := range got {
		assert.Equal(t, i+1, m.Version, "versions must be contiguous")
		assert.NotContains(t, m.SQL, "{{")
	}
}
