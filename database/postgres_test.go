package database

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSQLStatements(t *testing.T) {
	content := `-- leading comment
CREATE TABLE a (id INT);

-- multi-line statement
CREATE INDEX idx_a ON a (id)
    WHERE id > 0;
SELECT 1`

	assert.Equal(t, []string{
		"CREATE TABLE a (id INT)",
		"CREATE INDEX idx_a ON a (id) WHERE id > 0",
		"SELECT 1",
	}, parseSQLStatements(content))

	assert.Empty(t, parseSQLStatements("-- only comments\n\n"))
}

func TestParseSchemaFile(t *testing.T) {
	content, err := os.ReadFile("schema.sql")
	require.NoError(t, err)

	statements := parseSQLStatements(string(content))
	require.Len(t, statements, 4)
	assert.True(t, strings.HasPrefix(statements[0], "CREATE TABLE IF NOT EXISTS closet_items"))
	for _, column := range RequiredClosetColumns {
		assert.Contains(t, statements[0], column+" ", column)
	}
	assert.Contains(t, statements[3], "WHERE title IS NULL")
}

func TestValidationResultValid(t *testing.T) {
	assert.True(t, (&ValidationResult{TableName: "closet_items", Exists: true}).Valid())
	assert.False(t, (&ValidationResult{TableName: "closet_items"}).Valid())
	assert.False(t, (&ValidationResult{TableName: "closet_items", Exists: true, MissingColumns: []string{"category"}}).Valid())
}

func TestMigrateAndValidateSchema(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping schema tests - TEST_DATABASE_URL not set")
	}
	if err := Connect(dbURL); err != nil {
		t.Skipf("Skipping schema tests - database not available: %v", err)
	}
	defer Close()

	require.NoError(t, Migrate("schema.sql"))
	require.NoError(t, Migrate("schema.sql"), "migration must be re-runnable")
	require.NoError(t, ValidateClosetSchema())
	require.NoError(t, HealthCheck())

	result, err := NewSchemaValidator(DB).ValidateTable("no_such_table", []string{"id"})
	require.NoError(t, err)
	assert.False(t, result.Exists)
	assert.Equal(t, []string{"id"}, result.MissingColumns)
}

func TestDatabaseNotConnected(t *testing.T) {
	previous := DB
	DB = nil
	defer func() { DB = previous }()

	assert.Error(t, Migrate("schema.sql"))
	assert.Error(t, ValidateClosetSchema())
	assert.Error(t, HealthCheck())
	assert.Zero(t, GetConnectionStats().OpenConnections)
}
