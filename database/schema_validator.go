package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// RequiredClosetColumns are the columns the closet store reads and writes
var RequiredClosetColumns = []string{
	"id", "brand", "product_id", "title", "image_url", "source_url", "category",
	"color_code", "color_name", "color_image_url", "created_at", "updated_at",
}

// ValidationResult describes one table's compatibility with the code
type ValidationResult struct {
	TableName      string
	Exists         bool
	MissingColumns []string
}

// Valid reports whether the table exists with every required column
func (r *ValidationResult) Valid() bool {
	return r.Exists && len(r.MissingColumns) == 0
}

// SchemaValidator checks the live schema against the columns the services expect
type SchemaValidator struct {
	db *sql.DB
}

// NewSchemaValidator creates a validator for db
func NewSchemaValidator(db *sql.DB) *SchemaValidator {
	return &SchemaValidator{db: db}
}

// ValidateTable reports which of the required columns are missing from tableName
func (v *SchemaValidator) ValidateTable(tableName string, required []string) (*ValidationResult, error) {
	result := &ValidationResult{TableName: tableName}

	exists, err := v.tableExists(tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}
	result.Exists = exists
	if !exists {
		result.MissingColumns = append(result.MissingColumns, required...)
		return result, nil
	}

	columns, err := v.getTableColumns(tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}

	for _, column := range required {
		if _, ok := columns[column]; !ok {
			result.MissingColumns = append(result.MissingColumns, column)
		}
	}
	sort.Strings(result.MissingColumns)

	return result, nil
}

// ValidateClosetSchema checks the closet_items table after migration
func ValidateClosetSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection not established")
	}

	result, err := NewSchemaValidator(DB).ValidateTable("closet_items", RequiredClosetColumns)
	if err != nil {
		return err
	}

	if !result.Valid() {
		logrus.WithFields(logrus.Fields{
			"table":           result.TableName,
			"exists":          result.Exists,
			"missing_columns": result.MissingColumns,
		}).Warn("Schema validation found issues")
		return fmt.Errorf("table %s is not compatible: missing columns %v", result.TableName, result.MissingColumns)
	}

	logrus.WithField("table", result.TableName).Info("Schema validation passed")
	return nil
}

func (v *SchemaValidator) tableExists(tableName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`
	var exists bool
	err := v.db.QueryRow(query, tableName).Scan(&exists)
	return exists, err
}

// getTableColumns returns a map of column names to their data types
func (v *SchemaValidator) getTableColumns(tableName string) (map[string]string, error) {
	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`
	rows, err := v.db.Query(query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var columnName, dataType string
		if err := rows.Scan(&columnName, &dataType); err != nil {
			return nil, err
		}
		columns[columnName] = dataType
	}

	return columns, rows.Err()
}
