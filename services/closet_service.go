package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductExtractor produces a product record for a brand and product ID
type ProductExtractor interface {
	Extract(ctx context.Context, brand, productID string) (*models.ProductRecord, error)
}

// ImportClosetItemRequest is the payload for adding a product to the closet
type ImportClosetItemRequest struct {
	Brand     string `json:"brand"`
	ProductID string `json:"productId"`
	ColorCode string `json:"colorCode,omitempty"`
}

const closetItemColumns = `id, brand, product_id, title, image_url, source_url, category,
              color_code, color_name, color_image_url, created_at, updated_at`

// ClosetService stores extracted products as closet items
type ClosetService struct {
	DB        *sql.DB
	extractor ProductExtractor
	metrics   *shared.ServiceMetrics
}

// NewClosetService creates a closet store backed by db
func NewClosetService(db *sql.DB, extractor ProductExtractor) *ClosetService {
	return &ClosetService{
		DB:        db,
		extractor: extractor,
		metrics:   shared.NewServiceMetrics("ClosetService"),
	}
}

// GetServiceMetrics returns the store's operation metrics
func (s *ClosetService) GetServiceMetrics() *shared.ServiceMetrics {
	return s.metrics
}

// Import extracts the product and stores it with the requested color, or its first color
func (s *ClosetService) Import(ctx context.Context, req ImportClosetItemRequest) (*models.ClosetItem, error) {
	start := time.Now()

	record, err := s.extractor.Extract(ctx, req.Brand, req.ProductID)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	color, err := selectColor(record, strings.TrimSpace(req.ColorCode))
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.ClosetItem{
		ID:        uuid.New(),
		Brand:     record.Brand,
		ProductID: record.ProductID,
		Title:     record.Title,
		ImageURL:  record.ImageURL,
		SourceURL: record.SourceURL,
		Category:  record.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyColor(item, color)

	query := `INSERT INTO closet_items (` + closetItemColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.DB.ExecContext(ctx, query,
		item.ID, item.Brand, item.ProductID, item.Title, item.ImageURL, item.SourceURL, item.Category,
		item.ColorCode, item.ColorName, item.ColorURL, item.CreatedAt, item.UpdatedAt,
	)
	s.metrics.RecordRequest(err == nil, time.Since(start))
	if err != nil {
		return nil, databaseError("Import", "failed to insert closet item", err)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "ClosetService",
		"method":     "Import",
		"id":         item.ID,
		"brand":      item.Brand,
		"product_id": item.ProductID,
		"category":   item.Category,
	}).Info("Closet item created successfully")

	return item, nil
}

// List returns every closet item, newest first
func (s *ClosetService) List(ctx context.Context) ([]models.ClosetItem, error) {
	query := `SELECT ` + closetItemColumns + ` FROM closet_items ORDER BY created_at DESC`
	return s.queryItems(ctx, query)
}

// ListNeedingRefresh returns items with missing title or image, or no category
func (s *ClosetService) ListNeedingRefresh(ctx context.Context, limit int) ([]models.ClosetItem, error) {
	query := `SELECT ` + closetItemColumns + ` FROM closet_items
              WHERE title IS NULL OR image_url IS NULL OR category = $1
              ORDER BY updated_at ASC LIMIT $2`
	return s.queryItems(ctx, query, models.CategoryUncategorized, limit)
}

// Get returns one item, or a NOT_FOUND error
func (s *ClosetService) Get(ctx context.Context, id uuid.UUID) (*models.ClosetItem, error) {
	query := `SELECT ` + closetItemColumns + ` FROM closet_items WHERE id = $1`

	item, err := scanClosetItem(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.NewNotFoundError("ClosetService", "Get", "Closet item not found")
		}
		return nil, databaseError("Get", "failed to scan closet item", err)
	}
	return item, nil
}

// Delete removes one item, or returns a NOT_FOUND error
func (s *ClosetService) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM closet_items WHERE id = $1`, id)
	if err != nil {
		return databaseError("Delete", "failed to delete closet item", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return databaseError("Delete", "failed to read deleted rows", err)
	}
	if affected == 0 {
		return shared.NewNotFoundError("ClosetService", "Delete", "Closet item not found")
	}

	logrus.WithFields(logrus.Fields{
		"component": "ClosetService",
		"method":    "Delete",
		"id":        id,
	}).Info("Closet item deleted")
	return nil
}

// Refresh re-extracts an item's product and stores any newly available metadata.
// Known fields are never overwritten with empty values.
func (s *ClosetService) Refresh(ctx context.Context, item *models.ClosetItem) (bool, error) {
	record, err := s.extractor.Extract(ctx, string(item.Brand), item.ProductID)
	if err != nil {
		return false, err
	}

	updated := *item
	if record.Title != nil {
		updated.Title = record.Title
	}
	if record.ImageURL != nil {
		updated.ImageURL = record.ImageURL
	}
	if record.Category != models.CategoryUncategorized {
		updated.Category = record.Category
	}
	if item.ColorCode != nil {
		if color, ok := record.FindColor(*item.ColorCode); ok {
			applyColor(&updated, &color)
		}
	}

	if !closetMetadataChanged(item, &updated) {
		return false, nil
	}

	updated.UpdatedAt = time.Now().UTC()
	query := `UPDATE closet_items SET title = $2, image_url = $3, category = $4,
              color_name = $5, color_image_url = $6, updated_at = $7 WHERE id = $1`
	_, err = s.DB.ExecContext(ctx, query,
		updated.ID, updated.Title, updated.ImageURL, updated.Category,
		updated.ColorName, updated.ColorURL, updated.UpdatedAt,
	)
	if err != nil {
		return false, databaseError("Refresh", "failed to update closet item", err)
	}

	*item = updated
	return true, nil
}

func (s *ClosetService) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.ClosetItem, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, databaseError("queryItems", "failed to query closet items", err)
	}
	defer rows.Close()

	items := make([]models.ClosetItem, 0)
	for rows.Next() {
		item, err := scanClosetItem(rows)
		if err != nil {
			return nil, databaseError("queryItems", "failed to scan closet item row", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, databaseError("queryItems", "failed to iterate closet items", err)
	}
	return items, nil
}

// databaseError wraps a storage failure as a logged DATABASE_FAILURE service error
func databaseError(operation, action string, err error) *shared.ServiceError {
	serviceErr := shared.WrapError(fmt.Errorf("%s: %w", action, err),
		shared.ErrorCategoryDatabase, shared.CodeDatabaseFailure, "ClosetService", operation, shared.IsRetryableError(err))
	serviceErr.LogError()
	return serviceErr
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClosetItem(row rowScanner) (*models.ClosetItem, error) {
	var item models.ClosetItem
	err := row.Scan(
		&item.ID, &item.Brand, &item.ProductID, &item.Title, &item.ImageURL, &item.SourceURL, &item.Category,
		&item.ColorCode, &item.ColorName, &item.ColorURL, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// selectColor picks the requested color, the first color, or none
func selectColor(record *models.ProductRecord, code string) (*models.ColorVariant, error) {
	if code == "" {
		if len(record.Colors) == 0 {
			return nil, nil
		}
		return &record.Colors[0], nil
	}

	color, ok := record.FindColor(code)
	if !ok {
		return nil, shared.NewInvalidInputError("ClosetService", "Import", fmt.Sprintf("Unknown color code %q", code)).
			WithDetails(map[string]interface{}{"available": len(record.Colors)})
	}
	return &color, nil
}

func applyColor(item *models.ClosetItem, color *models.ColorVariant) {
	if color == nil {
		return
	}
	code, name := color.Code, color.Name
	item.ColorCode = &code
	item.ColorName = &name
	if color.ImageURL != "" {
		imageURL := color.ImageURL
		item.ColorURL = &imageURL
	}
}

func closetMetadataChanged(before, after *models.ClosetItem) bool {
	return !sameString(before.Title, after.Title) ||
		!sameString(before.ImageURL, after.ImageURL) ||
		before.Category != after.Category ||
		!sameString(before.ColorName, after.ColorName) ||
		!sameString(before.ColorURL, after.ColorURL)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
