package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// CatalogRepository persists imported semester catalogs across the
// catalogs, catalog_entries and catalog_segments tables.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the catalog header row, assigning id and timestamps when
// missing.
func (r *CatalogRepository) Create(ctx context.Context, exec sqlx.ExtContext, catalog *models.Catalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog payload is nil")
	}
	if catalog.ID == "" {
		catalog.ID = uuid.NewString()
	}
	if catalog.CreatedAt.IsZero() {
		catalog.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO catalogs (id, title, min_date, max_date, created_by, created_at) VALUES (:id, :title, :min_date, :max_date, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, catalog); err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}
	return nil
}

// InsertEntries stores one row per cohort, subject and class.
func (r *CatalogRepository) InsertEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	const query = `INSERT INTO catalog_entries (id, catalog_id, position, major, subject, class_code, teacher) VALUES (:id, :catalog_id, :position, :major, :subject, :class_code, :teacher)`
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entries[i]); err != nil {
			return fmt.Errorf("insert catalog entry %s/%s/%s: %w", entries[i].Major, entries[i].Subject, entries[i].ClassCode, err)
		}
	}
	return nil
}

// InsertSegments stores the weekly blocks of every class.
func (r *CatalogRepository) InsertSegments(ctx context.Context, exec sqlx.ExtContext, segments []models.CatalogSegment) error {
	if len(segments) == 0 {
		return nil
	}
	target := r.exec(exec)
	const query = `INSERT INTO catalog_segments (id, catalog_id, subject, class_code, position, start_date, end_date, weekday, start_session, end_session) VALUES (:id, :catalog_id, :subject, :class_code, :position, :start_date, :end_date, :weekday, :start_session, :end_session)`
	for i := range segments {
		if segments[i].ID == "" {
			segments[i].ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, segments[i]); err != nil {
			return fmt.Errorf("insert catalog segment %s/%s: %w", segments[i].Subject, segments[i].ClassCode, err)
		}
	}
	return nil
}

// List returns a page of catalogs, newest first, with their entry counts.
func (r *CatalogRepository) List(ctx context.Context, limit, offset int) ([]models.CatalogSummary, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM catalogs`); err != nil {
		return nil, 0, fmt.Errorf("count catalogs: %w", err)
	}

	const query = `SELECT c.id, c.title, c.min_date, c.max_date, c.created_by, c.created_at, COUNT(DISTINCT e.major) AS majors, COUNT(DISTINCT e.subject) AS subjects, COUNT(DISTINCT (e.subject, e.class_code)) AS classes FROM catalogs c LEFT JOIN catalog_entries e ON e.catalog_id = c.id GROUP BY c.id ORDER BY c.created_at DESC, c.id LIMIT $1 OFFSET $2`
	var catalogs []models.CatalogSummary
	if err := r.db.SelectContext(ctx, &catalogs, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list catalogs: %w", err)
	}
	return catalogs, total, nil
}

// FindByID loads a catalog header. Missing rows return sql.ErrNoRows.
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*models.Catalog, error) {
	const query = `SELECT id, title, min_date, max_date, created_by, created_at FROM catalogs WHERE id = $1`
	var catalog models.Catalog
	if err := r.db.GetContext(ctx, &catalog, query, id); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ListEntries returns the catalog's entries in import order.
func (r *CatalogRepository) ListEntries(ctx context.Context, catalogID string) ([]models.CatalogEntry, error) {
	const query = `SELECT id, catalog_id, position, major, subject, class_code, teacher FROM catalog_entries WHERE catalog_id = $1 ORDER BY position`
	var entries []models.CatalogEntry
	if err := r.db.SelectContext(ctx, &entries, query, catalogID); err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	return entries, nil
}

// ListSegments returns the catalog's segments in import order.
func (r *CatalogRepository) ListSegments(ctx context.Context, catalogID string) ([]models.CatalogSegment, error) {
	const query = `SELECT id, catalog_id, subject, class_code, position, start_date, end_date, weekday, start_session, end_session FROM catalog_segments WHERE catalog_id = $1 ORDER BY position`
	var segments []models.CatalogSegment
	if err := r.db.SelectContext(ctx, &segments, query, catalogID); err != nil {
		return nil, fmt.Errorf("list catalog segments: %w", err)
	}
	return segments, nil
}

// Delete removes a catalog with its entries and segments.
func (r *CatalogRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM catalog_segments WHERE catalog_id = $1`, id); err != nil {
		return fmt.Errorf("delete catalog segments: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM catalog_entries WHERE catalog_id = $1`, id); err != nil {
		return fmt.Errorf("delete catalog entries: %w", err)
	}
	result, err := target.ExecContext(ctx, `DELETE FROM catalogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete catalog: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Ping checks database connectivity.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
