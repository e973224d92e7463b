package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-connect-api/internal/models"
)

// ResourceRepository persists study materials and their moderation state.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs a ResourceRepository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// List returns resources matching the filter, newest first.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	status := filter.Status
	if status == "" {
		status = models.ResourceApproved
	}
	conditions := []string{"status = $1"}
	args := []interface{}{string(status)}

	if dept := strings.TrimSpace(filter.Department); dept != "" {
		switch {
		case filter.ExactDept:
			conditions = append(conditions, fmt.Sprintf("LOWER(department) = LOWER($%d)", len(args)+1))
			args = append(args, dept)
		case filter.DeptWord:
			conditions = append(conditions, fmt.Sprintf("department ~* $%d", len(args)+1))
			args = append(args, wordPattern(dept))
		default:
			conditions = append(conditions, fmt.Sprintf("department ILIKE $%d", len(args)+1))
			args = append(args, containsPattern(dept))
		}
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR subject ILIKE $%d OR array_to_string(tags, ' ') ILIKE $%d)", n, n, n))
		args = append(args, containsPattern(keyword))
	}

	query := fmt.Sprintf(`SELECT %s FROM resources WHERE %s ORDER BY created_at DESC LIMIT %d`,
		models.ResourceColumns, strings.Join(conditions, " AND "), clampLimit(filter.Limit, 50))
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// wordPattern builds a Postgres regex matching term as a whole word.
func wordPattern(term string) string {
	return `\m` + regexp.QuoteMeta(term) + `\M`
}

// Create inserts a new resource. New resources always start pending and unverified.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now
	resource.Status = models.ResourcePending
	resource.IsVerified = false
	if resource.Tags == nil {
		resource.Tags = pq.StringArray{}
	}

	const query = `INSERT INTO resources (id, title, description, department, file_url, tags, file_type, category, semester, subject, uploaded_by, status, is_verified, views, downloads, rating, rating_count, created_at, updated_at)
VALUES (:id, :title, :description, :department, :file_url, :tags, :file_type, :category, :semester, :subject, :uploaded_by, :status, :is_verified, :views, :downloads, :rating, :rating_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// ListForModeration returns resources of any status joined with their uploader.
func (r *ResourceRepository) ListForModeration(ctx context.Context, status models.ResourceStatus, limit int) ([]models.ModerationItem, error) {
	columns := make([]string, 0, 20)
	for _, col := range strings.Split(models.ResourceColumns, ",") {
		columns = append(columns, "r."+strings.TrimSpace(col))
	}
	query := `SELECT ` + strings.Join(columns, ", ") + `, u.name AS uploader_name, u.email AS uploader_email
FROM resources r LEFT JOIN users u ON u.id = r.uploaded_by`
	var args []interface{}
	if status != "" {
		query += ` WHERE r.status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY r.created_at DESC LIMIT %d`, clampLimit(limit, 100))

	var items []models.ModerationItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list moderation queue: %w", err)
	}
	return items, nil
}

// UpdateStatus moves a resource to a new moderation state and returns the stored row.
func (r *ResourceRepository) UpdateStatus(ctx context.Context, id string, status models.ResourceStatus, verified bool) (*models.Resource, error) {
	query := `UPDATE resources SET status = $2, is_verified = $3, updated_at = $4 WHERE id = $1 RETURNING ` + models.ResourceColumns
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id, string(status), verified, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update resource status: %w", err)
	}
	return &resource, nil
}

// Delete removes a resource and returns what was deleted.
func (r *ResourceRepository) Delete(ctx context.Context, id string) (*models.Resource, error) {
	query := `DELETE FROM resources WHERE id = $1 RETURNING ` + models.ResourceColumns
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("delete resource: %w", err)
	}
	return &resource, nil
}
