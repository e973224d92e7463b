package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-connect-api/internal/models"
)

// DepartmentRepository persists campus locations.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns departments sorted by name.
func (r *DepartmentRepository) List(ctx context.Context, limit int) ([]models.Department, error) {
	query := fmt.Sprintf(`SELECT %s FROM departments ORDER BY name ASC LIMIT %d`, models.DepartmentColumns, clampLimit(limit, 50))
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID returns a department by identifier.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	query := `SELECT ` + models.DepartmentColumns + ` FROM departments WHERE id = $1 LIMIT 1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find department by id: %w", err)
	}
	return &department, nil
}

// Resolve finds the department a free-text fragment refers to. An exact code match wins over
// a partial case-insensitive name match.
func (r *DepartmentRepository) Resolve(ctx context.Context, term string) (*models.Department, error) {
	term = strings.TrimSpace(term)
	query := `SELECT ` + models.DepartmentColumns + ` FROM departments
WHERE UPPER(code) = UPPER($1) OR name ILIKE $2
ORDER BY (UPPER(code) = UPPER($1)) DESC, search_count DESC, name ASC
LIMIT 1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, term, containsPattern(term)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve department %q: %w", term, err)
	}
	return &department, nil
}

// Search returns departments whose code or name contains term.
func (r *DepartmentRepository) Search(ctx context.Context, term string, limit int) ([]models.Department, error) {
	query := fmt.Sprintf(`SELECT %s FROM departments WHERE name ILIKE $1 OR code ILIKE $1 ORDER BY name ASC LIMIT %d`, models.DepartmentColumns, clampLimit(limit, 20))
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query, containsPattern(strings.TrimSpace(term))); err != nil {
		return nil, fmt.Errorf("search departments: %w", err)
	}
	return departments, nil
}

// Create inserts a department. Duplicate code or name yields a conflict error.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	department.CreatedAt = now
	department.UpdatedAt = now
	department.Code = strings.ToUpper(strings.TrimSpace(department.Code))
	if department.Rooms == nil {
		department.Rooms = pq.StringArray{}
	}

	const query = `INSERT INTO departments (id, code, name, description, latitude, longitude, building, floor, rooms, phone, email, hod_name, hod_email, hod_phone, visiting_hours, map_link, photo_360_link, search_count, created_at, updated_at)
VALUES (:id, :code, :name, :description, :latitude, :longitude, :building, :floor, :rooms, :phone, :email, :hod_name, :hod_email, :hod_phone, :visiting_hours, :map_link, :photo_360_link, :search_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		if conflict, ok := uniqueViolation(err, departmentValues(department)); ok {
			return conflict
		}
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update writes every mutable column of the department. Missing rows surface as sql.ErrNoRows.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	department.Code = strings.ToUpper(strings.TrimSpace(department.Code))
	if department.Rooms == nil {
		department.Rooms = pq.StringArray{}
	}

	const query = `UPDATE departments SET code = :code, name = :name, description = :description, latitude = :latitude, longitude = :longitude,
building = :building, floor = :floor, rooms = :rooms, phone = :phone, email = :email, hod_name = :hod_name, hod_email = :hod_email,
hod_phone = :hod_phone, visiting_hours = :visiting_hours, map_link = :map_link, photo_360_link = :photo_360_link, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, department)
	if err != nil {
		if conflict, ok := uniqueViolation(err, departmentValues(department)); ok {
			return conflict
		}
		return fmt.Errorf("update department: %w", err)
	}
	return requireAffected(res, "update department")
}

// Delete removes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return requireAffected(res, "delete department")
}

// IncrementSearchCount bumps the lookup counter of the given departments.
func (r *DepartmentRepository) IncrementSearchCount(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE departments SET search_count = search_count + 1 WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("increment department search count: %w", err)
	}
	return nil
}

func departmentValues(d *models.Department) map[string]string {
	return map[string]string{"code": d.Code, "name": d.Name}
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere, with wildcards in term escaped.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
