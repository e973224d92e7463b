// Package seed loads the demo campus directory, accounts and study materials.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

//go:embed data.yaml
var defaultData []byte

const passwordCost = 10

// Data is the seed file layout.
type Data struct {
	Departments []Department `yaml:"departments"`
	Users       []User       `yaml:"users"`
	Resources   []Resource   `yaml:"resources"`
}

// Department is a seeded campus location.
type Department struct {
	Name          string   `yaml:"name"`
	Code          string   `yaml:"code"`
	Description   string   `yaml:"description"`
	Latitude      float64  `yaml:"latitude"`
	Longitude     float64  `yaml:"longitude"`
	Building      string   `yaml:"building"`
	Floor         *int     `yaml:"floor"`
	Rooms         []string `yaml:"rooms"`
	Phone         string   `yaml:"phone"`
	Email         string   `yaml:"email"`
	HODName       string   `yaml:"hodName"`
	HODEmail      string   `yaml:"hodEmail"`
	VisitingHours string   `yaml:"visitingHours"`
	Photo360Link  string   `yaml:"photo360Link"`
}

// User is a seeded account with a plain-text password.
type User struct {
	Name     string          `yaml:"name"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Role     models.UserRole `yaml:"role"`
}

// Resource is a seeded study material.
type Resource struct {
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	Department  string                `yaml:"department"`
	FileURL     string                `yaml:"fileUrl"`
	FileType    string                `yaml:"fileType"`
	Category    string                `yaml:"category"`
	Semester    *int                  `yaml:"semester"`
	Subject     string                `yaml:"subject"`
	Tags        []string              `yaml:"tags"`
	Status      models.ResourceStatus `yaml:"status"`
}

// Summary counts what a run inserted and skipped.
type Summary struct {
	Departments int
	Users       int
	Resources   int
	Skipped     int
}

// Default returns the bundled MMMUT data set.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes a seed file.
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

type departmentWriter interface {
	Create(ctx context.Context, department *models.Department) error
}

type userWriter interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type resourceWriter interface {
	Create(ctx context.Context, resource *models.Resource) error
	UpdateStatus(ctx context.Context, id string, status models.ResourceStatus, verified bool) (*models.Resource, error)
}

// Seeder writes seed data through the repositories.
type Seeder struct {
	departments departmentWriter
	users       userWriter
	resources   resourceWriter
	logger      *zap.Logger
}

// NewSeeder builds a seeder.
func NewSeeder(departments departmentWriter, users userWriter, resources resourceWriter, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{departments: departments, users: users, resources: resources, logger: logger}
}

// Reset empties the seeded tables.
func Reset(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE audit_logs, resources, departments, users RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}
	return nil
}

// Run inserts everything in data. Existing departments and users are skipped, so
// the run can be repeated; resources are only added for an uploader created in
// this run. Failures are collected and returned together.
func (s *Seeder) Run(ctx context.Context, data *Data) (Summary, error) {
	var (
		summary  Summary
		finalErr error
	)

	for _, d := range data.Departments {
		department := d.model()
		err := s.departments.Create(ctx, department)
		switch {
		case err == nil:
			summary.Departments++
		case errors.Is(err, appErrors.ErrConflict):
			summary.Skipped++
			s.logger.Info("department exists, skipped", zap.String("code", department.Code))
		default:
			finalErr = errors.Join(finalErr, fmt.Errorf("department %s: %w", d.Code, err))
		}
	}

	var (
		uploaderID  string
		freshUpload bool
	)
	for _, u := range data.Users {
		user, created, err := s.ensureUser(ctx, u)
		if err != nil {
			finalErr = errors.Join(finalErr, fmt.Errorf("user %s: %w", u.Email, err))
			continue
		}
		if created {
			summary.Users++
		} else {
			summary.Skipped++
		}
		if uploaderID == "" && user.Role == models.RoleUser {
			uploaderID, freshUpload = user.ID, created
		}
	}

	if !freshUpload {
		if len(data.Resources) > 0 {
			s.logger.Info("uploader already existed, resources skipped", zap.Int("resources", len(data.Resources)))
			summary.Skipped += len(data.Resources)
		}
		return summary, finalErr
	}

	for _, r := range data.Resources {
		resource := r.model(uploaderID)
		if err := s.resources.Create(ctx, resource); err != nil {
			finalErr = errors.Join(finalErr, fmt.Errorf("resource %q: %w", r.Title, err))
			continue
		}
		if r.Status == models.ResourceApproved {
			if _, err := s.resources.UpdateStatus(ctx, resource.ID, models.ResourceApproved, true); err != nil {
				finalErr = errors.Join(finalErr, fmt.Errorf("approve resource %q: %w", r.Title, err))
				continue
			}
		}
		summary.Resources++
	}
	return summary, finalErr
}

func (s *Seeder) ensureUser(ctx context.Context, u User) (*models.User, bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), passwordCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Name: u.Name, Email: u.Email, PasswordHash: string(hash), Role: u.Role}
	err = s.users.Create(ctx, user)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, appErrors.ErrConflict) {
		return nil, false, err
	}

	existing, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, fmt.Errorf("load existing user: %w", err)
	}
	return existing, false, nil
}

func (d Department) model() *models.Department {
	return &models.Department{
		Code:          d.Code,
		Name:          d.Name,
		Description:   d.Description,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		Building:      d.Building,
		Floor:         d.Floor,
		Rooms:         pq.StringArray(d.Rooms),
		Phone:         d.Phone,
		Email:         d.Email,
		HODName:       d.HODName,
		HODEmail:      d.HODEmail,
		VisitingHours: d.VisitingHours,
		MapLink:       fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.4f&mlon=%.4f#map=18/%.4f/%.4f", d.Latitude, d.Longitude, d.Latitude, d.Longitude),
		Photo360Link:  d.Photo360Link,
	}
}

func (r Resource) model(uploaderID string) *models.Resource {
	return &models.Resource{
		Title:       r.Title,
		Description: r.Description,
		Department:  r.Department,
		FileURL:     r.FileURL,
		Tags:        pq.StringArray(r.Tags),
		FileType:    r.FileType,
		Category:    r.Category,
		Semester:    r.Semester,
		Subject:     r.Subject,
		UploadedBy:  &uploaderID,
	}
}
