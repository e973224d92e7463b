package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

const (
	departmentListLimit   = 50
	departmentSearchLimit = 20
)

type departmentRepository interface {
	List(ctx context.Context, limit int) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Search(ctx context.Context, term string, limit int) ([]models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

type lookupRecorder interface {
	RecordLookup(ctx context.Context, ids ...string)
}

// DepartmentService implements department directory use cases.
type DepartmentService struct {
	repo      departmentRepository
	recorder  lookupRecorder
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService wires the service. recorder and cache are optional.
func NewDepartmentService(repo departmentRepository, recorder lookupRecorder, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, recorder: recorder, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

func departmentListKey() string {
	return CacheKey("departments", "list")
}

// List returns departments ordered by name.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	items, _, err := Remember(ctx, s.cache, departmentListKey(), s.cacheTTL, func(ctx context.Context) ([]models.Department, error) {
		return s.repo.List(ctx, departmentListLimit)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return items, nil
}

// Search matches the term against codes and names.
func (s *DepartmentService) Search(ctx context.Context, term string) ([]models.Department, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please enter at least 2 characters to search.")
	}

	items, err := s.repo.Search(ctx, term, departmentSearchLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search departments")
	}

	if len(items) > 0 && s.recorder != nil {
		ids := make([]string, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		s.recorder.RecordLookup(ctx, ids...)
	}
	return items, nil
}

// Get returns one department and counts the lookup.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordLookup(ctx, department.ID)
	}
	return department, nil
}

// Create adds a department. Duplicate codes or names surface as conflicts.
func (s *DepartmentService) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	department := &models.Department{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		Building:      req.Building,
		Floor:         req.Floor,
		Rooms:         req.Rooms,
		Phone:         req.Phone,
		Email:         strings.ToLower(req.Email),
		HODName:       req.HODName,
		HODEmail:      strings.ToLower(req.HODEmail),
		HODPhone:      req.HODPhone,
		VisitingHours: req.VisitingHours,
		MapLink:       req.MapLink,
		Photo360Link:  req.Photo360Link,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, persistError(err, "failed to create department")
	}

	s.invalidate(ctx)
	return department, nil
}

// Update applies the non-nil fields of req.
func (s *DepartmentService) Update(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Provide at least one field to update.")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	department, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDepartmentUpdate(department, req)

	if err := s.repo.Update(ctx, department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, persistError(err, "failed to update department")
	}

	s.invalidate(ctx)
	return department, nil
}

// Delete removes a department and returns what was deleted.
func (s *DepartmentService) Delete(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, department.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}

	s.invalidate(ctx)
	return department, nil
}

func (s *DepartmentService) find(ctx context.Context, id string) (*models.Department, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.ErrInvalidID
	}
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

func (s *DepartmentService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, CacheKey("departments", "*")); err != nil {
		s.logger.Warn("department cache not invalidated", zap.Error(err))
	}
}

func applyDepartmentUpdate(d *models.Department, req dto.UpdateDepartmentRequest) {
	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		d.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Latitude != nil {
		d.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		d.Longitude = *req.Longitude
	}
	if req.Building != nil {
		d.Building = *req.Building
	}
	if req.Floor != nil {
		d.Floor = req.Floor
	}
	if req.Rooms != nil {
		d.Rooms = *req.Rooms
	}
	if req.Phone != nil {
		d.Phone = *req.Phone
	}
	if req.Email != nil {
		d.Email = strings.ToLower(*req.Email)
	}
	if req.HODName != nil {
		d.HODName = *req.HODName
	}
	if req.HODEmail != nil {
		d.HODEmail = strings.ToLower(*req.HODEmail)
	}
	if req.HODPhone != nil {
		d.HODPhone = *req.HODPhone
	}
	if req.VisitingHours != nil {
		d.VisitingHours = *req.VisitingHours
	}
	if req.MapLink != nil {
		d.MapLink = *req.MapLink
	}
	if req.Photo360Link != nil {
		d.Photo360Link = *req.Photo360Link
	}
}

// persistError keeps typed repository errors such as conflicts and wraps the rest.
func persistError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
