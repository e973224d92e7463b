package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

const (
	studyHubLatestLimit = 50
	studyHubQueryLimit  = 20
)

type resourceRepository interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
}

// StudyHubService serves approved study materials and accepts uploads for moderation.
type StudyHubService struct {
	repo      resourceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudyHubService constructs the service.
func NewStudyHubService(repo resourceRepository, validate *validator.Validate, logger *zap.Logger) *StudyHubService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyHubService{repo: repo, validator: validate, logger: logger}
}

// Latest lists the newest approved resources.
func (s *StudyHubService) Latest(ctx context.Context) ([]models.Resource, error) {
	return s.list(ctx, models.ResourceFilter{Limit: studyHubLatestLimit})
}

// ByDepartment lists approved resources whose department equals dept, ignoring case.
func (s *StudyHubService) ByDepartment(ctx context.Context, dept string) ([]models.Resource, error) {
	dept = strings.TrimSpace(dept)
	if utf8.RuneCountInString(dept) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please provide a department name with at least 2 characters.")
	}
	return s.list(ctx, models.ResourceFilter{Department: dept, ExactDept: true, Limit: studyHubQueryLimit})
}

// Search filters approved resources by keyword and/or department.
func (s *StudyHubService) Search(ctx context.Context, keyword, dept string) ([]models.Resource, error) {
	keyword = strings.TrimSpace(keyword)
	dept = strings.TrimSpace(dept)
	if keyword == "" && dept == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please provide a keyword or department to search.")
	}
	if keyword != "" && utf8.RuneCountInString(keyword) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Keyword must be at least 2 characters.")
	}
	if dept != "" && utf8.RuneCountInString(dept) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Department must be at least 2 characters.")
	}
	return s.list(ctx, models.ResourceFilter{Keyword: keyword, Department: dept, Limit: studyHubQueryLimit})
}

// Upload stores a new resource as pending regardless of what the client sent.
func (s *StudyHubService) Upload(ctx context.Context, uploaderID string, req dto.CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	resource := &models.Resource{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Department:  strings.TrimSpace(req.Department),
		FileURL:     req.FileURL,
		Tags:        tags,
		FileType:    defaultString(req.FileType, "other"),
		Category:    defaultString(req.Category, "other"),
		Semester:    req.Semester,
		Subject:     strings.TrimSpace(req.Subject),
	}
	if uploaderID != "" {
		resource.UploadedBy = &uploaderID
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, persistError(err, "failed to save resource")
	}
	s.logger.Info("resource submitted for moderation", zap.String("resource_id", resource.ID), zap.String("uploader_id", uploaderID))
	return resource, nil
}

func (s *StudyHubService) list(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	filter.Status = models.ResourceApproved
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return items, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
