package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/export"
)

const moderationLimit = 100

type moderationRepository interface {
	ListForModeration(ctx context.Context, status models.ResourceStatus, limit int) ([]models.ModerationItem, error)
	UpdateStatus(ctx context.Context, id string, status models.ResourceStatus, verified bool) (*models.Resource, error)
	Delete(ctx context.Context, id string) (*models.Resource, error)
}

// ModerationService lets admins review uploaded resources.
type ModerationService struct {
	repo   moderationRepository
	logger *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(repo moderationRepository, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{repo: repo, logger: logger}
}

// Queue lists resources of every status, or only status when it is set.
func (s *ModerationService) Queue(ctx context.Context, status string) ([]models.ModerationItem, error) {
	filter, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListForModeration(ctx, filter, moderationLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load moderation queue")
	}
	return items, nil
}

// Approve publishes a resource and marks it verified.
func (s *ModerationService) Approve(ctx context.Context, id string) (*models.Resource, error) {
	return s.transition(ctx, id, models.ResourceApproved, true)
}

// Reject hides a resource from public listings.
func (s *ModerationService) Reject(ctx context.Context, id string) (*models.Resource, error) {
	return s.transition(ctx, id, models.ResourceRejected, false)
}

// Remove deletes a resource permanently.
func (s *ModerationService) Remove(ctx context.Context, id string) (*models.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.ErrInvalidID
	}
	resource, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, resourceLookupError(err, "failed to delete resource")
	}
	s.logger.Info("resource removed", zap.String("resource_id", id))
	return resource, nil
}

// Export renders the moderation queue as CSV or PDF.
func (s *ModerationService) Export(ctx context.Context, status, format string) ([]byte, export.Format, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "Export format must be csv or pdf.")
	}
	items, err := s.Queue(ctx, status)
	if err != nil {
		return nil, "", err
	}

	body, err := export.Render(f, moderationDataset(items, status))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return body, f, nil
}

func (s *ModerationService) transition(ctx context.Context, id string, status models.ResourceStatus, verified bool) (*models.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.ErrInvalidID
	}
	resource, err := s.repo.UpdateStatus(ctx, id, status, verified)
	if err != nil {
		return nil, resourceLookupError(err, "failed to update resource status")
	}
	s.logger.Info("resource moderated", zap.String("resource_id", id), zap.String("status", string(status)))
	return resource, nil
}

func parseStatus(raw string) (models.ResourceStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	status := models.ResourceStatus(raw)
	if !status.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "Status must be pending, approved or rejected.")
	}
	return status, nil
}

func resourceLookupError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

var moderationHeaders = []string{"title", "department", "category", "status", "verified", "uploader", "file_url", "created_at"}

func moderationDataset(items []models.ModerationItem, status string) export.Dataset {
	title := "Study material moderation"
	if status != "" {
		title += " (" + strings.ToLower(status) + ")"
	}
	data := export.Dataset{Title: title, Headers: moderationHeaders, Rows: make([]map[string]string, 0, len(items))}
	for _, item := range items {
		uploader := ""
		if item.UploaderEmail != nil {
			uploader = *item.UploaderEmail
		}
		if item.UploaderName != nil {
			uploader = strings.TrimSpace(*item.UploaderName + " <" + uploader + ">")
		}
		data.Rows = append(data.Rows, map[string]string{
			"title":      item.Title,
			"department": item.Department,
			"category":   item.Category,
			"status":     string(item.Status),
			"verified":   strconv.FormatBool(item.IsVerified),
			"uploader":   uploader,
			"file_url":   item.FileURL,
			"created_at": item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return data
}
