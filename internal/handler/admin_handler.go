package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/pkg/export"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

const moderationLimit = 100

type moderationService interface {
	Queue(ctx context.Context, status string) ([]models.ModerationItem, error)
	Approve(ctx context.Context, id string) (*models.Resource, error)
	Reject(ctx context.Context, id string) (*models.Resource, error)
	Remove(ctx context.Context, id string) (*models.Resource, error)
	Export(ctx context.Context, status, format string) ([]byte, export.Format, error)
}

// AdminHandler serves the moderation queue.
type AdminHandler struct {
	service moderationService
	now     func() time.Time
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(svc moderationService) *AdminHandler {
	return &AdminHandler{service: svc, now: time.Now}
}

// Resources godoc
// @Summary List resources for moderation
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected or all"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/resources [get]
func (h *AdminHandler) Resources(c *gin.Context) {
	var q dto.ModerationQuery
	_ = c.ShouldBindQuery(&q)

	items, err := h.service.Queue(c.Request.Context(), q.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Found %d resources in the system.", len(items)), items,
		&response.Pagination{Limit: moderationLimit, Count: len(items)})
}

// Approve godoc
// @Summary Approve a resource
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/resources/{id}/approve [put]
func (h *AdminHandler) Approve(c *gin.Context) {
	resource, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Resource **%s** has been approved.", resource.Title), resource, nil)
}

// Reject godoc
// @Summary Reject a resource
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/resources/{id}/reject [put]
func (h *AdminHandler) Reject(c *gin.Context) {
	resource, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Resource **%s** has been rejected.", resource.Title), resource, nil)
}

// Delete godoc
// @Summary Delete a resource
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/resources/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	resource, err := h.service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Resource **%s** has been deleted.", resource.Title), nil, nil)
}

// Export godoc
// @Summary Export the moderation queue
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "pending, approved, rejected or all"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/resources/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	var q dto.ModerationQuery
	_ = c.ShouldBindQuery(&q)

	body, format, err := h.service.Export(c.Request.Context(), q.Status, q.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("moderation-%s.%s", h.now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, format.ContentType(), body)
}
