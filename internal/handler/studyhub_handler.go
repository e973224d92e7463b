package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

const (
	studyHubLatestLimit = 50
	studyHubQueryLimit  = 20
)

type studyHubService interface {
	Latest(ctx context.Context) ([]models.Resource, error)
	ByDepartment(ctx context.Context, dept string) ([]models.Resource, error)
	Search(ctx context.Context, keyword, dept string) ([]models.Resource, error)
	Upload(ctx context.Context, uploaderID string, req dto.CreateResourceRequest) (*models.Resource, error)
}

// StudyHubHandler exposes approved study materials and uploads.
type StudyHubHandler struct {
	service studyHubService
}

// NewStudyHubHandler builds a new handler.
func NewStudyHubHandler(svc studyHubService) *StudyHubHandler {
	return &StudyHubHandler{service: svc}
}

// Latest godoc
// @Summary Latest approved study materials
// @Tags StudyHub
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /studyhub [get]
func (h *StudyHubHandler) Latest(c *gin.Context) {
	items, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(items) == 0 {
		response.JSON(c, http.StatusOK, "No study materials uploaded yet. Be the first to add notes in **StudyHub**!", nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Here are the latest %d study materials:", len(items)), items,
		&response.Pagination{Limit: studyHubLatestLimit, Count: len(items)})
}

// ByDepartment godoc
// @Summary Approved study materials of one department
// @Tags StudyHub
// @Produce json
// @Param department path string true "Department, e.g. CSE"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /studyhub/department/{department} [get]
func (h *StudyHubHandler) ByDepartment(c *gin.Context) {
	dept := strings.TrimSpace(c.Param("department"))
	items, err := h.service.ByDepartment(c.Request.Context(), dept)
	if err != nil {
		response.Error(c, err)
		return
	}

	label := strings.ToUpper(dept)
	if len(items) == 0 {
		response.JSON(c, http.StatusOK, fmt.Sprintf("No study materials found for **%s**.\n\nTry:\n• Uploading your notes\n• Checking \"CSE\" or \"Civil\"\n• Searching by keyword", label), nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Found %d resource(s) for **%s**:", len(items), label), items,
		&response.Pagination{Limit: studyHubQueryLimit, Count: len(items)})
}

// Search godoc
// @Summary Search approved study materials
// @Tags StudyHub
// @Produce json
// @Param keyword query string false "Matches title, subject and tags"
// @Param department query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /studyhub/search [get]
func (h *StudyHubHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	dept := strings.TrimSpace(c.Query("department"))

	items, err := h.service.Search(c.Request.Context(), keyword, dept)
	if err != nil {
		response.Error(c, err)
		return
	}

	if len(items) == 0 {
		hint := fmt.Sprintf("%q", keyword)
		if keyword == "" {
			hint = "**" + strings.ToUpper(dept) + "**"
		}
		response.JSON(c, http.StatusOK, fmt.Sprintf("No results found for %s.\n\nTry:\n• \"DSA notes\"\n• \"Thermodynamics\"\n• \"CSE department\"\n• Broader keywords", hint), nil, nil)
		return
	}

	deptHint := ""
	if dept != "" {
		deptHint = " in **" + strings.ToUpper(dept) + "**"
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Found %d result(s)%s:", len(items), deptHint), items,
		&response.Pagination{Limit: studyHubQueryLimit, Count: len(items)})
}

// Upload godoc
// @Summary Submit a study material for moderation
// @Tags StudyHub
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateResourceRequest true "Resource"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /studyhub [post]
func (h *StudyHubHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	resource, err := h.service.Upload(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("Your resource **%s** has been uploaded and is **pending admin approval**.", resource.Title), resource)
}
