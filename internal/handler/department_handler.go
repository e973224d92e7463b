package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

const departmentListLimit = 50

type departmentService interface {
	List(ctx context.Context) ([]models.Department, error)
	Search(ctx context.Context, term string) ([]models.Department, error)
	Get(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id string) (*models.Department, error)
}

// DepartmentHandler exposes the campus directory.
type DepartmentHandler struct {
	service departmentService
}

// NewDepartmentHandler builds a new handler.
func NewDepartmentHandler(svc departmentService) *DepartmentHandler {
	return &DepartmentHandler{service: svc}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(items) == 0 {
		response.JSON(c, http.StatusOK, "No departments found in the system yet.", nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Here are %d departments on campus:", len(items)), items,
		&response.Pagination{Limit: departmentListLimit, Count: len(items)})
}

// Search godoc
// @Summary Search departments by code or name
// @Tags Departments
// @Produce json
// @Param name query string true "Code or part of the name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /departments/search [get]
func (h *DepartmentHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("name"))
	items, err := h.service.Search(c.Request.Context(), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(items) == 0 {
		response.JSON(c, http.StatusOK, fmt.Sprintf("No departments found for %q.\n\nTry:\n• \"CSE\"\n• \"Civil\"\n• \"Mechanical\"\n• \"Library\"", term), nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Found %d department(s) matching %q:", len(items), term), items, nil)
}

// Get godoc
// @Summary Get a department
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	department, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Found: **%s**", department.Name), department, nil)
}

// Create godoc
// @Summary Add a department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateDepartmentRequest true "Department"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	department, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("Added new department: **%s** (%s)", department.Name, department.Code), department)
}

// Update godoc
// @Summary Update a department
// @Tags Departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Param payload body dto.UpdateDepartmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	department, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Updated: **%s**", department.Name), department, nil)
}

// Delete godoc
// @Summary Delete a department
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	department, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Deleted: **%s**", department.Name), nil, nil)
}
