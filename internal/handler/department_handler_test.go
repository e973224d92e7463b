package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

type departmentServiceMock struct {
	items      []models.Department
	department *models.Department
	err        error
	lastTerm   string
	lastID     string
	created    dto.CreateDepartmentRequest
}

func (m *departmentServiceMock) List(ctx context.Context) ([]models.Department, error) {
	return m.items, m.err
}

func (m *departmentServiceMock) Search(ctx context.Context, term string) ([]models.Department, error) {
	m.lastTerm = term
	return m.items, m.err
}

func (m *departmentServiceMock) Get(ctx context.Context, id string) (*models.Department, error) {
	m.lastID = id
	return m.department, m.err
}

func (m *departmentServiceMock) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	m.created = req
	return m.department, m.err
}

func (m *departmentServiceMock) Update(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	m.lastID = id
	return m.department, m.err
}

func (m *departmentServiceMock) Delete(ctx context.Context, id string) (*models.Department, error) {
	m.lastID = id
	return m.department, m.err
}

func newDepartmentContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func cseDepartment() *models.Department {
	return &models.Department{ID: "d-1", Code: "CSE", Name: "Computer Science and Engineering"}
}

func TestDepartmentHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newDepartmentContext(http.MethodGet, "/api/departments", "")
	NewDepartmentHandler(&departmentServiceMock{}).List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"No departments found in the system yet."}`, w.Body.String())

	c, w = newDepartmentContext(http.MethodGet, "/api/departments", "")
	NewDepartmentHandler(&departmentServiceMock{items: []models.Department{*cseDepartment()}}).List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answer":"Here are 1 departments on campus:"`)
	assert.Contains(t, w.Body.String(), `"pagination":{"limit":50,"count":1}`)
}

func TestDepartmentHandlerListInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newDepartmentContext(http.MethodGet, "/api/departments", "")
	NewDepartmentHandler(&departmentServiceMock{err: errors.New("pq: connection refused")}).List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"answer":"Couldn't fetch department details right now. Try again later."}`, w.Body.String())
}

func TestDepartmentHandlerSearch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &departmentServiceMock{}

	c, w := newDepartmentContext(http.MethodGet, "/api/departments/search?name=%20robotics%20", "")
	NewDepartmentHandler(mockSvc).Search(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "robotics", mockSvc.lastTerm)
	assert.JSONEq(t, `{"answer":"No departments found for \"robotics\".\n\nTry:\n• \"CSE\"\n• \"Civil\"\n• \"Mechanical\"\n• \"Library\""}`, w.Body.String())

	mockSvc.items = []models.Department{*cseDepartment()}
	c, w = newDepartmentContext(http.MethodGet, "/api/departments/search?name=cse", "")
	NewDepartmentHandler(mockSvc).Search(c)
	assert.Contains(t, w.Body.String(), `"answer":"Found 1 department(s) matching \"cse\":"`)
}

func TestDepartmentHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &departmentServiceMock{department: cseDepartment()}

	c, w := newDepartmentContext(http.MethodGet, "/api/departments/d-1", "")
	c.Params = gin.Params{{Key: "id", Value: "d-1"}}
	NewDepartmentHandler(mockSvc).Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d-1", mockSvc.lastID)
	assert.Contains(t, w.Body.String(), `"answer":"Found: **Computer Science and Engineering**"`)

	c, w = newDepartmentContext(http.MethodGet, "/api/departments/nope", "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	NewDepartmentHandler(&departmentServiceMock{err: appErrors.ErrInvalidID}).Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"answer":"Invalid ID format. Please check the request and try again."}`, w.Body.String())

	c, w = newDepartmentContext(http.MethodGet, "/api/departments/x", "")
	NewDepartmentHandler(&departmentServiceMock{err: appErrors.ErrNotFound}).Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"answer":"That department doesn't exist. Try another name or check spelling."}`, w.Body.String())
}

func TestDepartmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &departmentServiceMock{department: cseDepartment()}

	c, w := newDepartmentContext(http.MethodPost, "/api/departments", `{"name":"Computer Science and Engineering","code":"cse","latitude":26.73,"longitude":83.43}`)
	NewDepartmentHandler(mockSvc).Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "cse", mockSvc.created.Code)
	require.NotNil(t, mockSvc.created.Latitude)
	assert.Contains(t, w.Body.String(), `(CSE)`)

	c, w = newDepartmentContext(http.MethodPost, "/api/departments", `{"name":`)
	NewDepartmentHandler(mockSvc).Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newDepartmentContext(http.MethodPost, "/api/departments", `{"name":"CSE Dept","code":"CSE","latitude":1,"longitude":1}`)
	NewDepartmentHandler(&departmentServiceMock{err: appErrors.Clone(appErrors.ErrConflict, `A code "CSE" already exists.`)}).Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"answer":"A code \"CSE\" already exists."}`, w.Body.String())
}

func TestDepartmentHandlerUpdateAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &departmentServiceMock{department: cseDepartment()}

	c, w := newDepartmentContext(http.MethodPut, "/api/departments/d-1", `{"phone":"0551-2273958"}`)
	c.Params = gin.Params{{Key: "id", Value: "d-1"}}
	NewDepartmentHandler(mockSvc).Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answer":"Updated: **Computer Science and Engineering**"`)

	c, w = newDepartmentContext(http.MethodDelete, "/api/departments/d-1", "")
	c.Params = gin.Params{{Key: "id", Value: "d-1"}}
	NewDepartmentHandler(mockSvc).Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"Deleted: **Computer Science and Engineering**"}`, w.Body.String())
}
