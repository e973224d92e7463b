package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

type fakeDepartments struct {
	created  []*models.Department
	existing map[string]bool
}

func (f *fakeDepartments) Create(ctx context.Context, department *models.Department) error {
	if f.existing[department.Code] {
		return appErrors.Clone(appErrors.ErrConflict, "duplicate")
	}
	f.created = append(f.created, department)
	return nil
}

type fakeUsers struct {
	created  []*models.User
	existing map[string]*models.User
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if _, ok := f.existing[user.Email]; ok {
		return appErrors.Clone(appErrors.ErrConflict, "duplicate")
	}
	user.ID = "u-" + user.Email
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.existing[email]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

type fakeResources struct {
	created  []*models.Resource
	approved []string
}

func (f *fakeResources) Create(ctx context.Context, resource *models.Resource) error {
	resource.ID = "r-" + resource.Title
	f.created = append(f.created, resource)
	return nil
}

func (f *fakeResources) UpdateStatus(ctx context.Context, id string, status models.ResourceStatus, verified bool) (*models.Resource, error) {
	f.approved = append(f.approved, id)
	return &models.Resource{ID: id, Status: status, IsVerified: verified}, nil
}

func TestDefaultData(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	require.Len(t, data.Departments, 10)
	codes := make([]string, 0, len(data.Departments))
	for _, d := range data.Departments {
		codes = append(codes, d.Code)
		assert.NotZero(t, d.Latitude, d.Code)
	}
	assert.Equal(t, []string{"CSE", "CE", "EE", "ME", "ECE", "IT", "LIB", "CAN", "ADM", "HOS"}, codes)
	assert.Equal(t, "0551-2271234", data.Departments[0].Phone)
	require.NotNil(t, data.Departments[3].Floor)
	assert.Equal(t, 0, *data.Departments[3].Floor)

	require.Len(t, data.Users, 2)
	assert.Equal(t, models.RoleAdmin, data.Users[0].Role)
	require.Len(t, data.Resources, 4)
	assert.Equal(t, []string{"civil", "exam", "2023", "structural"}, data.Resources[1].Tags)
	assert.Equal(t, models.ResourcePending, data.Resources[3].Status)
}

func TestRunFreshDatabase(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)
	departments, users, resources := &fakeDepartments{}, &fakeUsers{}, &fakeResources{}

	summary, err := NewSeeder(departments, users, resources, nil).Run(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, Summary{Departments: 10, Users: 2, Resources: 4}, summary)

	assert.Equal(t, "https://www.openstreetmap.org/?mlat=26.7290&mlon=83.4342#map=18/26.7290/83.4342", departments.created[1].MapLink)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created[1].PasswordHash), []byte("Student@123")))

	for _, r := range resources.created {
		require.NotNil(t, r.UploadedBy)
		assert.Equal(t, "u-student@mmmut.ac.in", *r.UploadedBy)
	}
	assert.Len(t, resources.approved, 3)
	assert.NotContains(t, resources.approved, "r-Thermodynamics Assignment Solutions")
}

func TestRunIsRepeatable(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)
	departments := &fakeDepartments{existing: map[string]bool{"CSE": true, "LIB": true}}
	users := &fakeUsers{existing: map[string]*models.User{
		"admin@mmmut.ac.in":   {ID: "a-1", Role: models.RoleAdmin},
		"student@mmmut.ac.in": {ID: "s-1", Role: models.RoleUser},
	}}
	resources := &fakeResources{}

	summary, err := NewSeeder(departments, users, resources, nil).Run(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, Summary{Departments: 8, Skipped: 2 + 2 + 4}, summary)
	assert.Empty(t, resources.created)
}

func TestParseRejectsBrokenFile(t *testing.T) {
	_, err := Parse([]byte("departments: [unclosed"))
	assert.Error(t, err)
}
