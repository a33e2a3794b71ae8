package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
	"github.com/anbeck/user-directory/internal/interface/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

// memoryUserRepo is an in-memory repository for handler tests.
type memoryUserRepo struct {
	users []entity.User
}

func (m *memoryUserRepo) Create(u *entity.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *memoryUserRepo) GetByID(id string) (*entity.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memoryUserRepo) List(repo.UserFilter) ([]entity.User, int, error) {
	return m.users, len(m.users), nil
}

func (m *memoryUserRepo) ListAll(repo.UserFilter) ([]entity.User, error) { return m.users, nil }

func (m *memoryUserRepo) Update(string, repo.UserPatch) (*entity.User, error) {
	return nil, repo.ErrNotFound
}

func (m *memoryUserRepo) Delete(string) error           { return repo.ErrNotFound }
func (m *memoryUserRepo) SetBlocked(string, bool) error { return repo.ErrNotFound }

func (m *memoryUserRepo) ExistingEmails(emails []string) ([]string, error) {
	known := make(map[string]struct{}, len(m.users))
	for _, u := range m.users {
		known[u.Email] = struct{}{}
	}
	var existing []string
	for _, e := range emails {
		if _, ok := known[e]; ok {
			existing = append(existing, e)
		}
	}
	return existing, nil
}

func (m *memoryUserRepo) BulkInsert(users []entity.User) error {
	m.users = append(m.users, users...)
	return nil
}

var _ repo.UserRepository = (*memoryUserRepo)(nil)

func newDataRouter(store *memoryUserRepo, admin bool) *gin.Engine {
	svc := application.NewDirectoryService(store, csv.NewImporter(nil), nil, logrus.New(), nil)
	h := NewDataHandler(svc, logrus.New())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxAccountIDKey, "test-account")
		c.Set(middleware.CtxAdminKey, admin)
	})
	r.GET("/export", h.Export)
	r.POST("/import", h.Import)
	return r
}

func multipartCSV(t *testing.T, filename, contentType, body string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postImport(t *testing.T, r *gin.Engine, filename, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	buf, formType := multipartCSV(t, filename, contentType, body)
	req := httptest.NewRequest(http.MethodPost, "/import", buf)
	req.Header.Set("Content-Type", formType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestImportCleanBatch(t *testing.T) {
	store := &memoryUserRepo{}
	r := newDataRouter(store, true)

	rec := postImport(t, r, "users.csv", "text/csv",
		"name,email,location,isActive\njohn doe,john@example.com,Berlin,true\n")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, store.users, 1)

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.EqualValues(t, 1, resp.Data["count"])
}

func TestImportNoFile(t *testing.T) {
	r := newDataRouter(&memoryUserRepo{}, true)

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
}

func TestImportRejectsNonCSV(t *testing.T) {
	r := newDataRouter(&memoryUserRepo{}, true)

	rec := postImport(t, r, "users.txt", "text/plain", "name,email,location,isActive\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only CSV files are allowed")

	// Right extension, wrong MIME still fails.
	rec = postImport(t, r, "users.csv", "application/json", "name,email,location,isActive\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only CSV files are allowed")
}

func TestImportEmptyFile(t *testing.T) {
	r := newDataRouter(&memoryUserRepo{}, true)

	rec := postImport(t, r, "users.csv", "text/csv", "name,email,location,isActive\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File rejected: empty file")
}

func TestImportValidationFailureListsRowErrors(t *testing.T) {
	store := &memoryUserRepo{}
	r := newDataRouter(store, true)

	rec := postImport(t, r, "users.csv", "text/csv",
		"name,email,location,isActive\n"+
			"john doe,john@example.com,Berlin,true\n"+
			",broken,Berlin,true\n")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File import failed")
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.Contains(t, rec.Body.String(), `"row":2`)
	assert.Empty(t, store.users)
}

func TestImportConflictWithStoredEmail(t *testing.T) {
	store := &memoryUserRepo{users: []entity.User{{Email: "john@example.com"}}}
	r := newDataRouter(store, true)

	rec := postImport(t, r, "users.csv", "text/csv",
		"name,email,location,isActive\njohn doe,john@example.com,Berlin,true\n")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate emails already exist")
	assert.Contains(t, rec.Body.String(), "john@example.com")
}

func TestExportMemberColumns(t *testing.T) {
	login := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ip := "203.0.113.7"
	store := &memoryUserRepo{users: []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true, LastLogin: &login, IPAddress: &ip},
	}}
	r := newDataRouter(store, false)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename='users-"))

	body := rec.Body.String()
	assert.Contains(t, body, "name,email,location,isActive,isBlocked")
	assert.NotContains(t, body, "lastLogin")
	assert.NotContains(t, body, "203.0.113.7")
}

func TestExportAdminColumns(t *testing.T) {
	login := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ip := "203.0.113.7"
	store := &memoryUserRepo{users: []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", LastLogin: &login, IPAddress: &ip},
	}}
	r := newDataRouter(store, true)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lastLogin,ipAddress")
	assert.Contains(t, body, "2025-03-01T08:00:00.000Z")
}

// The exported document survives a round trip back through the import
// endpoint into an empty directory.
func TestExportImportRoundTripHTTP(t *testing.T) {
	store := &memoryUserRepo{users: []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true},
	}}
	r := newDataRouter(store, false)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	fresh := &memoryUserRepo{}
	importRouter := newDataRouter(fresh, true)
	rec2 := postImport(t, importRouter, "users.csv", "text/csv", rec.Body.String())

	require.Equal(t, http.StatusCreated, rec2.Code)
	require.Len(t, fresh.users, 1)
	assert.Equal(t, "John Doe", fresh.users[0].Name)
	assert.Equal(t, "john@example.com", fresh.users[0].Email)
	assert.True(t, fresh.users[0].IsActive)
}
