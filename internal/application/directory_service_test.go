package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
)

// fakeUserRepo keeps records in a slice and answers just enough of the
// repository surface for the service tests.
type fakeUserRepo struct {
	users     []entity.User
	bulkErr   error
	bulkCalls int
}

func (f *fakeUserRepo) Create(u *entity.User) error { f.users = append(f.users, *u); return nil }

func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) List(repo.UserFilter) ([]entity.User, int, error) {
	return f.users, len(f.users), nil
}

func (f *fakeUserRepo) ListAll(repo.UserFilter) ([]entity.User, error) { return f.users, nil }

func (f *fakeUserRepo) Update(string, repo.UserPatch) (*entity.User, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Delete(string) error           { return repo.ErrNotFound }
func (f *fakeUserRepo) SetBlocked(string, bool) error { return repo.ErrNotFound }

func (f *fakeUserRepo) ExistingEmails(emails []string) ([]string, error) {
	known := make(map[string]struct{}, len(f.users))
	for _, u := range f.users {
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

func (f *fakeUserRepo) BulkInsert(users []entity.User) error {
	f.bulkCalls++
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.users = append(f.users, users...)
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

type recordingAudit struct {
	events []AuditEvent
}

func (a *recordingAudit) PublishJSON(_ context.Context, body any) error {
	if e, ok := body.(AuditEvent); ok {
		a.events = append(a.events, e)
	}
	return nil
}

func TestDirectoryImportPersistsCleanBatch(t *testing.T) {
	t.Parallel()

	fake := &fakeUserRepo{}
	audit := &recordingAudit{}
	svc := NewDirectoryService(fake, csv.NewImporter(nil), nil, nil, audit)

	document := "name,email,location,isActive\n" +
		"john doe,john@example.com,Berlin,true\n" +
		"jane smith,jane@example.com,Hamburg,false\n"

	count, err := svc.Import(context.Background(), []byte(document), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, fake.users, 2)

	require.Len(t, audit.events, 1)
	assert.Equal(t, AuditImportAccepted, audit.events[0].Kind)
	assert.Equal(t, "admin-1", audit.events[0].Actor)
	assert.Equal(t, 2, audit.events[0].Count)
}

func TestDirectoryImportRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	fake := &fakeUserRepo{}
	audit := &recordingAudit{}
	svc := NewDirectoryService(fake, csv.NewImporter(nil), nil, nil, audit)

	document := "name,email,location,isActive\n" +
		"john doe,john@example.com,Berlin,true\n" +
		"bad,alsobad,Berlin,true\n"

	_, err := svc.Import(context.Background(), []byte(document), "admin-1")

	var rejected *BatchRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Len(t, rejected.RowErrors, 1)
	assert.Equal(t, 2, rejected.RowErrors[0].Row)

	// All-or-nothing: storage was never touched.
	assert.Zero(t, fake.bulkCalls)
	assert.Empty(t, fake.users)

	require.Len(t, audit.events, 1)
	assert.Equal(t, AuditImportRejected, audit.events[0].Kind)
}

func TestDirectoryImportConflictsWithStoredEmails(t *testing.T) {
	t.Parallel()

	fake := &fakeUserRepo{users: []entity.User{{Email: "john@example.com"}}}
	svc := NewDirectoryService(fake, csv.NewImporter(nil), nil, nil, nil)

	document := "name,email,location,isActive\n" +
		"john doe,JOHN@example.com,Berlin,true\n"

	_, err := svc.Import(context.Background(), []byte(document), "admin-1")

	var conflict *ImportConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"john@example.com"}, conflict.Emails)
	assert.Zero(t, fake.bulkCalls)
}

func TestDirectoryImportMapsRacedDuplicate(t *testing.T) {
	t.Parallel()

	fake := &fakeUserRepo{bulkErr: repo.ErrDuplicateEmail}
	svc := NewDirectoryService(fake, csv.NewImporter(nil), nil, nil, nil)

	document := "name,email,location,isActive\njohn doe,john@example.com,Berlin,true\n"

	_, err := svc.Import(context.Background(), []byte(document), "admin-1")

	var conflict *ImportConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, fake.bulkCalls)
}

func TestDirectoryExportSanitizesForMembers(t *testing.T) {
	t.Parallel()

	login := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ip := "203.0.113.7"
	fake := &fakeUserRepo{users: []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true, LastLogin: &login, IPAddress: &ip},
	}}
	audit := &recordingAudit{}
	svc := NewDirectoryService(fake, nil, nil, nil, audit)

	doc, err := svc.Export(context.Background(), repo.UserFilter{}, false, "member-1")
	require.NoError(t, err)
	assert.NotContains(t, doc, "lastLogin")
	assert.NotContains(t, doc, "203.0.113.7")

	require.Len(t, audit.events, 1)
	assert.Equal(t, AuditExport, audit.events[0].Kind)
}

func TestDirectoryExportAdminKeepsPrivilegedColumns(t *testing.T) {
	t.Parallel()

	login := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ip := "203.0.113.7"
	fake := &fakeUserRepo{users: []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", LastLogin: &login, IPAddress: &ip},
	}}
	svc := NewDirectoryService(fake, nil, nil, nil, nil)

	doc, err := svc.Export(context.Background(), repo.UserFilter{}, true, "admin-1")
	require.NoError(t, err)
	assert.Contains(t, doc, "lastLogin,ipAddress")
	assert.Contains(t, doc, "2025-03-01T08:00:00.000Z")
	assert.Contains(t, doc, `"203.0.113.7"`)
}
