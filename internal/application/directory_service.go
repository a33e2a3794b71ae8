package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
)

// AuditPublisher is the outbound event hook. The broker is optional:
// a nil publisher silently disables auditing, it never fails a request.
type AuditPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Audit event kinds.
const (
	AuditImportAccepted = "import_accepted"
	AuditImportRejected = "import_rejected"
	AuditExport         = "export"
)

// AuditEvent records a bulk operation against the directory.
type AuditEvent struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Actor string    `json:"actor"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// BatchRejectedError carries the full aggregated row errors of a
// rejected import. The batch is all-or-nothing: when this error is
// returned, nothing was persisted.
type BatchRejectedError struct {
	RowErrors []csv.RowError
}

func (e *BatchRejectedError) Error() string { return "Data rejected: validation failed" }

// ImportConflictError reports batch emails that already exist in
// storage. Detected by a pre-insert existence check, outside the
// pipeline itself.
type ImportConflictError struct {
	Emails []string
}

func (e *ImportConflictError) Error() string { return "Import failed: duplicate emails already exist" }

// DirectoryService owns bulk CSV import and export.
type DirectoryService struct {
	Repo     repo.UserRepository
	Importer *csv.Importer
	Users    *UserService
	Logger   *logrus.Logger
	Audit    AuditPublisher
}

func NewDirectoryService(r repo.UserRepository, importer *csv.Importer, users *UserService, logger *logrus.Logger, audit AuditPublisher) *DirectoryService {
	if importer == nil {
		importer = csv.NewImporter(nil)
	}
	return &DirectoryService{Repo: r, Importer: importer, Users: users, Logger: logger, Audit: audit}
}

// Import runs the pipeline over an uploaded CSV buffer and persists the
// batch only when it is fully clean and conflicts with nothing already
// stored. Returns the number of imported records.
//
// Failure modes, in order of detection:
//   - csv.ErrScanRejected / *csv.ParseError / csv.ErrEmptyFile from the
//     intake gate
//   - *BatchRejectedError with every row failure aggregated
//   - *ImportConflictError listing emails already present in storage
func (s *DirectoryService) Import(ctx context.Context, data []byte, actor string) (int, error) {
	outcome, err := s.Importer.UsersFromCSV(ctx, data)
	if err != nil {
		return 0, err
	}
	if !outcome.Accepted() {
		s.publishAudit(ctx, AuditImportRejected, actor, len(outcome.RowErrors))
		return 0, &BatchRejectedError{RowErrors: outcome.RowErrors}
	}

	emails := make([]string, len(outcome.Users))
	for i, u := range outcome.Users {
		emails[i] = u.Email
	}
	existing, err := s.Repo.ExistingEmails(emails)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, &ImportConflictError{Emails: existing}
	}

	if err := s.Repo.BulkInsert(outcome.Users); err != nil {
		// The existence check races concurrent writers; a key conflict
		// here still reports as a conflict, not an internal error.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return 0, &ImportConflictError{Emails: emails}
		}
		return 0, err
	}

	if s.Users != nil {
		s.Users.IndexAll(ctx, outcome.Users)
	}
	s.publishAudit(ctx, AuditImportAccepted, actor, len(outcome.Users))
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"count": len(outcome.Users), "actor": actor}).Info("users imported")
	}
	return len(outcome.Users), nil
}

// Export fetches every record matching the filter, sanitizes each for
// the actor and serializes the result. Non-admin actors never receive
// the privileged columns and their login-range filter is discarded.
func (s *DirectoryService) Export(ctx context.Context, f repo.UserFilter, admin bool, actor string) (string, error) {
	if !admin {
		f.Login = repo.DateRange{}
	}
	users, err := s.Repo.ListAll(f)
	if err != nil {
		return "", err
	}

	document := csv.UsersToCSV(entity.SanitizeAll(users, admin), admin)
	s.publishAudit(ctx, AuditExport, actor, len(users))
	return document, nil
}

func (s *DirectoryService) publishAudit(ctx context.Context, kind, actor string, count int) {
	if s.Audit == nil {
		return
	}
	event := AuditEvent{
		ID:    uuid.NewString(),
		Kind:  kind,
		Actor: actor,
		Count: count,
		At:    time.Now().UTC(),
	}
	if err := s.Audit.PublishJSON(ctx, event); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("kind", kind).Warn("audit publish failed")
	}
}
