package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserService covers the directory CRUD surface. Records returned to
// callers are NOT sanitized here; handlers apply entity.Sanitized with
// the actor's capability so the same service serves both roles.
type UserService struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{Repo: r, Logger: logger, ES: es, ESUsersIndex: esUsersIndex}
}

// List returns matching records plus the unpaged total.
func (s *UserService) List(f repo.UserFilter) ([]entity.User, int, error) {
	return s.Repo.List(f)
}

func (s *UserService) Get(id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Create stores a new record. The email is lowercased the same way the
// import pipeline does it so uniqueness behaves identically on both
// write paths.
func (s *UserService) Create(ctx context.Context, u *entity.User) error {
	u.Email = csv.NormalizeEmail(u.Email)
	if err := s.Repo.Create(u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return ErrEmailExists
		}
		return err
	}
	_ = s.indexUser(ctx, u)
	return nil
}

func (s *UserService) Update(ctx context.Context, id string, p repo.UserPatch) (*entity.User, error) {
	if p.Email != nil {
		normalized := csv.NormalizeEmail(*p.Email)
		p.Email = &normalized
	}
	u, err := s.Repo.Update(id, p)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

func (s *UserService) Delete(id string) error {
	err := s.Repo.Delete(id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) SetBlocked(id string, blocked bool) error {
	err := s.Repo.SetBlocked(id, blocked)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"location":   u.Location,
		"is_active":  u.IsActive,
		"is_blocked": u.IsBlocked,
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// IndexAll pushes a batch of records into the search index; the import
// path calls it after a successful bulk insert.
func (s *UserService) IndexAll(ctx context.Context, users []entity.User) {
	for i := range users {
		_ = s.indexUser(ctx, &users[i])
	}
}

// Search performs a multi_match query on name, email and location.
// Search-index documents never carry the privileged fields, so no
// sanitization is needed on this path.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "location"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
