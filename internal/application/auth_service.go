package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
	"github.com/anbeck/user-directory/pkg/helpers"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService owns login accounts: registration, credential checks and
// token issuance. Sessions live in Redis keyed by account id.
type AuthService struct {
	Repo   repo.AccountRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewAuthService(r repo.AccountRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(accountID string) string {
	return "account:session:" + accountID
}

// Register creates an account with a bcrypt hash. The very first
// account becomes an admin; everyone after that is a regular user.
func (s *AuthService) Register(email, password string) (*entity.Account, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	count, err := s.Repo.Count()
	if err != nil {
		return nil, err
	}
	role := entity.RoleUser
	if count == 0 {
		role = entity.RoleAdmin
	}

	account := &entity.Account{
		Email:    csv.NormalizeEmail(email),
		Password: hash,
		Role:     role,
	}
	if err := s.Repo.Create(account); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return account, nil
}

// Login checks credentials, stamps lastLogin and the client IP on the
// account, and issues a token pair plus a Redis session.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*entity.Account, TokenPair, error) {
	account, err := s.Repo.GetByEmail(csv.NormalizeEmail(email))
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(account.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if err := s.Repo.RecordLogin(account.ID, time.Now(), ip); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", account.ID).Warn("record login failed")
	}

	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return account, pair, nil
}

func (s *AuthService) issueTokens(ctx context.Context, account *entity.Account) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(account.ID, account.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(account.ID, account.Role)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"account_id": account.ID,
			"email":      account.Email,
			"role":       account.Role,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		key := sessionKey(account.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the token pair for a valid refresh token whose
// session still exists.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	account, err := s.Repo.GetByID(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(account.ID)).Result()
		if rErr != nil || len(data) == 0 {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.issueTokens(ctx, account)
}

// Logout drops the Redis session.
func (s *AuthService) Logout(ctx context.Context, accountID string) {
	if s.Redis == nil || accountID == "" {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(accountID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", accountID).Warn("session delete failed")
	}
}
