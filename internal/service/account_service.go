package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	dom "github.com/Codedeveloper-MT/Vigilent-login/internal/domain"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/cache"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/repo"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingFields      = errors.New("username, country, phone and password are required")
	ErrInvalidPhone       = errors.New("phone number is not valid")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

// phonePattern is deliberately permissive: leading +, digits, spaces,
// dashes and parens.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,30}$`)

// ResetTokens issues and consumes single-use password-reset tokens.
type ResetTokens interface {
	Issue(ctx context.Context, username string) (string, error)
	Consume(ctx context.Context, token string) (username string, ok bool, err error)
}

// AccountService owns account persistence rules and all password handling.
// It is the only place a plaintext password is ever seen.
type AccountService struct {
	repo       repo.AccountRepo
	cache      *cache.AccountCache
	tokens     ResetTokens
	bcryptCost int
	sf         singleflight.Group
}

// NewAccountService creates an AccountService. If c is nil, caching is
// disabled. If cost is outside bcrypt's range the default cost is used.
func NewAccountService(r repo.AccountRepo, c *cache.AccountCache, tokens ResetTokens, cost int) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{repo: r, cache: c, tokens: tokens, bcryptCost: cost}
}

// hashSecret is the single path every secret-bearing write goes through,
// whether it comes from Register, Update or ResetPassword.
func (s *AccountService) hashSecret(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Register creates a new account with a hashed password.
func (s *AccountService) Register(ctx context.Context, username, country, phone, password string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	country = strings.TrimSpace(country)
	phone = strings.TrimSpace(phone)
	if username == "" || country == "" || phone == "" || password == "" {
		return dom.Account{}, ErrMissingFields
	}
	if !phonePattern.MatchString(phone) {
		return dom.Account{}, ErrInvalidPhone
	}
	hash, err := s.hashSecret(password)
	if err != nil {
		return dom.Account{}, err
	}
	a, err := s.repo.Create(ctx, dom.Account{
		Username:     username,
		Country:      country,
		Phone:        phone,
		PasswordHash: hash,
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Account{}, ErrUsernameTaken
		}
		return dom.Account{}, err
	}
	s.invalidate(ctx, username)
	return a, nil
}

// Get returns the account by username with the password hash stripped.
func (s *AccountService) Get(ctx context.Context, username string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return dom.Account{}, ErrNotFound
	}
	if s.cache != nil {
		v, err, _ := s.sf.Do("get:"+username, func() (interface{}, error) {
			if a, ok, err := s.cache.Get(ctx, username); err == nil && ok {
				return a, nil
			}
			a, err := s.lookup(ctx, username)
			if err != nil {
				return nil, err
			}
			_ = s.cache.Set(ctx, a)
			return sanitize(a), nil
		})
		if err != nil {
			return dom.Account{}, err
		}
		return v.(dom.Account), nil
	}
	a, err := s.lookup(ctx, username)
	if err != nil {
		return dom.Account{}, err
	}
	return sanitize(a), nil
}

// Authenticate checks the password for username and returns the account.
// Unknown usernames and wrong passwords come back as distinct errors so
// the handler can keep the documented 404/401 split.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.Account{}, ErrInvalidCredentials
	}
	a, err := s.lookup(ctx, username)
	if err != nil {
		return dom.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return dom.Account{}, ErrInvalidCredentials
	}
	return sanitize(a), nil
}

// Verify reports whether password matches the stored secret for username.
// It is false, not an error, for unknown usernames.
func (s *AccountService) Verify(ctx context.Context, username, password string) bool {
	_, err := s.Authenticate(ctx, username, password)
	return err == nil
}

// Update applies the present fields to the account. A present password is
// re-hashed through the same path as registration.
func (s *AccountService) Update(ctx context.Context, username string, country, phone, password *string) (dom.Account, error) {
	username = strings.TrimSpace(username)
	existing, err := s.lookup(ctx, username)
	if err != nil {
		return dom.Account{}, err
	}
	patch := existing
	if country != nil {
		if strings.TrimSpace(*country) == "" {
			return dom.Account{}, ErrMissingFields
		}
		patch.Country = strings.TrimSpace(*country)
	}
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if !phonePattern.MatchString(p) {
			return dom.Account{}, ErrInvalidPhone
		}
		patch.Phone = p
	}
	if password != nil {
		if *password == "" {
			return dom.Account{}, ErrMissingFields
		}
		hash, err := s.hashSecret(*password)
		if err != nil {
			return dom.Account{}, err
		}
		patch.PasswordHash = hash
	}
	a, err := s.repo.Update(ctx, username, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, ErrNotFound
		}
		return dom.Account{}, err
	}
	s.invalidate(ctx, username)
	return sanitize(a), nil
}

// Delete removes the account. ErrNotFound if no such account existed.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	ok, err := s.repo.Delete(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.invalidate(ctx, username)
	return nil
}

// RequestPasswordReset issues a single-use reset token for the account.
func (s *AccountService) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	a, err := s.lookup(ctx, username)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, a.Username)
}

// ResetPassword consumes a reset token and replaces the account's secret.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return ErrMissingFields
	}
	username, ok, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	_, err = s.Update(ctx, username, nil, nil, &password)
	return err
}

func (s *AccountService) lookup(ctx context.Context, username string) (dom.Account, error) {
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Account{}, ErrNotFound
		}
		return dom.Account{}, err
	}
	return a, nil
}

func (s *AccountService) invalidate(ctx context.Context, username string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, username)
	}
}

// sanitize strips the password hash before an account leaves the service.
func sanitize(a dom.Account) dom.Account {
	a.PasswordHash = ""
	return a
}
