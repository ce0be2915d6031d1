package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	dom "github.com/Codedeveloper-MT/Vigilent-login/internal/domain"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory AccountRepo. Create is atomic under the mutex,
// so it behaves like the unique index: two racing inserts of one username
// cannot both win.
type memRepo struct {
	mu       sync.Mutex
	seq      int64
	accounts map[string]dom.Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[string]dom.Account)}
}

func (r *memRepo) Create(_ context.Context, a dom.Account) (dom.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Username]; ok {
		return dom.Account{}, &pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"}
	}
	r.seq++
	a.ID = r.seq
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.Username] = a
	return a, nil
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (dom.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[username]
	if !ok {
		return dom.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (r *memRepo) Update(_ context.Context, username string, patch dom.Account) (dom.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[username]
	if !ok {
		return dom.Account{}, pgx.ErrNoRows
	}
	a.Country = patch.Country
	a.Phone = patch.Phone
	a.PasswordHash = patch.PasswordHash
	a.UpdatedAt = time.Now().UTC()
	r.accounts[username] = a
	return a, nil
}

func (r *memRepo) Delete(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[username]; !ok {
		return false, nil
	}
	delete(r.accounts, username)
	return true, nil
}

func (r *memRepo) storedHash(username string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[username].PasswordHash
}

// memTokens is an in-memory ResetTokens.
type memTokens struct {
	mu  sync.Mutex
	seq int
	m   map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{m: make(map[string]string)}
}

func (t *memTokens) Issue(_ context.Context, username string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	token := fmt.Sprintf("token-%d", t.seq)
	t.m[token] = username
	return token, nil
}

func (t *memTokens) Consume(_ context.Context, token string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	username, ok := t.m[token]
	if ok {
		delete(t.m, token)
	}
	return username, ok, nil
}

func newService(r *memRepo) *service.AccountService {
	return service.NewAccountService(r, nil, newMemTokens(), bcrypt.MinCost)
}

func register(t *testing.T, svc *service.AccountService, username, password string) dom.Account {
	t.Helper()
	a, err := svc.Register(context.Background(), username, "NG", "+2348012345678", password)
	require.NoError(t, err)
	return a
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	register(t, svc, "alice01", "Str0ngPass!")

	hash := repo.storedHash("alice01")
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Str0ngPass!", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Str0ngPass!")))
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "NG", "+2348012345678", "pw")
	assert.ErrorIs(t, err, service.ErrMissingFields)
	_, err = svc.Register(ctx, "bob", "", "+2348012345678", "pw")
	assert.ErrorIs(t, err, service.ErrMissingFields)
	_, err = svc.Register(ctx, "bob", "NG", "", "pw")
	assert.ErrorIs(t, err, service.ErrMissingFields)
	_, err = svc.Register(ctx, "bob", "NG", "+2348012345678", "")
	assert.ErrorIs(t, err, service.ErrMissingFields)
	_, err = svc.Register(ctx, "bob", "NG", "not-a-phone", "pw")
	assert.ErrorIs(t, err, service.ErrInvalidPhone)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newService(newMemRepo())

	register(t, svc, "alice01", "Str0ngPass!")

	_, err := svc.Register(context.Background(), "alice01", "KE", "+254700000000", "other")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestRegisterConcurrentDuplicate(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "alice01", "NG", "+2348012345678", "Str0ngPass!")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, service.ErrUsernameTaken):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestVerify(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")

	assert.True(t, svc.Verify(ctx, "alice01", "Str0ngPass!"))
	assert.False(t, svc.Verify(ctx, "alice01", "wrong"))
	assert.False(t, svc.Verify(ctx, "nobody", "Str0ngPass!"))
	assert.False(t, svc.Verify(ctx, "alice01", ""))
}

func TestAuthenticateDistinguishesUnknownAndMismatch(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")

	a, err := svc.Authenticate(ctx, "alice01", "Str0ngPass!")
	require.NoError(t, err)
	assert.Equal(t, "alice01", a.Username)
	assert.Empty(t, a.PasswordHash)

	_, err = svc.Authenticate(ctx, "nobody", "Str0ngPass!")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Authenticate(ctx, "alice01", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestGetStripsHash(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")

	a, err := svc.Get(ctx, "alice01")
	require.NoError(t, err)
	assert.Equal(t, "alice01", a.Username)
	assert.Equal(t, "NG", a.Country)
	assert.Empty(t, a.PasswordHash)

	_, err = svc.Get(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateWithoutPasswordKeepsHash(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")
	before := repo.storedHash("alice01")

	country := "KE"
	a, err := svc.Update(ctx, "alice01", &country, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "KE", a.Country)

	assert.Equal(t, before, repo.storedHash("alice01"))
	assert.True(t, svc.Verify(ctx, "alice01", "Str0ngPass!"))
}

func TestUpdatePasswordRotatesHash(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")
	before := repo.storedHash("alice01")

	newPassword := "EvenB3tter!"
	_, err := svc.Update(ctx, "alice01", nil, nil, &newPassword)
	require.NoError(t, err)

	assert.NotEqual(t, before, repo.storedHash("alice01"))
	assert.True(t, svc.Verify(ctx, "alice01", "EvenB3tter!"))
	assert.False(t, svc.Verify(ctx, "alice01", "Str0ngPass!"))
}

func TestUpdateNotFound(t *testing.T) {
	svc := newService(newMemRepo())

	country := "KE"
	_, err := svc.Update(context.Background(), "nobody", &country, nil, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")

	require.NoError(t, svc.Delete(ctx, "alice01"))

	_, err := svc.Get(ctx, "alice01")
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "alice01"), service.ErrNotFound)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	register(t, svc, "alice01", "Str0ngPass!")

	token, err := svc.RequestPasswordReset(ctx, "alice01")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "Fresh1Pass!"))
	assert.True(t, svc.Verify(ctx, "alice01", "Fresh1Pass!"))
	assert.False(t, svc.Verify(ctx, "alice01", "Str0ngPass!"))

	// Tokens are single use.
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "Again2Pass!"), service.ErrInvalidResetToken)
}

func TestPasswordResetUnknownUserAndToken(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	_, err := svc.RequestPasswordReset(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "bogus", "pw"), service.ErrInvalidResetToken)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "", "pw"), service.ErrMissingFields)
}
