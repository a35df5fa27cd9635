package service

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgcrypto "github.com/resync-lab/resync-server/internal/crypto"
	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/limiter"
	"github.com/resync-lab/resync-server/internal/model"
	"github.com/resync-lab/resync-server/internal/repository"
	"github.com/resync-lab/resync-server/internal/token"
)

type fakeUsers struct {
	byName map[string]*model.User
	nextID int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) ListOthers(_ context.Context, excludeID int64) ([]model.PublicUser, error) {
	out := []model.PublicUser{}
	for _, u := range f.byName {
		if u.ID == excludeID {
			continue
		}
		out = append(out, model.PublicUser{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func newIssuer(ttl time.Duration) *token.Issuer {
	return token.NewIssuer([]byte("test-key"), ttl)
}

func mustRegister(t *testing.T, s *AuthServiceImpl, username, password string) *model.User {
	t.Helper()
	u, err := s.Register(context.Background(), username, password)
	if err != nil {
		t.Fatalf("Register(%q): %v", username, err)
	}
	return u
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	s := NewAuthService(users, newIssuer(time.Minute), &fakeLimiter{})

	if _, err := s.Register(context.Background(), "", ""); err == nil {
		t.Fatalf("want validation error on empty username/password")
	}

	u := mustRegister(t, s, "alice", "pw1")
	if u.ID == 0 {
		t.Fatalf("missing user id")
	}
	if u.PasswordHash == "pw1" || u.PasswordHash == "" {
		t.Fatalf("plaintext stored or hash empty")
	}
	if !pkgcrypto.VerifyPassword("pw1", u.PasswordHash) {
		t.Fatalf("stored hash does not verify")
	}

	if _, err := s.Register(context.Background(), "alice", "pw2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}
	if len(users.byName) != 1 {
		t.Fatalf("duplicate register created a second record")
	}

	users.createErr = errors.New("boom")
	if _, err := s.Register(context.Background(), "bob", "pw"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_LoginWithIP_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(users, newIssuer(2*time.Minute), lim)
	mustRegister(t, s, "alice", "correct")

	lim.allowErr = errors.New("lim-err")
	if _, err := s.LoginWithIP(context.Background(), "alice", "correct", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, err := s.LoginWithIP(context.Background(), "alice", "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	wrongUserErr := func() error {
		_, err := s.LoginWithIP(context.Background(), "nobody", "x", "")
		return err
	}()
	wrongPassErr := func() error {
		_, err := s.LoginWithIP(context.Background(), "alice", "wrong", "")
		return err
	}()
	// unknown username and wrong password must fail identically
	if !errors.Is(wrongUserErr, errs.ErrInvalidCredentials) || !errors.Is(wrongPassErr, errs.ErrInvalidCredentials) {
		t.Fatalf("want uniform ErrInvalidCredentials, got %v / %v", wrongUserErr, wrongPassErr)
	}

	lim.failBlocked = true
	if _, err := s.LoginWithIP(context.Background(), "alice", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	lim.failBlocked = false

	tok, err := s.LoginWithIP(context.Background(), "alice", "correct", "127.0.0.1:123")
	if err != nil {
		t.Fatalf("LoginWithIP success: %v", err)
	}
	if tok.AccessToken == "" || tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad token: %+v", tok)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_Authenticate(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(users, newIssuer(time.Minute), lim)
	alice := mustRegister(t, s, "alice", "pw")

	tok, err := s.LoginWithIP(context.Background(), "alice", "pw", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := s.Authenticate(context.Background(), tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != alice.ID || u.Username != "alice" {
		t.Fatalf("wrong user resolved: %+v", u)
	}

	if _, err := s.Authenticate(context.Background(), "garbage"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for garbage token, got %v", err)
	}

	// expired token
	expired := NewAuthService(users, newIssuer(-time.Second), lim)
	etok, err := expired.LoginWithIP(context.Background(), "alice", "pw", "")
	if err != nil {
		t.Fatalf("login (expired issuer): %v", err)
	}
	if _, err := s.Authenticate(context.Background(), etok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for expired token, got %v", err)
	}

	// subject vanished after issuance
	delete(users.byName, "alice")
	if _, err := s.Authenticate(context.Background(), tok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for vanished subject, got %v", err)
	}
}

func TestAuth_ListOtherUsers_ExcludesCaller(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byName: map[string]*model.User{}}
	s := NewAuthService(users, newIssuer(time.Minute), &fakeLimiter{allowOK: true})
	alice := mustRegister(t, s, "alice", "pw")
	mustRegister(t, s, "bob", "pw")

	out, err := s.ListOtherUsers(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListOtherUsers: %v", err)
	}
	if len(out) != 1 || out[0].Username != "bob" {
		t.Fatalf("unexpected listing: %+v", out)
	}
}
