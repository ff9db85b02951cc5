package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mimics a store-level uniqueness constraint: the check and the
// insert happen under one lock, so concurrent registrations race in the
// "store", never in the service.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Username
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

type stubThrottle struct {
	blocked  bool
	checkErr error
	failures []string
	resets   []string
}

func (t *stubThrottle) TooManyFailures(_ context.Context, _ string) (bool, error) {
	return t.blocked, t.checkErr
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures = append(t.failures, username)
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.resets = append(t.resets, username)
	return nil
}

func newAuthSvc(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, "secret", time.Hour, nil, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	user, err := svc.Register(context.Background(), "alice", "pw1", domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_DefaultRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	user, err := svc.Register(context.Background(), "alice", "pw1", "")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "", "pw", domain.RoleUser); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "", domain.RoleUser); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pw", "superuser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown role, got %v", err)
	}
}

func TestAuthService_Register_HashesAreSalted(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	u1, err := svc.Register(context.Background(), "alice", "same-pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	u2, err := svc.Register(context.Background(), "bob", "same-pw", domain.RoleUser)
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if u1.PasswordHash == u2.PasswordHash {
		t.Fatalf("expected distinct hashes for the same password")
	}
	for _, h := range []string{u1.PasswordHash, u2.PasswordHash} {
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("same-pw")); err != nil {
			t.Fatalf("hash does not verify: %v", err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "bob", "pw", domain.RoleUser); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pw2", domain.RoleUser); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), "racer", "pw", domain.RoleUser)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrUserExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", succeeded)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "carol", "s3cret", domain.RoleAdmin); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "carol" {
		t.Fatalf("expected sub carol, got %v", claims["sub"])
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim")
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "dave", "goodpass", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, errWrongPw := svc.Login(context.Background(), "dave", "badpass")
	_, _, errNoUser := svc.Login(context.Background(), "ghost", "whatever")

	if !errors.Is(errWrongPw, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPw)
	}
	if !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", errNoUser)
	}
	if errWrongPw.Error() != errNoUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPw, errNoUser)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{blocked: true}
	svc := NewAuthService(repo, "secret", time.Hour, throttle, zerolog.Nop())

	if _, _, err := svc.Login(context.Background(), "dave", "pw"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleErrorIsAdvisory(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{checkErr: errors.New("redis down")}
	svc := NewAuthService(repo, "secret", time.Hour, throttle, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "erin", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "erin", "pw"); err != nil {
		t.Fatalf("expected login to succeed despite throttle error, got %v", err)
	}
	if len(throttle.resets) != 1 {
		t.Fatalf("expected one throttle reset, got %d", len(throttle.resets))
	}
}

func TestAuthService_Login_FailureRecorded(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc := NewAuthService(repo, "secret", time.Hour, throttle, zerolog.Nop())

	_, _, _ = svc.Login(context.Background(), "nobody", "pw")
	if len(throttle.failures) != 1 || throttle.failures[0] != "nobody" {
		t.Fatalf("expected recorded failure for nobody, got %v", throttle.failures)
	}
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "frank", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, _, err := svc.Login(context.Background(), "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Username != "frank" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected identity: %+v", user)
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "gina", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Mint a token that expired a minute ago with the same secret.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "gina",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Authenticate_NotYetExpired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "hana", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// One minute before expiry the token must still validate.
	soon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "hana",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := soon.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), signed); err != nil {
		t.Fatalf("expected token to validate, got %v", err)
	}
}

func TestAuthService_Authenticate_TamperedSignature(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "ivan", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ivan",
		"role": domain.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_Authenticate_MissingSubject(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	anon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := anon.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_Authenticate_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), "judy", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, _, err := svc.Login(context.Background(), "judy", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	repo.remove("judy")

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for deleted user, got %v", err)
	}
}
