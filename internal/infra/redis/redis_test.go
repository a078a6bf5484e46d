//go:build !integration

package redis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/security"
)

// fakeClient is an in-memory RedisClient; expiry is recorded, not enforced.
type fakeClient struct {
	mu   sync.Mutex
	kv   map[string]string
	ttls map[string]time.Duration
}

func newFakeClient() *fakeClient {
	return &fakeClient{kv: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = toString(value)
	f.ttls[key] = exp
	return nil
}

func (f *fakeClient) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.kv[key]; ok {
		return false, nil
	}
	f.kv[key] = toString(value)
	f.ttls[key] = exp
	return true, nil
}

func (f *fakeClient) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	if !ok {
		return "", ErrNil
	}
	return v, nil
}

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.kv[key])) + 1
	f.kv[key] = strings.Repeat("x", int(n))
	return n, nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = exp
	return nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeClient) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kv[key] != value {
		return false, nil
	}
	delete(f.kv, key)
	return true, nil
}

func (f *fakeClient) Close() error { return nil }

func newSealer(t *testing.T) *security.Sealer {
	t.Helper()
	s, err := security.NewSealer("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return s
}

func TestSignupStateRepo(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	repo := NewSignupStateRepo(client, newSealer(t), 5*time.Minute)

	st, _ := model.NewSignupSession("01HX", time.Now())
	_ = st.SetCredentials("a@b.com", "x", "ann")

	if err := repo.SetState(ctx, st); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	raw := client.kv["signup_state:01HX"]
	if raw == "" {
		t.Fatal("expected state under signup_state:01HX")
	}
	if strings.Contains(raw, `"password":"x"`) {
		t.Error("password must not be stored in clear text")
	}
	if client.ttls["signup_state:01HX"] != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %v", client.ttls["signup_state:01HX"])
	}
	if st.Form.Password != "x" {
		t.Error("SetState must not mutate the caller's session")
	}

	got, err := repo.GetState(ctx, "01HX")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if got.Form.Password != "x" || got.Form.Email != "a@b.com" || got.Stage != model.StageCredentials {
		t.Errorf("unexpected round trip: %+v", got)
	}

	if err := repo.ClearState(ctx, "01HX"); err != nil {
		t.Fatalf("ClearState failed: %v", err)
	}
	if _, err := repo.GetState(ctx, "01HX"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after clear, got %v", err)
	}
}

func TestAuthSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthSessionRepo(newFakeClient())

	s := &repository.AuthSession{ID: "jti-1", UserID: "u-1", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Put(ctx, s); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := repo.Get(ctx, "jti-1")
	if err != nil || got.UserID != "u-1" {
		t.Fatalf("Get returned %+v, %v", got, err)
	}
	_ = repo.Delete(ctx, "jti-1")
	if _, err := repo.Get(ctx, "jti-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized after delete, got %v", err)
	}

	expired := &repository.AuthSession{ID: "jti-2", ExpiresAt: time.Now().Add(-time.Second)}
	if err := repo.Put(ctx, expired); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an expired session, got %v", err)
	}
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker(newFakeClient(), time.Second)

	tok, err := l.TryLock(ctx, "signup_lock:1")
	if err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}
	if _, err := l.TryLock(ctx, "signup_lock:1"); !errors.Is(err, domain.ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight while held, got %v", err)
	}
	if err := l.Unlock(ctx, "signup_lock:1", "someone-else"); err != nil {
		t.Fatalf("Unlock with foreign token errored: %v", err)
	}
	if _, err := l.TryLock(ctx, "signup_lock:1"); err == nil {
		t.Error("a foreign token must not release the lock")
	}
	_ = l.Unlock(ctx, "signup_lock:1", tok)
	if _, err := l.TryLock(ctx, "signup_lock:1"); err != nil {
		t.Errorf("expected lock to be free after owner unlock, got %v", err)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	rl := NewRateLimiter(client)

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "k", 2, time.Minute)
		if err != nil || !ok {
			t.Fatalf("hit %d should pass: %v %v", i+1, ok, err)
		}
	}
	if ok, _ := rl.Allow(ctx, "k", 2, time.Minute); ok {
		t.Error("third hit should be limited")
	}
	if client.ttls["k"] != time.Minute {
		t.Errorf("expected window to be set on first hit, got %v", client.ttls["k"])
	}
}
