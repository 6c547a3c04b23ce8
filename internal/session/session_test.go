package session

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testRedisClient returns a client connected to the test Redis.
// Skips the test if Redis is unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("REDIS_HOST", "localhost")
	port := envOr("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "token:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestTokenCreateAndGet(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)
	ctx := context.Background()

	data := &Data{
		UserID:      uuid.New(),
		Email:       "test@token.local",
		DisplayName: "Test User",
		Role:        "admin",
	}

	token, err := store.Create(ctx, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(token) != tokenLength*2 {
		t.Errorf("token length: got %d, want %d", len(token), tokenLength*2)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected session data, got nil")
	}
	if retrieved.Email != "test@token.local" {
		t.Errorf("email: got %q", retrieved.Email)
	}
	if retrieved.UserID != data.UserID {
		t.Errorf("userID: got %s, want %s", retrieved.UserID, data.UserID)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestTokenGetNoHeader(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (no header): %v", err)
	}
	if data != nil {
		t.Error("expected nil for request without Authorization header")
	}
}

func TestTokenGetUnknown(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer deadbeefdeadbeef")

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (unknown): %v", err)
	}
	if data != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestTokenUpdate(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)
	ctx := context.Background()

	data := &Data{
		UserID: uuid.New(),
		Email:  "update@token.local",
		Role:   "user",
	}
	token, _ := store.Create(ctx, data)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	data.TwoFADone = true
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	retrieved, _ := store.Get(ctx, req)
	if retrieved == nil {
		t.Fatal("expected session after update")
	}
	if !retrieved.TwoFADone {
		t.Error("expected TwoFADone=true after update")
	}
}

func TestTokenUpdateNoHeader(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)

	req := httptest.NewRequest("GET", "/", nil)
	if err := store.Update(context.Background(), req, &Data{}); err == nil {
		t.Error("expected error when updating without bearer token")
	}
}

func TestTokenDestroy(t *testing.T) {
	client := testRedisClient(t)
	store := NewStore(client)
	ctx := context.Background()

	token, _ := store.Create(ctx, &Data{
		UserID: uuid.New(),
		Email:  "destroy@token.local",
		Role:   "admin",
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if err := store.Destroy(ctx, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	retrieved, _ := store.Get(ctx, req)
	if retrieved != nil {
		t.Error("expected nil after destroy")
	}

	// Destroy without a token is a no-op.
	if err := store.Destroy(ctx, httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Errorf("Destroy (no token): %v", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		if got := TokenFromRequest(req); got != c.want {
			t.Errorf("header %q: got %q, want %q", c.header, got, c.want)
		}
	}
}
