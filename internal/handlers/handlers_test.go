// handlers_test.go provides shared fixtures for handler integration
// tests. Tests are skipped if PostgreSQL is not available.
package handlers

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"contractd/internal/authz"
	"contractd/internal/contracts"
	"contractd/internal/database"
	"contractd/internal/middleware"
	"contractd/internal/models"
	"contractd/internal/session"
	"contractd/internal/store"
	"contractd/internal/templates"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "contractd")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "contractd")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	email := "test-" + uuid.NewString()[:8] + "@contractd.test"
	u, err := store.NewUserStore(db).Create(email, "password123", "Test User", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// asUser returns a context carrying a fully authenticated session for
// the given user, as LoadSession would have produced.
func asUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, &session.Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		TwoFADone:   true,
	})
}

func testTemplateService(db *sql.DB) *templates.Service {
	return templates.NewService(store.NewTemplateStore(db), authz.NewPolicy(), nil)
}

func testContractService(db *sql.DB) *contracts.Service {
	return contracts.NewService(contracts.DBStores{
		Contracts: store.NewContractStore(db),
		Templates: store.NewTemplateStore(db),
		Documents: store.NewDocumentStore(db),
	}, authz.NewPolicy(), nil, nil)
}
