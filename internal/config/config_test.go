// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
)

// configEnvVars lists every variable Load reads. Tests set them to ""
// (treated the same as unset by envOrDefault) to get pure defaults.
var configEnvVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET",
	"RENDERER_URL", "RENDERER_TIMEOUT",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s: got %q, want %q", field, got, want)
		}
	}
	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("DBHost", cfg.DBHost, "localhost")
	check("DBUser", cfg.DBUser, "contractd")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("RedisHost", cfg.RedisHost, "localhost")
	check("RedisPort", cfg.RedisPort, "6379")
	check("S3Region", cfg.S3Region, "fsn1")
	check("S3Bucket", cfg.S3Bucket, "contractd-documents")
	check("RendererTimeout", cfg.RendererTimeout, "60")
}

func TestLoad_ProductionRequiresDBPassword(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for default password in production")
	}
	if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Errorf("unexpected error: %v", err)
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with password: %v", err)
	}
	if cfg.DBPassword != "s3cret" {
		t.Errorf("DBPassword: got %q", cfg.DBPassword)
	}
}

func TestDSNAndAddr(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "contracts")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	wantDSN := "postgres://app:pw@db.internal:5432/contracts?sslmode=disable"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN: got %q, want %q", got, wantDSN)
	}
	if got := cfg.Addr(); got != "0.0.0.0:9090" {
		t.Errorf("Addr: got %q", got)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
}
