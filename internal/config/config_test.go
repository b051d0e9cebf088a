package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("PORT", "")

	cfg := Load()

	if cfg.StoreDriver != "postgres" {
		t.Fatalf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if cfg.StoreDriver != "memory" {
		t.Fatalf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.JWTTTL != 15*time.Minute {
		t.Fatalf("JWTTTL = %v, want 15m", cfg.JWTTTL)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("STORE_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want fallback 8080", cfg.Port)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Fatalf("StoreTimeout = %v, want fallback 3s", cfg.StoreTimeout)
	}
}

func TestMailgunEnabled(t *testing.T) {
	cfg := Config{MailgunDomain: "mg.example", MailgunAPIKey: "key", MailgunSender: "noreply@mg.example"}
	if cfg.MailgunEnabled() {
		t.Fatalf("expected disabled without inbox")
	}

	cfg.ContactInbox = "team@example.com"
	if !cfg.MailgunEnabled() {
		t.Fatalf("expected enabled")
	}
}

func TestValidate_JWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{name: "dev_default", env: "dev", secret: devJWTSecret},
		{name: "test_empty", env: "test", secret: ""},
		{name: "prod_default", env: "prod", secret: devJWTSecret, wantErr: true},
		{name: "prod_empty", env: "prod", secret: "", wantErr: true},
		{name: "staging_default", env: "staging", secret: devJWTSecret, wantErr: true},
		{name: "prod_private", env: "prod", secret: "s3cr3t-from-vault"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{Env: tt.env, JWTSecret: tt.secret}.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_UnsetSecretFailsOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")

	if err := Load().Validate(); err == nil {
		t.Fatalf("expected unset JWT_SECRET to be rejected in prod")
	}
}
