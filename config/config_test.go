package config

import "testing"

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"MONGO_URI": "mongodb://localhost:27017/parking"}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.Addr() != ":3001" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.PublicBaseURL != "http://localhost:3001" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestFromEnvRequiresMongoURI(t *testing.T) {
	if _, err := FromEnv(env(nil)); err == nil {
		t.Fatal("expected error without MONGO_URI")
	}
}

func TestProductionSecretOnlyForServer(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"MONGO_URI": "mongodb://db", "ENV": "production"}))
	if err != nil {
		t.Fatalf("FromEnv without JWT_SECRET: %v", err)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret = %q, want no dev fallback in production", cfg.JWTSecret)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected server validation to require JWT_SECRET in production")
	}

	cfg, err = FromEnv(env(map[string]string{"MONGO_URI": "mongodb://db", "ENV": "production", "JWT_SECRET": "s"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer: %v", err)
	}
}

func TestDevelopmentServerUsesFallbackSecret(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"MONGO_URI": "mongodb://db"}))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"MONGO_URI":        "mongodb://db",
		"PORT":             ":8080",
		"CORS_ORIGINS":     "https://a.example, https://b.example,",
		"RATE_LIMIT_RPS":   "0.5",
		"RATE_LIMIT_BURST": "3",
		"PUBLIC_BASE_URL":  "https://park.example/",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 3 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.PublicBaseURL != "https://park.example" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
}

func TestFromEnvRejectsBadRate(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"MONGO_URI": "mongodb://db", "RATE_LIMIT_RPS": "fast"}))
	if err == nil {
		t.Fatal("expected error for non-numeric RATE_LIMIT_RPS")
	}
}
