package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const devJWTSecret = "parkwatch-dev-secret"

type Config struct {
	MongoURI       string
	MongoDB        string
	Port           string
	Environment    string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	ImageDir       string
	PublicBaseURL  string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can feed a map.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		MongoURI:      getenv("MONGO_URI"),
		MongoDB:       getenv("MONGO_DB"),
		Port:          strings.TrimPrefix(getenv("PORT"), ":"),
		Environment:   getenv("ENV"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET"),
		ImageDir:      getenv("IMAGE_DIR"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required but not set")
	}
	if cfg.Port == "" {
		cfg.Port = "3001"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = "static/images"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	cfg.CORSOrigins = []string{"*"}
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	cfg.RateLimitRPS = 5
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	cfg.RateLimitBurst = 10
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", v)
		}
		cfg.RateLimitBurst = burst
	}

	return cfg, nil
}

// ValidateServer checks what only the HTTP server needs; offline tools skip it.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr is the listen address for net/http.
func (c *Config) Addr() string {
	return ":" + c.Port
}
