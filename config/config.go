package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultBraveSearchURL = "https://api.search.brave.com/res/v1/web/search"
	DefaultFetchMaxChars  = 20000
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxIters       = 10
	DefaultLogLevel       = "info"
	DefaultEnvFile        = ".env"
)

type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	BraveAPIKey     string
	BraveSearchURL  string
	BraveMaxRetries int

	FetchMaxChars       int
	FetchTimeout        time.Duration
	FetchAllowedDomains []string
	FetchBlockedDomains []string

	MaxIters int
	LogLevel string
}

func Default() *Config {
	return &Config{
		Model:          DefaultModel,
		BraveSearchURL: DefaultBraveSearchURL,
		FetchMaxChars:  DefaultFetchMaxChars,
		FetchTimeout:   DefaultFetchTimeout,
		MaxIters:       DefaultMaxIters,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads the given env files (default .env) without overriding
// variables already set in the process, then builds the config from the
// environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }

	cfg.OpenAIAPIKey = get("OPENAI_API_KEY")
	cfg.BraveAPIKey = get("BRAVE_API_KEY")
	var missing []string
	if cfg.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if cfg.BraveAPIKey == "" {
		missing = append(missing, "BRAVE_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if v := get("MODEL_NAME"); v != "" {
		cfg.Model = normalizeModel(v)
	}
	cfg.OpenAIBaseURL = get("OPENAI_BASE_URL")
	if v := get("BRAVE_SEARCH_URL"); v != "" {
		cfg.BraveSearchURL = v
	}
	if v := get("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.FetchAllowedDomains = splitList(getenv("FETCH_ALLOWED_DOMAINS"))
	cfg.FetchBlockedDomains = splitList(getenv("FETCH_BLOCKED_DOMAINS"))

	var errs []error
	intVar := func(key string, dst *int, min int) {
		v := get(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < min {
			errs = append(errs, fmt.Errorf("%s: expected integer >= %d, got %q", key, min, v))
			return
		}
		*dst = n
	}
	intVar("BRAVE_MAX_RETRIES", &cfg.BraveMaxRetries, 0)
	intVar("FETCH_MAX_CHARS", &cfg.FetchMaxChars, 1)
	intVar("AGENT_MAX_ITERS", &cfg.MaxIters, 1)
	timeoutSec := int(DefaultFetchTimeout / time.Second)
	intVar("FETCH_TIMEOUT_SEC", &timeoutSec, 1)
	cfg.FetchTimeout = time.Duration(timeoutSec) * time.Second

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteEnvFile persists values in dotenv format, merged over whatever the
// file already holds.
func WriteEnvFile(path string, values map[string]string) error {
	merged := map[string]string{}
	if existing, err := godotenv.Read(path); err == nil {
		for k, v := range existing {
			merged[k] = v
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		merged[k] = strings.TrimSpace(v)
	}
	if err := godotenv.Write(merged, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// normalizeModel accepts "openai/<model>" as well as a bare model name.
func normalizeModel(m string) string {
	m = strings.TrimSpace(m)
	if rest, ok := strings.CutPrefix(strings.ToLower(m), "openai/"); ok && rest != "" {
		return m[len("openai/"):]
	}
	return m
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
