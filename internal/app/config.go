package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/yungbote/learnsphere-backend/internal/data/db"
	"github.com/yungbote/learnsphere-backend/internal/learning/prompts"
	"github.com/yungbote/learnsphere-backend/internal/observability"
	"github.com/yungbote/learnsphere-backend/internal/platform/gcp"
	"github.com/yungbote/learnsphere-backend/internal/platform/gemini"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

const maxConfigFileSize = 1 << 20

var errConfigTooLarge = errors.New("config file exceeds 1 MiB")

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port    string
	Env     string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DB      db.Config
	Gemini  gemini.Config
	Storage storage.Config
	OCR     gcp.OCRConfig
	Otel    observability.OtelConfig

	RedisAddr      string
	LeaseTTL       time.Duration
	DefaultCredits int
	PromptBudget   prompts.Budget
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Production reports whether error details must be masked.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadConfig layers .env, the optional LEARNSPHERE_CONFIG yaml file and the
// process environment, in increasing precedence.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Could not read .env file", "error", err)
	}

	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("LEARNSPHERE_CONFIG")); path != "" {
		if err := loadYAMLFile(k, path); err != nil {
			log.Warn("Skipping config file", "path", path, "error", err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		log.Warn("Could not load environment variables", "error", err)
	}
	return configFrom(k)
}

// envKey lowercases variable names and drops empty values so they cannot
// blank out keys set by the config file.
func envKey(key, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(key), value
}

func loadYAMLFile(k *koanf.Koanf, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxConfigFileSize {
		return errConfigTooLarge
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return k.Load(rawbytes.Provider(content), yaml.Parser())
}

func configFrom(k *koanf.Koanf) Config {
	nodeEnv := str(k, "node_env", "development")
	logMode := str(k, "log_mode", "")
	if logMode == "" {
		logMode = nodeEnv
	}

	return Config{
		Port:    str(k, "port", "8080"),
		Env:     nodeEnv,
		LogMode: logMode,

		JWTSecretKey:    str(k, "jwt_secret_key", "defaultsecret"),
		AccessTokenTTL:  seconds(k, "access_token_ttl", 3600),
		RefreshTokenTTL: seconds(k, "refresh_token_ttl", 86400),

		DB: db.Config{
			Driver:           str(k, "db_driver", "postgres"),
			PostgresHost:     str(k, "postgres_host", "localhost"),
			PostgresPort:     str(k, "postgres_port", "5432"),
			PostgresUser:     str(k, "postgres_user", "postgres"),
			PostgresPassword: str(k, "postgres_password", ""),
			PostgresName:     str(k, "postgres_name", "learnsphere"),
			SQLitePath:       str(k, "sqlite_path", "learnsphere.db"),
		},
		Gemini: gemini.Config{
			Provider:        str(k, "llm_provider", "gemini"),
			APIKey:          str(k, "gemini_api_key", ""),
			Model:           str(k, "gemini_model", gemini.DefaultModel),
			BaseURL:         str(k, "gemini_base_url", gemini.DefaultBaseURL),
			Timeout:         seconds(k, "gemini_timeout_seconds", 120),
			RateRPS:         float(k, "gemini_rate_limit_rps", 2),
			RateBurst:       integer(k, "gemini_rate_limit_burst", 4),
			Temperature:     float(k, "gemini_temperature", 0.3),
			VertexProjectID: str(k, "vertex_project_id", ""),
			VertexRegion:    str(k, "vertex_region", "us-central1"),
		},
		Storage: storage.Config{
			Mode:         storage.Mode(str(k, "storage_mode", string(storage.ModeLocal))),
			LocalDir:     str(k, "storage_local_dir", "./uploads"),
			BucketName:   str(k, "gcs_bucket_name", ""),
			EmulatorHost: str(k, "storage_emulator_host", ""),
		},
		OCR: gcp.OCRConfig{
			ProjectID:   str(k, "documentai_project_id", ""),
			Location:    str(k, "documentai_location", "us"),
			ProcessorID: str(k, "documentai_processor_id", ""),
		},
		Otel: observability.OtelConfig{
			ServiceName: str(k, "otel_service_name", "learnsphere-backend"),
			Environment: nodeEnv,
			Version:     str(k, "app_version", ""),
			Enabled:     k.Bool("otel_enabled"),
			Endpoint:    str(k, "otel_exporter_otlp_endpoint", ""),
			Insecure:    k.Bool("otel_exporter_otlp_insecure"),
			Headers:     observability.ParseHeaders(k.String("otel_exporter_otlp_headers")),
			SampleRatio: float(k, "otel_sampler_ratio", 0.1),
		},

		RedisAddr:      str(k, "redis_addr", ""),
		LeaseTTL:       duration(k, "generation_lease_ttl", 10*time.Minute),
		DefaultCredits: integer(k, "default_credits", 10),
		PromptBudget: prompts.Budget{
			CharBudget:     integer(k, "prompt_char_budget", prompts.DefaultCharBudget),
			ChunkChars:     integer(k, "prompt_chunk_chars", 20000),
			MapConcurrency: integer(k, "prompt_map_concurrency", 3),
		},
		MaxUploadBytes: int64(integer(k, "max_upload_mb", 25)) << 20,
		AllowedOrigins: list(k, "cors_allowed_origins", defaultAllowedOrigins),
	}
}

func str(k *koanf.Koanf, key, def string) string {
	if v := strings.TrimSpace(k.String(key)); v != "" {
		return v
	}
	return def
}

func integer(k *koanf.Koanf, key string, def int) int {
	if !k.Exists(key) || strings.TrimSpace(k.String(key)) == "" {
		return def
	}
	if v := k.Int(key); v > 0 {
		return v
	}
	return def
}

func float(k *koanf.Koanf, key string, def float64) float64 {
	if !k.Exists(key) || strings.TrimSpace(k.String(key)) == "" {
		return def
	}
	if v := k.Float64(key); v > 0 {
		return v
	}
	return def
}

func seconds(k *koanf.Koanf, key string, def int) time.Duration {
	return time.Duration(integer(k, key, def)) * time.Second
}

// duration accepts Go duration strings ("10m") or bare seconds.
func duration(k *koanf.Koanf, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if v := k.Int(key); v > 0 {
		return time.Duration(v) * time.Second
	}
	return def
}

func list(k *koanf.Koanf, key string, def []string) []string {
	var parts []string
	switch v := k.Get(key).(type) {
	case []interface{}, []string:
		parts = k.Strings(key)
	case string:
		parts = strings.Split(v, ",")
	}
	var out []string
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
