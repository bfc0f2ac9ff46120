package bootstrap

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minJWTSecretLength = 32

// Config is the resolved runtime configuration for both the API and the
// outbox worker.
type Config struct {
	ServiceName string
	LogLevel    slog.Level

	HTTPPort int
	GRPCPort int
	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies []netip.Prefix

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	JWTIssuer        string
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	BcryptCost       int

	LoginRateLimit          int
	PasswordResetRateLimit  int
	VerificationResendLimit int
	RateLimitWindow         time.Duration

	FrontendURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	UploadDir      string
	MaxUploadBytes int64

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool

	KafkaBrokers []string
	KafkaTopics  map[string]string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`

		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		Issuer          string `yaml:"issuer"`
		AccessTTLHours  int    `yaml:"access_ttl_hours"`
		RefreshTTLDays  int    `yaml:"refresh_ttl_days"`
		BcryptCost      int    `yaml:"bcrypt_cost"`
		FrontendURL     string `yaml:"frontend_url"`
		RateLimitWindow string `yaml:"rate_limit_window"`
	} `yaml:"auth"`
	SMTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		From string `yaml:"from"`
	} `yaml:"smtp"`
	Uploads struct {
		Dir         string `yaml:"dir"`
		MaxBytes    int64  `yaml:"max_bytes"`
		S3Bucket    string `yaml:"s3_bucket"`
		S3Region    string `yaml:"s3_region"`
		S3Endpoint  string `yaml:"s3_endpoint"`
		S3PathStyle bool   `yaml:"s3_path_style"`
	} `yaml:"uploads"`
	Kafka struct {
		Brokers []string          `yaml:"brokers"`
		Topics  map[string]string `yaml:"topics"`
	} `yaml:"kafka"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceName:             "brandhub",
		LogLevel:                slog.LevelInfo,
		HTTPPort:                5000,
		GRPCPort:                9090,
		MaxDBConns:              20,
		JWTIssuer:               "brandhub",
		AccessTokenTTL:          24 * time.Hour,
		RefreshTokenTTL:         7 * 24 * time.Hour,
		BcryptCost:              10,
		LoginRateLimit:          10,
		PasswordResetRateLimit:  5,
		VerificationResendLimit: 5,
		RateLimitWindow:         15 * time.Minute,
		FrontendURL:             "http://localhost:3000",
		SMTPPort:                587,
		UploadDir:               "uploads",
		MaxUploadBytes:          5 << 20,
		S3Region:                "us-east-1",
		KafkaTopics:             map[string]string{},
		OutboxPollInterval:      2 * time.Second,
		OutboxBatchSize:         100,
		OutboxClaimTTL:          30 * time.Second,
		OutboxMaxRetries:        5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if err := applyFile(&cfg, f); err != nil {
			return Config{}, err
		}
	}

	cfg.ServiceName = envOrDefault("SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = envLevel("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = envInt("PORT", envInt("HTTP_PORT", cfg.HTTPPort))
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	if raw := envCSV("TRUSTED_PROXIES", nil); len(raw) > 0 {
		proxies, err := parseTrustedProxies(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.TrustedProxies = proxies
	}
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("DATABASE_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAccessSecret = envOrDefault("JWT_SECRET", cfg.JWTAccessSecret)
	cfg.JWTRefreshSecret = envOrDefault("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret)
	cfg.AccessTokenTTL = time.Duration(envInt("JWT_EXPIRY_HOURS", int(cfg.AccessTokenTTL.Hours()))) * time.Hour
	cfg.RefreshTokenTTL = time.Duration(envInt("JWT_REFRESH_EXPIRY_DAYS", int(cfg.RefreshTokenTTL.Hours()/24))) * 24 * time.Hour
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)

	cfg.LoginRateLimit = envInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	cfg.PasswordResetRateLimit = envInt("PASSWORD_RESET_RATE_LIMIT", cfg.PasswordResetRateLimit)
	cfg.VerificationResendLimit = envInt("VERIFICATION_RESEND_RATE_LIMIT", cfg.VerificationResendLimit)
	cfg.RateLimitWindow = envDuration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	cfg.FrontendURL = envOrDefault("FRONTEND_URL", cfg.FrontendURL)
	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = envOrDefault("SMTP_USER", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASS", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	cfg.UploadDir = envOrDefault("UPLOAD_DIR", cfg.UploadDir)
	cfg.MaxUploadBytes = int64(envInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.S3Bucket = envOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = envOrDefault("S3_REGION", envOrDefault("AWS_REGION", cfg.S3Region))
	cfg.S3Endpoint = envOrDefault("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKeyID = envOrDefault("S3_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = envOrDefault("S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)
	cfg.S3UsePathStyle = envBool("S3_USE_PATH_STYLE", cfg.S3UsePathStyle)

	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopics = envMap("KAFKA_TOPICS", cfg.KafkaTopics)

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if len(cfg.JWTAccessSecret) < minJWTSecretLength || len(cfg.JWTRefreshSecret) < minJWTSecretLength {
		return Config{}, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be at least %d bytes", minJWTSecretLength)
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return Config{}, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return cfg, nil
}

func applyFile(cfg *Config, f configFile) error {
	if f.Service.Name != "" {
		cfg.ServiceName = f.Service.Name
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Service.LogLevel != "" {
		cfg.LogLevel = parseLevel(f.Service.LogLevel, cfg.LogLevel)
	}
	if len(f.Service.TrustedProxies) > 0 {
		proxies, err := parseTrustedProxies(f.Service.TrustedProxies)
		if err != nil {
			return err
		}
		cfg.TrustedProxies = proxies
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Auth.Issuer != "" {
		cfg.JWTIssuer = f.Auth.Issuer
	}
	if f.Auth.AccessTTLHours > 0 {
		cfg.AccessTokenTTL = time.Duration(f.Auth.AccessTTLHours) * time.Hour
	}
	if f.Auth.RefreshTTLDays > 0 {
		cfg.RefreshTokenTTL = time.Duration(f.Auth.RefreshTTLDays) * 24 * time.Hour
	}
	if f.Auth.BcryptCost > 0 {
		cfg.BcryptCost = f.Auth.BcryptCost
	}
	if f.Auth.FrontendURL != "" {
		cfg.FrontendURL = f.Auth.FrontendURL
	}
	if f.Auth.RateLimitWindow != "" {
		window, err := time.ParseDuration(f.Auth.RateLimitWindow)
		if err != nil {
			return fmt.Errorf("parse auth.rate_limit_window: %w", err)
		}
		cfg.RateLimitWindow = window
	}
	if f.SMTP.Host != "" {
		cfg.SMTPHost = f.SMTP.Host
	}
	if f.SMTP.Port > 0 {
		cfg.SMTPPort = f.SMTP.Port
	}
	if f.SMTP.From != "" {
		cfg.SMTPFrom = f.SMTP.From
	}
	if f.Uploads.Dir != "" {
		cfg.UploadDir = f.Uploads.Dir
	}
	if f.Uploads.MaxBytes > 0 {
		cfg.MaxUploadBytes = f.Uploads.MaxBytes
	}
	if f.Uploads.S3Bucket != "" {
		cfg.S3Bucket = f.Uploads.S3Bucket
	}
	if f.Uploads.S3Region != "" {
		cfg.S3Region = f.Uploads.S3Region
	}
	if f.Uploads.S3Endpoint != "" {
		cfg.S3Endpoint = f.Uploads.S3Endpoint
	}
	if f.Uploads.S3PathStyle {
		cfg.S3UsePathStyle = true
	}
	if len(f.Kafka.Brokers) > 0 {
		cfg.KafkaBrokers = f.Kafka.Brokers
	}
	for event, topic := range f.Kafka.Topics {
		cfg.KafkaTopics[event] = topic
	}
	return nil
}

// parseTrustedProxies accepts CIDR ranges and bare addresses.
func parseTrustedProxies(raw []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envLevel(name string, fallback slog.Level) slog.Level {
	return parseLevel(os.Getenv(name), fallback)
}

func parseLevel(raw string, fallback slog.Level) slog.Level {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return fallback
	}
	return level
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}

// envMap parses "key=value,key=value" pairs on top of fallback.
func envMap(name string, fallback map[string]string) map[string]string {
	out := make(map[string]string, len(fallback))
	for k, v := range fallback {
		out[k] = v
	}
	for _, pair := range envCSV(name, nil) {
		key, value, ok := strings.Cut(pair, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
