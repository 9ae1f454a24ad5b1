package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when JOBBOARD_CONFIG is unset.
const DefaultPath = "config.yaml"

const (
	defaultPort           = "8080"
	defaultSessionTTL     = 24 * time.Hour
	defaultMaxUploadBytes = 5 << 20
	minJWTSecretBytes     = 32
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"logLevel"`

	DatabaseURL string `yaml:"databaseURL"`

	JWTSecret   string `yaml:"jwtSecret"`
	JWTIssuer   string `yaml:"jwtIssuer"`
	JWTAudience string `yaml:"jwtAudience"`
	JWTLeeway   string `yaml:"jwtLeeway"`
	SessionTTL  string `yaml:"sessionTTL"`
	DemoAuth    bool   `yaml:"demoAuth"`

	RedisAddr                  string   `yaml:"redisAddr"`
	RedisPassword              string   `yaml:"redisPassword"`
	TrustedProxyCIDRs          []string `yaml:"trustedProxyCidrs"`
	CORSAllowedOrigins         []string `yaml:"corsAllowedOrigins"`
	RegisterRateLimitPerMinute int      `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute    int      `yaml:"loginRateLimitPerMinute"`

	AMQPURL      string `yaml:"amqpURL"`
	AMQPExchange string `yaml:"amqpExchange"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	UploadDir         string   `yaml:"uploadDir"`
	UploadPublicURL   string   `yaml:"uploadPublicURL"`
	MaxUploadBytes    int64    `yaml:"maxUploadBytes"`
	AllowedExtensions []string `yaml:"allowedExtensions"`
}

// Path returns the config path from JOBBOARD_CONFIG or DefaultPath.
func Path() string {
	if v := strings.TrimSpace(os.Getenv("JOBBOARD_CONFIG")); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from path, applies environment overrides and validates.
// A missing file is allowed so that the service can run from environment alone.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = Path()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) error {
	strVars := map[string]*string{
		"PORT":                       &cfg.Port,
		"JOBBOARD_ENV":               &cfg.Environment,
		"JOBBOARD_LOG_LEVEL":         &cfg.LogLevel,
		"DATABASE_URL":               &cfg.DatabaseURL,
		"JWT_SECRET":                 &cfg.JWTSecret,
		"JWT_ISSUER":                 &cfg.JWTIssuer,
		"JWT_AUDIENCE":               &cfg.JWTAudience,
		"JWT_LEEWAY":                 &cfg.JWTLeeway,
		"JOBBOARD_SESSION_TTL":       &cfg.SessionTTL,
		"REDIS_ADDR":                 &cfg.RedisAddr,
		"REDIS_PASSWORD":             &cfg.RedisPassword,
		"AMQP_URL":                   &cfg.AMQPURL,
		"AMQP_EXCHANGE":              &cfg.AMQPExchange,
		"MINIO_ENDPOINT":             &cfg.MinioEndpoint,
		"MINIO_ACCESS_KEY":           &cfg.MinioAccessKey,
		"MINIO_SECRET_KEY":           &cfg.MinioSecretKey,
		"MINIO_BUCKET":               &cfg.MinioBucket,
		"JOBBOARD_UPLOAD_DIR":        &cfg.UploadDir,
		"JOBBOARD_UPLOAD_PUBLIC_URL": &cfg.UploadPublicURL,
	}
	for name, target := range strVars {
		if v := os.Getenv(name); v != "" {
			*target = strings.TrimSpace(v)
		}
	}
	boolVars := map[string]*bool{
		"JOBBOARD_DEMO_AUTH": &cfg.DemoAuth,
		"MINIO_USE_SSL":      &cfg.MinioUseSSL,
	}
	for name, target := range boolVars {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
			*target = b
		}
	}
	intVars := map[string]*int{
		"JOBBOARD_REGISTER_RATE_LIMIT_PER_MINUTE": &cfg.RegisterRateLimitPerMinute,
		"JOBBOARD_LOGIN_RATE_LIMIT_PER_MINUTE":    &cfg.LoginRateLimitPerMinute,
	}
	for name, target := range intVars {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
			*target = n
		}
	}
	if v := os.Getenv("JOBBOARD_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: JOBBOARD_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("JOBBOARD_ALLOWED_EXTENSIONS"); v != "" {
		cfg.AllowedExtensions = splitCSV(v)
	}
	if v := os.Getenv("JOBBOARD_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("JOBBOARD_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitCSV(v)
	}
	return nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".pdf", ".doc", ".docx"}
	}
	for i, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.AllowedExtensions[i] = ext
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "data/uploads"
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
}

// IsProduction reports whether the environment is production.
func (c FileConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SessionDuration returns the token TTL, 24h when unset.
func (c FileConfig) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return defaultSessionTTL
	}
	return d
}

// Leeway returns the JWT clock-skew allowance; zero means the store default.
func (c FileConfig) Leeway() time.Duration {
	d, _ := time.ParseDuration(c.JWTLeeway)
	return d
}

func validateConfig(cfg FileConfig) error {
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("config: port must be numeric, got %q", cfg.Port)
	}
	if len(cfg.JWTSecret) < minJWTSecretBytes {
		return fmt.Errorf("config: jwtSecret is required and must be at least %d bytes (set in config.yaml or JWT_SECRET)", minJWTSecretBytes)
	}
	if cfg.SessionTTL != "" {
		if d, err := time.ParseDuration(cfg.SessionTTL); err != nil || d <= 0 {
			return fmt.Errorf("config: invalid sessionTTL %q", cfg.SessionTTL)
		}
	}
	if cfg.JWTLeeway != "" {
		if _, err := time.ParseDuration(cfg.JWTLeeway); err != nil {
			return fmt.Errorf("config: invalid jwtLeeway duration: %w", err)
		}
	}
	if cfg.IsProduction() {
		if cfg.DemoAuth {
			return errors.New("config: demoAuth must not be enabled in production")
		}
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required in production")
		}
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required in production for shared rate limiting and revocation")
		}
	}
	if cfg.RegisterRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	if cfg.MinioEndpoint != "" && (cfg.MinioBucket == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return errors.New("config: minioBucket, minioAccessKey and minioSecretKey are required with minioEndpoint")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
