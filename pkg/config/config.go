package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Upload        UploadConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BATISERV_APP_ENV" required:"true"`
	Port         string `envconfig:"BATISERV_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BATISERV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BATISERV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BATISERV_DB_DSN"`
	Driver string `envconfig:"BATISERV_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BATISERV_DB_HOST"`
	Port     int    `envconfig:"BATISERV_DB_PORT" default:"5432"`
	User     string `envconfig:"BATISERV_DB_USER"`
	Password string `envconfig:"BATISERV_DB_PASSWORD"`
	Name     string `envconfig:"BATISERV_DB_NAME"`
	SSLMode  string `envconfig:"BATISERV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BATISERV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BATISERV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BATISERV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BATISERV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BATISERV_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BATISERV_REDIS_ADDR"`
	Password     string        `envconfig:"BATISERV_REDIS_PASSWORD"`
	DB           int           `envconfig:"BATISERV_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BATISERV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BATISERV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BATISERV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BATISERV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BATISERV_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BATISERV_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BATISERV_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BATISERV_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BATISERV_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
	ResetTokenTTLMinutes   int    `envconfig:"BATISERV_RESET_TOKEN_TTL_MINUTES" default:"60"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// ResetTokenTTL returns how long a password reset token stays valid.
func (j JWTConfig) ResetTokenTTL() time.Duration {
	if j.ResetTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ResetTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BATISERV_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BATISERV_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BATISERV_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BATISERV_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BATISERV_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BATISERV_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BATISERV_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BATISERV_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"BATISERV_GCS_BUCKET_NAME" required:"true"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"BATISERV_MAX_UPLOAD_MB" default:"25"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BATISERV_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BATISERV_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BATISERV_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BATISERV_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BATISERV_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BATISERV_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BATISERV_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envName, value := range map[string]string{
		"BATISERV_DB_HOST": db.Host,
		"BATISERV_DB_USER": db.User,
		"BATISERV_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envName)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BATISERV_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
