package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Session       SessionConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Bootstrap     BootstrapConfig
	Storage       StorageConfig
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
	Env          string `envconfig:"REGISTROPOL_APP_ENV" required:"true"`
	Port         string `envconfig:"REGISTROPOL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REGISTROPOL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REGISTROPOL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REGISTROPOL_DB_DSN"`
	Driver string `envconfig:"REGISTROPOL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REGISTROPOL_DB_HOST"`
	LegacyPort     int    `envconfig:"REGISTROPOL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REGISTROPOL_DB_USER"`
	LegacyPassword string `envconfig:"REGISTROPOL_DB_PASSWORD"`
	LegacyName     string `envconfig:"REGISTROPOL_DB_NAME"`
	LegacySSLMode  string `envconfig:"REGISTROPOL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REGISTROPOL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REGISTROPOL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REGISTROPOL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REGISTROPOL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REGISTROPOL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REGISTROPOL_REDIS_ADDR"`
	Password     string        `envconfig:"REGISTROPOL_REDIS_PASSWORD"`
	DB           int           `envconfig:"REGISTROPOL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REGISTROPOL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REGISTROPOL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REGISTROPOL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REGISTROPOL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REGISTROPOL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the server-side session store. Tokens carry a
// fixed TTL from issuance; there is no sliding renewal.
type SessionConfig struct {
	TTLHours int `envconfig:"REGISTROPOL_SESSION_TTL_HOURS" default:"168"`
}

// TTL returns the configured session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REGISTROPOL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REGISTROPOL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REGISTROPOL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REGISTROPOL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REGISTROPOL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"REGISTROPOL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"REGISTROPOL_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"REGISTROPOL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// BootstrapConfig seeds the default administrator on first run.
type BootstrapConfig struct {
	AdminUsername string `envconfig:"REGISTROPOL_BOOTSTRAP_ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"REGISTROPOL_BOOTSTRAP_ADMIN_PASSWORD" default:"admin123"`
	AdminEmail    string `envconfig:"REGISTROPOL_BOOTSTRAP_ADMIN_EMAIL"`
}

type StorageConfig struct {
	UploadDir     string `envconfig:"REGISTROPOL_STORAGE_UPLOAD_DIR" default:"uploads"`
	PublicBaseURL string `envconfig:"REGISTROPOL_STORAGE_PUBLIC_BASE_URL" default:"/uploads"`
	MaxUploadMB   int    `envconfig:"REGISTROPOL_STORAGE_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the per-attachment size cap in bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REGISTROPOL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
