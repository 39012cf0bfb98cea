package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Storage      StorageConfig
	Media        MediaConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDIAGALLERY_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDIAGALLERY_APP_PORT" default:"5152"`
	LogLevel     string `envconfig:"MEDIAGALLERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIAGALLERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver     string `envconfig:"MEDIAGALLERY_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"MEDIAGALLERY_DB_DSN"`
	SQLitePath string `envconfig:"MEDIAGALLERY_DB_SQLITE_PATH" default:"data/media.db"`

	LegacyHost     string `envconfig:"MEDIAGALLERY_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDIAGALLERY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDIAGALLERY_DB_USER"`
	LegacyPassword string `envconfig:"MEDIAGALLERY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDIAGALLERY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDIAGALLERY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDIAGALLERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDIAGALLERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDIAGALLERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDIAGALLERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type StorageConfig struct {
	Type          string `envconfig:"MEDIAGALLERY_STORAGE_TYPE" default:"local"`
	LocalBasePath string `envconfig:"MEDIAGALLERY_STORAGE_LOCAL_PATH" default:"wwwroot/uploads"`
	PublicPrefix  string `envconfig:"MEDIAGALLERY_STORAGE_PUBLIC_PREFIX" default:"/uploads"`

	S3Endpoint     string `envconfig:"MEDIAGALLERY_S3_ENDPOINT"`
	S3Region       string `envconfig:"MEDIAGALLERY_S3_REGION" default:"us-east-1"`
	S3Bucket       string `envconfig:"MEDIAGALLERY_S3_BUCKET"`
	S3AccessKey    string `envconfig:"MEDIAGALLERY_S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"MEDIAGALLERY_S3_SECRET_KEY"`
	S3KeyPrefix    string `envconfig:"MEDIAGALLERY_S3_KEY_PREFIX" default:"uploads/"`
	S3UsePathStyle bool   `envconfig:"MEDIAGALLERY_S3_USE_PATH_STYLE" default:"true"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case StorageTypeLocal:
		if strings.TrimSpace(s.LocalBasePath) == "" {
			return fmt.Errorf("%s is required for local storage", EnvStorageLocalPath)
		}
	case StorageTypeS3:
		if strings.TrimSpace(s.S3Bucket) == "" {
			return fmt.Errorf("%s is required for s3 storage", EnvS3Bucket)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageType, s.Type)
	}
	return nil
}

type MediaConfig struct {
	MaxUploadMB     int      `envconfig:"MEDIAGALLERY_MAX_UPLOAD_MB" default:"100"`
	ImageExtensions []string `envconfig:"MEDIAGALLERY_MEDIA_IMAGE_EXTENSIONS"`
	VideoExtensions []string `envconfig:"MEDIAGALLERY_MEDIA_VIDEO_EXTENSIONS"`
}

// MaxUploadBytes converts the configured megabyte ceiling to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) * 1024 * 1024
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEDIAGALLERY_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEDIAGALLERY_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN() error {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	switch driver {
	case DBDriverSQLite:
		if db.DSN == "" && strings.TrimSpace(db.SQLitePath) == "" {
			return fmt.Errorf("either %s or %s are required", EnvDBDSN, EnvDBSQLitePath)
		}
		return nil
	case DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}

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
