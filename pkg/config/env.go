package config

const EnvPrefix = "MEDIAGALLERY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

const (
	EnvAppEnv   = "MEDIAGALLERY_APP_ENV"
	EnvPort     = "MEDIAGALLERY_APP_PORT"
	EnvLogLevel = "MEDIAGALLERY_LOG_LEVEL"

	EnvDBDriver     = "MEDIAGALLERY_DB_DRIVER"
	EnvDBDSN        = "MEDIAGALLERY_DB_DSN"
	EnvDBSQLitePath = "MEDIAGALLERY_DB_SQLITE_PATH"
	EnvDBHost       = "MEDIAGALLERY_DB_HOST"
	EnvDBUser       = "MEDIAGALLERY_DB_USER"
	EnvDBName       = "MEDIAGALLERY_DB_NAME"
	EnvDBPassword   = "MEDIAGALLERY_DB_PASSWORD"

	EnvStorageType      = "MEDIAGALLERY_STORAGE_TYPE"
	EnvStorageLocalPath = "MEDIAGALLERY_STORAGE_LOCAL_PATH"
	EnvS3Bucket         = "MEDIAGALLERY_S3_BUCKET"
	EnvS3Endpoint       = "MEDIAGALLERY_S3_ENDPOINT"

	EnvMaxUploadMB     = "MEDIAGALLERY_MAX_UPLOAD_MB"
	EnvImageExtensions = "MEDIAGALLERY_MEDIA_IMAGE_EXTENSIONS"
	EnvVideoExtensions = "MEDIAGALLERY_MEDIA_VIDEO_EXTENSIONS"

	EnvAutoMigrate = "MEDIAGALLERY_AUTO_MIGRATE"
	EnvCORSOrigins = "MEDIAGALLERY_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
