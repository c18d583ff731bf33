package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"menu-photo-services/internal/storage"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	AdminAPIKeyHash    string
	MaxFileSizeBytes   int64
	RabbitMQURL        string
	RabbitMQWorkerMode string
	CorsAllowedOrigins []string

	PhotoSetPath  string
	MenuItemsPath string
	SQLOutPath    string
	MenuTable     string
	MenuIDColumn  string
	MenuNameCol   string

	MirrorPrefix      string
	MirrorConcurrency int
	MirrorMaxSide     int
	MirrorThumbSize   int
	MirrorQuality     int
	MirrorTimeout     time.Duration
	MirrorMaxRetries  int
	MirrorRetryDelay  time.Duration

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8090"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminAPIKeyHash:    getEnv("ADMIN_API_KEY_HASH", ""),
		MaxFileSizeBytes:   getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		PhotoSetPath:  getEnv("PHOTO_SET_PATH", "photoset.yaml"),
		MenuItemsPath: getEnv("MENU_ITEMS_PATH", ""),
		SQLOutPath:    getEnv("PHOTO_SQL_OUT", "menu_photo_assignments.sql"),
		MenuTable:     getEnv("MENU_TABLE", "menu_items"),
		MenuIDColumn:  getEnv("MENU_ID_COLUMN", "id"),
		MenuNameCol:   getEnv("MENU_NAME_COLUMN", "name"),

		MirrorPrefix:      getEnv("MIRROR_PREFIX", "menu-photos"),
		MirrorConcurrency: int(getEnvInt64("MIRROR_CONCURRENCY", 4)),
		MirrorMaxSide:     int(getEnvInt64("MIRROR_MAX_SIDE", 1600)),
		MirrorThumbSize:   int(getEnvInt64("MIRROR_THUMB_SIZE", 320)),
		MirrorQuality:     int(getEnvInt64("MIRROR_QUALITY", 82)),
		MirrorTimeout:     getEnvDuration("MIRROR_TIMEOUT", 20*time.Second),
		MirrorMaxRetries:  int(getEnvInt64("MIRROR_MAX_RETRIES", 5)),
		MirrorRetryDelay:  getEnvDuration("MIRROR_RETRY_DELAY", 5*time.Second),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if cfg.MirrorConcurrency <= 0 {
		cfg.MirrorConcurrency = 4
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

func (c Config) ObjectStoreEnabled() bool {
	return strings.TrimSpace(c.ObjectStoreEndpoint) != "" &&
		strings.TrimSpace(c.ObjectStoreBucket) != "" &&
		strings.TrimSpace(c.ObjectStorePublicBaseURL) != ""
}

func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Endpoint:        c.ObjectStoreEndpoint,
		Region:          c.ObjectStoreRegion,
		AccessKeyID:     c.ObjectStoreAccessKeyID,
		SecretAccessKey: c.ObjectStoreSecretAccessKey,
		Bucket:          c.ObjectStoreBucket,
		PublicBaseURL:   c.ObjectStorePublicBaseURL,
		StorageClass:    c.ObjectStoreStorageClass,
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
