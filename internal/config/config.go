package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string
	JWTSecret  string

	BlobBackend   string
	BlobLocalPath string
	BlobBaseURL   string
	BlobSecret    string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment, after loading a .env file if
// one is present in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "/data/looksy.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		BlobBackend:   getEnv("BLOB_BACKEND", "local"),
		BlobLocalPath: getEnv("BLOB_LOCAL_PATH", "/data/photos"),
		BlobBaseURL:   getEnv("BLOB_BASE_URL", "http://localhost:8080"),
		BlobSecret:    getEnv("BLOB_SIGNING_SECRET", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Bucket:      getEnv("S3_BUCKET", "photos"),
		S3UseSSL:      os.Getenv("S3_USE_SSL") == "1",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
