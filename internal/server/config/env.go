package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, loading an
// optional .env file first. A missing .env file is not an error.
//
// Recognized variables:
//
//	FILEDROP_ADDRESS              HTTP bind address (e.g. ":8080")
//	FILEDROP_DATABASE_DSN         PostgreSQL DSN
//	FILEDROP_S3_ACCESS_KEY        object storage access key
//	FILEDROP_S3_SECRET_KEY        object storage secret key
//	FILEDROP_S3_BUCKET            bucket name
//	FILEDROP_S3_REGION            region ("auto" works for R2)
//	FILEDROP_S3_ENDPOINT          base endpoint URL
//	FILEDROP_MAX_UPLOAD_SIZE      per-file ceiling, bytes
//	FILEDROP_UPLOAD_URL_EXPIRY    e.g. "15m"
//	FILEDROP_DOWNLOAD_URL_EXPIRY  e.g. "24h"
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("FILEDROP_ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("FILEDROP_DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("FILEDROP_S3_ACCESS_KEY"); ok {
		config.S3AccessKey = v
	}
	if v, ok := os.LookupEnv("FILEDROP_S3_SECRET_KEY"); ok {
		config.S3SecretKey = v
	}
	if v, ok := os.LookupEnv("FILEDROP_S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := os.LookupEnv("FILEDROP_S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := os.LookupEnv("FILEDROP_S3_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
	if v, ok := os.LookupEnv("FILEDROP_MAX_UPLOAD_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxUploadSize = n
		}
	}
	if v, ok := os.LookupEnv("FILEDROP_UPLOAD_URL_EXPIRY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.UploadURLExpiry = d
		}
	}
	if v, ok := os.LookupEnv("FILEDROP_DOWNLOAD_URL_EXPIRY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.DownloadURLExpiry = d
		}
	}
}
