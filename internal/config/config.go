package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type DB struct {
	DbHOST         string
	DbPORT         string
	DbUSER         string
	DbPASSWORD     string
	DbNAME         string
	DbSSLMODE      string
	MigrationsPath string
	// AutoMigrate applies MigrationsPath when the server starts.
	AutoMigrate bool
}

type Mongo struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type MinIO struct {
	Enabled    bool
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	ServerPort          int
	StorageDriver       string
	DB                  DB
	Mongo               Mongo
	MinIO               MinIO
	Log                 Log
	JWTSecretKey        string
	JWTIssuer           string
	AccessTokenDuration time.Duration
	BcryptCost          int
	MaxUploadSize       int64
	RequestTimeout      time.Duration
	CORSAllowedOrigin   string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}

func LoadDB() DB {
	return DB{
		DbHOST:         getEnv("DB_HOST", "localhost"),
		DbPORT:         getEnv("DB_PORT", "5432"),
		DbUSER:         getEnv("DB_USER", "postgres"),
		DbPASSWORD:     getEnv("DB_PASSWORD", "password"),
		DbNAME:         getEnv("DB_NAME", "blog"),
		DbSSLMODE:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
		AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
	}
}

func LoadMongo() Mongo {
	return Mongo{
		URI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		Database:       getEnv("MONGO_DATABASE", "blog"),
		ConnectTimeout: parseDuration(getEnv("MONGO_CONNECT_TIMEOUT", "15s"), 15*time.Second),
	}
}

func LoadMinIO() MinIO {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	useSSL := getEnvBool("MINIO_USE_SSL", false)

	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return MinIO{
		Enabled:    getEnvBool("MINIO_ENABLED", true),
		Endpoint:   endpoint,
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:     useSSL,
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  strings.TrimSuffix(getEnv("MINIO_PUBLIC_URL", scheme+"://"+endpoint), "/"),
	}
}

func LoadLog() Log {
	return Log{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

// LoadConfig reads .env (when present) and the process environment.
// The returned boolean reports whether a .env file was found.
func LoadConfig() (*Config, bool) {
	envLoaded := godotenv.Load() == nil

	return &Config{
		ServerPort:          getEnvAsInt("SERVER_PORT", 8080),
		StorageDriver:       strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		DB:                  LoadDB(),
		Mongo:               LoadMongo(),
		MinIO:               LoadMinIO(),
		Log:                 LoadLog(),
		JWTSecretKey:        getEnv("JWT_SECRET_KEY", ""),
		JWTIssuer:           getEnv("JWT_ISSUER", "blogAPI"),
		AccessTokenDuration: parseDuration(getEnv("ACCESS_TOKEN_DURATION", "24h"), 24*time.Hour),
		BcryptCost:          getEnvAsInt("BCRYPT_COST", 10),
		MaxUploadSize:       parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		RequestTimeout:      parseDuration(getEnv("REQUEST_TIMEOUT", "15s"), 15*time.Second),
		CORSAllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
	}, envLoaded
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}

	switch c.StorageDriver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	return nil
}
