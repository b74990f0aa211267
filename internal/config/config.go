package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Version     string `envconfig:"VERSION" default:"dev"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"1m"`

	NATSURL     string `envconfig:"NATS_URL" default:""`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"elevate.products"`

	StorageDriver        string `envconfig:"STORAGE_DRIVER" default:"local"`
	LocalUploadDir       string `envconfig:"LOCAL_UPLOAD_DIR" default:"./storage/uploads"`
	LocalUploadURLPrefix string `envconfig:"LOCAL_UPLOAD_URL_PREFIX" default:"/uploads"`
	LocalUploadBaseURL   string `envconfig:"LOCAL_UPLOAD_BASE_URL" default:""`
	S3Region             string `envconfig:"S3_REGION" default:""`
	S3Bucket             string `envconfig:"S3_BUCKET" default:""`
	S3Prefix             string `envconfig:"S3_PREFIX" default:"uploads"`
	S3PublicBaseURL      string `envconfig:"S3_PUBLIC_BASE_URL" default:""`
	MaxImageBytes        int64  `envconfig:"MAX_IMAGE_BYTES" default:"5242880"`

	VercelAPIURL       string        `envconfig:"VERCEL_API_URL" default:"https://api.vercel.com"`
	VercelToken        string        `envconfig:"VERCEL_TOKEN" default:""`
	VercelSyncInterval time.Duration `envconfig:"VERCEL_SYNC_INTERVAL" default:"60s"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CLIConfig holds the operator CLI settings. Flags override these values.
type CLIConfig struct {
	APIURL string `envconfig:"API_URL" default:"http://localhost:8080"`
	APIKey string `envconfig:"API_KEY" default:""`
}

// LoadCLI reads ELEVATE_-prefixed environment variables into a CLIConfig.
func LoadCLI() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := envconfig.Process("elevate", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
