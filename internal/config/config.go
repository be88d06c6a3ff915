package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend selection for uploaded assets.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	TokenMaxAge int // seconds

	StorageBackend string
	AssetDir       string
	AssetURLPrefix string

	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3PublicURL       string

	DefaultAvatarURL string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	tokenMaxAge, err := strconv.Atoi(os.Getenv("TOKEN_MAX_AGE"))
	if err != nil || tokenMaxAge <= 0 {
		tokenMaxAge = 3600
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "6001"
	}

	storageBackend := os.Getenv("STORAGE_BACKEND")
	if storageBackend == "" {
		storageBackend = StorageBackendLocal
	}

	assetDir := os.Getenv("ASSET_DIR")
	if assetDir == "" {
		assetDir = "public/assets"
	}

	assetURLPrefix := os.Getenv("ASSET_URL_PREFIX")
	if assetURLPrefix == "" {
		assetURLPrefix = "/assets"
	}

	return &Config{
		ServerPort:  serverPort,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenMaxAge: tokenMaxAge,

		StorageBackend: storageBackend,
		AssetDir:       assetDir,
		AssetURLPrefix: assetURLPrefix,

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          os.Getenv("S3_REGION"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3PublicURL:       os.Getenv("S3_PUBLIC_URL"),

		DefaultAvatarURL: os.Getenv("DEFAULT_AVATAR_URL"),
	}, nil
}
