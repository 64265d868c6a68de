package config

import "os"

type S3 struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	BucketName   string
	UsePathStyle bool
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	S3                 S3
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		S3: S3{
			// MinIO defaults; any S3-compatible store works.
			Endpoint:     getEnv("S3_ENDPOINT", "http://localhost:9000"),
			Region:       getEnv("S3_REGION", "us-east-1"),
			AccessKey:    getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretKey:    getEnv("S3_SECRET_KEY", "minioadmin"),
			BucketName:   getEnv("S3_BUCKET_NAME", "videos"),
			UsePathStyle: getEnv("S3_USE_PATH_STYLE", "true") == "true",
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "clipcast_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
