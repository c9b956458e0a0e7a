// Package config loads the service configuration from the environment,
// with a .env file honored in local development.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sajtmaskin/internal/media"
)

type Config struct {
	Port string
	Env  string

	// Generation backend.
	V0APIKey  string
	V0BaseURL string
	V0Model   string

	// Classification and enhancement model.
	GeminiAPIKey string
	GeminiModel  string

	// Optional side channels; empty key disables the channel.
	SearchEndpoint string
	SearchAPIKey   string
	ImageAPIKey    string
	ImageBaseURL   string
	ImageModel     string
	ImageSize      string
	ImageQuality   string

	// Persistence. The Postgres DSN is read by the store itself; StorePath
	// is the JSON fallback location.
	StorePath string

	Media MediaConfig
}

type MediaConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBase is the externally reachable URL prefix for stored objects.
	PublicBase string
}

func (m MediaConfig) S3Config() media.S3Config {
	return media.S3Config{
		Endpoint:   m.Endpoint,
		Region:     m.Region,
		AccessKey:  m.AccessKey,
		SecretKey:  m.SecretKey,
		Bucket:     m.Bucket,
		UseSSL:     m.UseSSL,
		PublicBase: m.PublicBase,
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,

		V0APIKey:  strings.TrimSpace(os.Getenv("V0_API_KEY")),
		V0BaseURL: strings.TrimSpace(os.Getenv("V0_BASE_URL")),
		V0Model:   strings.TrimSpace(os.Getenv("V0_MODEL")),

		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.0-flash"),

		SearchEndpoint: strings.TrimSpace(os.Getenv("SEARCH_ENDPOINT")),
		SearchAPIKey:   strings.TrimSpace(os.Getenv("SEARCH_API_KEY")),
		ImageAPIKey:    strings.TrimSpace(os.Getenv("IMAGE_API_KEY")),
		ImageBaseURL:   strings.TrimSpace(os.Getenv("IMAGE_BASE_URL")),
		ImageModel:     strings.TrimSpace(os.Getenv("IMAGE_MODEL")),
		ImageSize:      strings.TrimSpace(os.Getenv("IMAGE_SIZE")),
		ImageQuality:   strings.TrimSpace(os.Getenv("IMAGE_QUALITY")),

		StorePath: firstNonEmpty(strings.TrimSpace(os.Getenv("PROJECT_STORE_PATH")), "data/projects.json"),

		Media: loadMediaConfig(env),
	}, nil
}

func loadMediaConfig(env string) MediaConfig {
	endpoint := resolveMediaEndpoint(env)
	return MediaConfig{
		Enabled:    endpoint != "",
		Endpoint:   endpoint,
		Region:     firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:     firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "sajtmaskin-media"),
		UseSSL:     resolveMediaUseSSL(env),
		PublicBase: strings.TrimSpace(os.Getenv("MEDIA_PUBLIC_BASE")),
	}
}

func resolveMediaEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("MEDIA_S3_ENDPOINT"))
}

func resolveMediaUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("MEDIA_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
