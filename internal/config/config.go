package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Editor   EditorConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	InstanceID         string
}

type DatabaseConfig struct {
	Connection string
}

// EditorConfig tunes the per-device editing sessions.
type EditorConfig struct {
	SessionTTLMinutes      int // idle sessions are evicted after this
	OverwriteWindowSeconds int // "my save may have been overwritten" recency window
	AttachmentDebounceMs   int // delay before an attachment count change is applied
	SettingsDebounceMs     int // delay before device settings are persisted
	RevisionTopic          string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			InstanceID:         getEnv("APP_INSTANCE_ID", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Editor: EditorConfig{
			SessionTTLMinutes:      getEnvAsInt("EDITOR_SESSION_TTL_MINUTES", 60),
			OverwriteWindowSeconds: getEnvAsInt("EDITOR_OVERWRITE_WINDOW_SECONDS", 30),
			AttachmentDebounceMs:   getEnvAsInt("EDITOR_ATTACHMENT_DEBOUNCE_MS", 400),
			SettingsDebounceMs:     getEnvAsInt("EDITOR_SETTINGS_DEBOUNCE_MS", 800),
			RevisionTopic:          getEnv("ENTRY_REVISION_TOPIC_NAME", "ENTRY_REVISION"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTLHours: getEnvAsInt("DEVICE_TOKEN_TTL_HOURS", 720),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
