package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Sync     SyncConfig
	AI       AIConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path          string
	MigrationsDir string
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	// MaxConcurrentRequests caps outbound API calls against the rate limit.
	MaxConcurrentRequests int
}

// SyncConfig holds the freshness windows. These are policy knobs, not a
// contract: a sync inside its window is skipped unless forced.
type SyncConfig struct {
	RepositoryFreshness  time.Duration
	PullRequestFreshness time.Duration
	CommentFreshness     time.Duration
	PageSize             int
}

type AIConfig struct {
	Enabled  bool
	Model    string
	Endpoint string
	APIKey   string
}

type SecurityConfig struct {
	// TokenEncryptionKey is hex-encoded, 32 bytes once decoded. Empty means
	// a per-install key file is created next to the database.
	TokenEncryptionKey string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path:          getEnv("DB_PATH", defaultDatabasePath()),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		GitHub: GitHubConfig{
			ClientID:              getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret:          getEnv("GITHUB_CLIENT_SECRET", ""),
			MaxConcurrentRequests: getEnvAsInt("GITHUB_MAX_CONCURRENT_REQUESTS", 10),
		},
		Sync: SyncConfig{
			RepositoryFreshness:  time.Duration(getEnvAsInt("SYNC_REPO_FRESHNESS_MINUTES", 30)) * time.Minute,
			PullRequestFreshness: time.Duration(getEnvAsInt("SYNC_PR_FRESHNESS_MINUTES", 15)) * time.Minute,
			CommentFreshness:     time.Duration(getEnvAsInt("SYNC_COMMENT_FRESHNESS_MINUTES", 10)) * time.Minute,
			PageSize:             getEnvAsInt("SYNC_PAGE_SIZE", 100),
		},
		AI: AIConfig{
			Enabled:  getEnvAsBool("AI_ENABLED", false),
			Model:    getEnv("AI_MODEL", "gpt-4o-mini"),
			Endpoint: getEnv("AI_ENDPOINT", ""),
			APIKey:   getEnv("AI_API_KEY", ""),
		},
		Security: SecurityConfig{
			TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		},
	}

	return nil
}

// defaultDatabasePath falls back to a per-user local file when DB_PATH is unset
func defaultDatabasePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./reviewdesk.db"
	}
	return filepath.Join(configDir, "reviewdesk", "reviewdesk.db")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
