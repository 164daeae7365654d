package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultEnvFile は起動時に読み込む.envファイルのパス。
const defaultEnvFile = ".env"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 必須の項目は無く、Notionの設定が欠けている場合はプレースホルダー記事で動作する。
type Config struct {
	// Notion
	NotionToken             string
	NotionDatabaseID        string
	NotionWebhookSecret     string
	NotionVersion           string
	NotionAPIBaseURL        string
	NotionTimeout           time.Duration
	NotionRequestsPerSecond float64
	NotionMaxRetries        int

	// Server
	ServerPort string

	// Site
	SiteURL         string
	SiteTitle       string
	SiteDescription string

	// CORS
	CORSAllowedOrigin string

	// 転送ヘッダー（X-Forwarded-For等）を信頼するプロキシのIP/CIDR（カンマ区切り）
	TrustedProxies string

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral int
	RateLimitSync    int

	// Categories
	CategoriesFile string

	// Logging
	LogLevel string
}

// Load は.envファイル（存在する場合）と環境変数からConfigを読み込む。
// .envの値は既に設定されている環境変数を上書きしない。
func Load() (*Config, error) {
	envFile := getEnvString("ENV_FILE", defaultEnvFile)
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		NotionToken:             os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:        os.Getenv("NOTION_DATABASE_ID"),
		NotionWebhookSecret:     os.Getenv("NOTION_WEBHOOK_SECRET"),
		NotionVersion:           getEnvString("NOTION_VERSION", "2025-09-03"),
		NotionAPIBaseURL:        getEnvString("NOTION_API_BASE_URL", "https://api.notion.com/v1"),
		NotionTimeout:           getEnvDuration("NOTION_TIMEOUT", 10*time.Second),
		NotionRequestsPerSecond: getEnvFloat("NOTION_RATE_LIMIT", 3),
		NotionMaxRetries:        getEnvInt("NOTION_MAX_RETRIES", 0),
		ServerPort:              getEnvString("SERVER_PORT", "8080"),
		SiteURL:                 getEnvString("SITE_URL", "http://localhost:3000"),
		SiteTitle:               getEnvString("SITE_TITLE", "My Blog"),
		SiteDescription:         getEnvString("SITE_DESCRIPTION", "Thoughts on building, growth and the founder's journey."),
		CORSAllowedOrigin:       getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		TrustedProxies:          os.Getenv("TRUSTED_PROXIES"),
		RateLimitGeneral:        getEnvInt("RATE_LIMIT_GENERAL", 120),
		RateLimitSync:           getEnvInt("RATE_LIMIT_SYNC", 10),
		CategoriesFile:          os.Getenv("CATEGORIES_FILE"),
		LogLevel:                getEnvString("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// NotionConfigured はNotionのトークンとデータベースIDが揃っているかを返す。
func (c *Config) NotionConfigured() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

// loadEnvFile は.envファイルを読み込む。ファイルが存在しない場合は何もしない。
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
