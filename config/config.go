package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Discovery DiscoveryConfig
	App       AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DiscoveryConfig struct {
	// ProjectsRoot is the directory all scanned project paths must live under.
	ProjectsRoot string
	// ScanIntervalSec is the minimum spacing between scans of one project.
	ScanIntervalSec int
	ParseCacheSize  int
	MaxFileSizeKB   int
	ThemePath       string
	CronSchedule    string
	CronProjects    string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "stateboard"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Discovery: DiscoveryConfig{
			ProjectsRoot:    getEnv("PROJECTS_ROOT", "."),
			ScanIntervalSec: getEnvAsInt("SCAN_INTERVAL_SEC", 2),
			ParseCacheSize:  getEnvAsInt("PARSE_CACHE_SIZE", 512),
			MaxFileSizeKB:   getEnvAsInt("MAX_FILE_SIZE_KB", 256),
			ThemePath:       getEnv("THEME_PATH", ""),
			CronSchedule:    getEnv("RESCAN_CRON", "0 */10 * * * *"),
			CronProjects:    getEnv("RESCAN_PROJECTS", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Discovery.ProjectsRoot == "" {
		return fmt.Errorf("PROJECTS_ROOT is required")
	}

	if c.Discovery.ScanIntervalSec < 0 {
		return fmt.Errorf("SCAN_INTERVAL_SEC must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
