package config

import (
	"os"
)

// Config holds the application configuration
type Config struct {
	Port      string
	DBPath    string
	OutputDir string // directory for exported report files
	JWTSecret string
}

// Load reads configuration from the environment
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/landreport/landreport.db"
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "./data/landreport/reports"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:      port,
		DBPath:    dbPath,
		OutputDir: outputDir,
		JWTSecret: jwtSecret,
	}
}
