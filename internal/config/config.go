package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string // Application port
	DBUser         string // Database user
	DBPassword     string // Database password
	DBHost         string // Database host
	DBPort         string // Database port
	DBName         string // Database name
	JWTSecret      string // JWT secret key
	RedisAddr      string // Redis server address
	RedisPass      string // Redis password
	RedisDB        int    // Redis database number
	IsProd         bool   // Is production environment
	AdminSetupCode string // Required to elevate an account to admin; empty disables elevation
	CDNHost        string // Host used to build image CDN URLs
	VisionAPIKey   string // Vision model provider API key
	VisionBaseURL  string // Vision model API base URL
	VisionModel    string // Vision model name
	EmailAPIKey    string // Transactional email provider API key
	EmailBaseURL   string // Email provider API base URL
	EmailFrom      string // Sender address for outbound mail
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        os.Getenv("APP_PORT"),          // Application port
		DBUser:         os.Getenv("DB_USER"),           // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:         os.Getenv("DB_HOST"),           // Database host
		DBPort:         os.Getenv("DB_PORT"),           // Database port
		DBName:         os.Getenv("DB_NAME"),           // Database name
		JWTSecret:      os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:      os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:        redisDB,                        // Redis database number
		IsProd:         os.Getenv("IS_PROD") == "true", // Is production environment
		AdminSetupCode: os.Getenv("ADMIN_SETUP_CODE"),  // Admin elevation gate
		CDNHost:        getenv("CDN_HOST", "medsupply.example"),
		VisionAPIKey:   os.Getenv("VISION_API_KEY"),
		VisionBaseURL:  getenv("VISION_BASE_URL", "https://api.openai.com/v1"),
		VisionModel:    getenv("VISION_MODEL", "gpt-4o-mini"),
		EmailAPIKey:    os.Getenv("EMAIL_API_KEY"),
		EmailBaseURL:   getenv("EMAIL_BASE_URL", "https://api.resend.com"),
		EmailFrom:      getenv("EMAIL_FROM", "no-reply@medsupply.example"),
	}
}

// getenv returns the environment value for key, or fallback when unset.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
