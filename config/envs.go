package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string // Host IP for the server
	RESTPort        int    // Port for the REST API
	GinMode         string // Mode for the Gin framework (e.g., release, debug, test)
	MaxDimension    int    // Largest allowed row or column count
	DefaultRows     int    // Rows of a new session when the request names none
	DefaultCols     int    // Columns of a new session when the request names none
	DefaultSpeed    int    // Initial replay speed, 1 to 100
	TickUnitMS      int    // Milliseconds per delay unit; a tick waits (101 - speed) units
	JWTSecret       string // Secret key for JWT signing
	JWTIssuer       string // Issuer claim for JWTs
	SessionTTLMin   int    // Lifetime of a session token in minutes
	RedisAddr       string // Address of the leaderboard Redis; empty disables the leaderboard
	RedisPassword   string // Password for Redis
	LeaderboardSize int    // Runs kept per leaderboard
	DBHost          string // Hostname or IP address for the database; empty disables run history
	DBPort          int    // Port number for the database
	DBUser          string // Username for the database
	DBPassword      string // Password for the database
	DBName          string // Name of the database
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:          getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:        getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:         getEnvWithDefault("GIN_MODE", "release"),
		MaxDimension:    getEnvAsIntWithDefault("MAX_DIMENSION", 30),
		DefaultRows:     getEnvAsIntWithDefault("DEFAULT_ROWS", 10),
		DefaultCols:     getEnvAsIntWithDefault("DEFAULT_COLS", 10),
		DefaultSpeed:    getEnvAsIntWithDefault("DEFAULT_SPEED", 50),
		TickUnitMS:      getEnvAsIntWithDefault("TICK_UNIT_MS", 1),
		JWTSecret:       mustGetEnv("JWT_SECRET"),
		JWTIssuer:       getEnvWithDefault("JWT_ISSUER", "maze-solver"),
		SessionTTLMin:   getEnvAsIntWithDefault("SESSION_TTL_MIN", 60),
		RedisAddr:       getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:   getEnvWithDefault("REDIS_PASSWORD", ""),
		LeaderboardSize: getEnvAsIntWithDefault("LEADERBOARD_SIZE", 10),
		DBHost:          getEnvWithDefault("DB_HOST", ""),
		DBPort:          getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:          getEnvWithDefault("DB_USER", ""),
		DBPassword:      getEnvWithDefault("DB_PASS", ""),
		DBName:          getEnvWithDefault("DB_NAME", "maze_solver"),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable, falling back to defaultValue
// when unset. A value that is set but not an integer is fatal.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}
