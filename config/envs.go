package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string  // Host IP for the server
	RESTPort        int     // Port for the REST API
	GinMode         string  // Mode for the Gin framework (e.g., release, debug, test)
	DBHost          string  // Hostname or IP address for the database
	DBPort          int     // Port number for the database
	DBUser          string  // Username for the database
	DBPassword      string  // Password for the database
	DBName          string  // Name of the database
	RedisAddr       string  // host:port of the redis server
	RedisPassword   string  // Password for the redis server
	JWTSecret       string  // Secret key for JWT signing
	JWTIssuer       string  // Issuer claim for JWTs
	GridX           int     // Number of grid columns
	GridY           int     // Number of grid rows
	GridProbability float64 // Chance, in percent, that a grid cell is blocked
	GridSeed        int64   // Seed for grid generation; 0 picks a time based seed
	OracleURL       string  // Base URL of the model server; empty selects the manhattan oracle
	OracleCacheTTL  int     // Seconds a cached prediction lives; 0 disables the cache
	OracleTimeout   int     // Milliseconds allowed per model server request
	OracleSerialize bool    // Send one prediction at a time to the oracle
	Sensing         string  // "neighbours4" or "blindfolded"
	MaxSteps        int     // Cells a run may process; 0 derives it from the grid size
	PollInterval    int     // Milliseconds between queue polls
	Workers         int     // Simulations run concurrently by the worker
	BatchSize       int     // Jobs taken from the queue per poll
	QueueTTL        int     // Seconds a job queue key lives
}

// Load reads the application configuration from environment variables.
// It loads a .env file first when one is present.
func Load() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:          mustGetEnv("HOST_IP"),
		RESTPort:        mustGetEnvAsInt("REST_PORT"),
		GinMode:         getEnvWithDefault("GIN_MODE", "release"),
		DBHost:          mustGetEnv("DB_HOST"),
		DBPort:          mustGetEnvAsInt("DB_PORT"),
		DBUser:          mustGetEnv("DB_USER"),
		DBPassword:      mustGetEnv("DB_PASS"),
		DBName:          mustGetEnv("DB_NAME"),
		RedisAddr:       mustGetEnv("REDIS_ADDR"),
		RedisPassword:   getEnvWithDefault("REDIS_PASSWORD", ""),
		JWTSecret:       mustGetEnv("JWT_SECRET"),
		JWTIssuer:       mustGetEnv("JWT_ISSUER"),
		GridX:           getEnvAsIntWithDefault("GRID_X", 100),
		GridY:           getEnvAsIntWithDefault("GRID_Y", 100),
		GridProbability: getEnvAsFloatWithDefault("GRID_PROBABILITY", 20),
		GridSeed:        int64(getEnvAsIntWithDefault("GRID_SEED", 0)),
		OracleURL:       getEnvWithDefault("ORACLE_URL", ""),
		OracleCacheTTL:  getEnvAsIntWithDefault("ORACLE_CACHE_TTL", 3600),
		OracleTimeout:   getEnvAsIntWithDefault("ORACLE_TIMEOUT_MS", 5000),
		OracleSerialize: getEnvAsBoolWithDefault("ORACLE_SERIALIZE", false),
		Sensing:         getEnvWithDefault("SENSING", "neighbours4"),
		MaxSteps:        getEnvAsIntWithDefault("MAX_STEPS", 0),
		PollInterval:    getEnvAsIntWithDefault("POLL_INTERVAL_MS", 500),
		Workers:         getEnvAsIntWithDefault("WORKERS", 4),
		BatchSize:       getEnvAsIntWithDefault("BATCH_SIZE", 8),
		QueueTTL:        getEnvAsIntWithDefault("QUEUE_TTL", 3600),
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

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
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

// getEnvAsIntWithDefault retrieves an integer environment variable or returns a default value if not set.
// A set but unparsable value is fatal.
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

// getEnvAsFloatWithDefault retrieves a float environment variable or returns a default value if not set.
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}

// getEnvAsBoolWithDefault retrieves a boolean environment variable or returns a default value if not set.
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a boolean: %v", key, err)
	}
	return value
}
