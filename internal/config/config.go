package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable, loaded once at process start and never mutated at
// runtime.  The JWT fields are shared by the token issuer and every
// validator; issuer and audience are configured, not derived from requests.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecretKey     string // symmetric secret used to sign and verify tokens
	JWTValidIssuer   string // issuer claim stamped into and required of tokens
	JWTValidAudience string // audience claim stamped into and required of tokens
	TokenTTLHours    int    // bearer token time-to-live in hours
	BcryptCost       int    // bcrypt cost for password hashing
	AdminOpenSignup  bool   // expose /register-admin without an Admin token (first boot only)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecretKey:     must("JWT_SECRET_KEY"),
		JWTValidIssuer:   must("JWT_VALID_ISSUER"),
		JWTValidAudience: must("JWT_VALID_AUDIENCE"),
		TokenTTLHours:    envInt("TOKEN_TTL_HOURS", 3),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		AdminOpenSignup:  envBool("ADMIN_OPEN_SIGNUP", false),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
