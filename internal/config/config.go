package config

import "os"

// DefaultJWTSecret is the development fallback signing key used when
// JWT_SECRET is unset. Insecure by definition; the server logs a warning
// when it is active.
const DefaultJWTSecret = "examdesk-dev-secret-at-least-32-chars!!!"

type Config struct {
	Addr string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// HashScheme selects the password scheme: "sha256" (legacy fixed-salt
	// behavior) or "bcrypt".
	HashScheme string

	// UserStore is "memory" or "postgres"; RefreshStore is "memory",
	// "postgres", or "redis".
	UserStore    string
	RefreshStore string

	RedisAddr string
}

func Load() Config {
	return Config{
		Addr:         getEnv("ADDR", "0.0.0.0:8080"),
		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:    getEnv("JWT_ISSUER", "examdesk"),
		JWTAudience:  getEnv("JWT_AUDIENCE", "examdesk-users"),
		HashScheme:   getEnv("HASH_SCHEME", "sha256"),
		UserStore:    getEnv("USER_STORE", "memory"),
		RefreshStore: getEnv("REFRESH_STORE", "memory"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
	}
}

// DBConnString assembles the postgres connection string from the
// POSTGRES_* variables.
func DBConnString() string {
	return "postgres://" + os.Getenv("POSTGRES_USER") +
		":" + os.Getenv("POSTGRES_PASSWORD") +
		"@" + getEnv("POSTGRES_HOST", "localhost") +
		":" + getEnv("POSTGRES_PORT", "5432") +
		"/" + os.Getenv("POSTGRES_DB") +
		"?sslmode=disable"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
