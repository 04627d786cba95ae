package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the value of an environment variable or a default value if not set
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value if not set
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value if not set
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetDurationEnv parses values such as "24h" or "15m"
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetListEnv splits a comma separated variable, dropping empty items
func GetListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// MustGetEnv returns the value of an environment variable or panics if not set
func MustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	panic("Required environment variable " + key + " is not set")
}

// GetHost returns the interface the HTTP server binds to
func GetHost() string {
	return GetEnv("HOST", "0.0.0.0")
}

// GetAPIPrefix returns the path prefix all API routes are mounted under
func GetAPIPrefix() string {
	prefix := strings.TrimSpace(GetEnv("API_PREFIX", ""))
	if prefix == "" || prefix == "/" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(prefix, "/")
}

// GetJWTSecret returns the HMAC secret used to sign session tokens
func GetJWTSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", "stormbringer-dev-secret"))
}

// GetJWTTTL returns how long issued session tokens stay valid
func GetJWTTTL() time.Duration {
	return GetDurationEnv("JWT_TTL", 24*time.Hour)
}

// GetSessionCacheTTL returns the lifetime of a session's campaign cache
func GetSessionCacheTTL() time.Duration {
	return GetDurationEnv("SESSION_CACHE_TTL", 12*time.Hour)
}

// GetAdminUsernames returns usernames granted the admin role at registration
func GetAdminUsernames() []string {
	return GetListEnv("ADMIN_USERNAMES")
}

// GetCORSOrigins returns the browser origins allowed to call the API
func GetCORSOrigins() []string {
	origins := GetListEnv("CORS_ORIGINS")
	if len(origins) == 0 {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return origins
}

// GetReminderSchedule returns the cron spec of the upcoming session sweep
func GetReminderSchedule() string {
	return GetEnv("REMINDER_SCHEDULE", "@every 15m")
}
