package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits requests for one endpoint. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // Requests refilled per Window
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Rules           []Rule
	Whitelist       map[string]bool
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	CleanupInterval time.Duration
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	perHour := getEnvInt("RATE_LIMIT_ANALYZE_PER_HOUR", 30)
	burst := getEnvInt("RATE_LIMIT_ANALYZE_BURST", 5)

	return &Config{
		Enabled:         true,
		Rules:           DefaultRules(perHour, burst),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		IdleTTL:         time.Hour,
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

// DefaultRules limits the endpoints that spend model quota.
// Everything else is unlimited.
func DefaultRules(perHour, burst int) []Rule {
	return []Rule{
		{Method: "POST", Path: "/analyze", Limit: perHour, Window: time.Hour, Burst: burst},
		{Method: "POST", Path: "/api/analyze", Limit: perHour, Window: time.Hour, Burst: burst},
	}
}

// match returns the rule for a request, exact paths first, or nil.
func (c *Config) match(path, method string) *Rule {
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method == method && r.Path == path {
			return r
		}
	}
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
