package config

import "time"

// RateLimitConfig defines the token-bucket rate limiter settings.  The
// limiter is distributed: buckets live in Redis so every instance of the
// service shares the same budget per key.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size (burst)
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // refill cadence
	TTL            time.Duration // bucket key expiry
	KeyStrategy    string        // ip, route or ip_route
	Prefix         string        // redis key prefix
	Debug          bool          // verbose logging and debug headers
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig, clamping nonsense values to workable minimums.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
