package answer

import (
	"os"
	"strconv"
	"time"
)

// ConfigFromEnv resolves the orchestration Config from HACKRX_* environment
// variables, falling back to DefaultConfig values for anything unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Chunk.TargetWords = envInt("HACKRX_CHUNK_WORDS", cfg.Chunk.TargetWords)
	cfg.Chunk.OverlapWords = envInt("HACKRX_CHUNK_OVERLAP", cfg.Chunk.OverlapWords)
	cfg.Chunk.MinWords = envInt("HACKRX_CHUNK_MIN_WORDS", cfg.Chunk.MinWords)
	cfg.TopK = envInt("HACKRX_TOP_K", cfg.TopK)
	cfg.Threshold = envFloat32("HACKRX_THRESHOLD", cfg.Threshold)
	cfg.MaxConcurrent = envInt("HACKRX_MAX_CONCURRENT", cfg.MaxConcurrent)
	cfg.CallTimeout = envDuration("HACKRX_CALL_TIMEOUT", cfg.CallTimeout)
	cfg.Retry.Attempts = uint(envInt("HACKRX_RETRY_ATTEMPTS", int(cfg.Retry.Attempts)))
	cfg.Retry.Delay = envDuration("HACKRX_RETRY_DELAY", cfg.Retry.Delay)
	cfg.Retry.MaxDelay = envDuration("HACKRX_RETRY_MAX_DELAY", cfg.Retry.MaxDelay)

	return cfg
}

// CacheFromEnv constructs the answer cache from HACKRX_CACHE_* env vars,
// defaulting to 512 entries with a one hour lifetime.
func CacheFromEnv() *Cache {
	capacity := envInt("HACKRX_CACHE_CAPACITY", 512)
	ttl := envDuration("HACKRX_CACHE_TTL", time.Hour)
	return NewCache(capacity, ttl)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
