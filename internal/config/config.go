// Package config loads flat environment configuration. A .env file (path
// overridable via GEOLENS_ENV) is loaded once at startup; everything after
// that is plain os.Getenv with defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by GEOLENS_ENV (or .env by default),
// then loads the corresponding .secret sidecar if it exists.
func Load() error {
	envFile := os.Getenv("GEOLENS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; env vars may come from the environment.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is optional: without it the server runs without run
// persistence and without the local cell index.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// VLMProvider selects the vision collaborator.
// Valid values: openai, anthropic, mock. Defaults to "openai".
func VLMProvider() string {
	p := os.Getenv("VLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// VLMAPIKey returns the API key for the configured vision provider.
func VLMAPIKey() string {
	switch VLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// LLMProvider selects the text language-model collaborator.
// Valid values: openai, anthropic, mock. Defaults to "openai".
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured language-model provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// RetrievalProvider selects the embedding-retrieval path.
// Valid values: remote, index, mock. Defaults to "remote".
func RetrievalProvider() string {
	p := os.Getenv("RETRIEVAL_PROVIDER")
	if p == "" {
		return "remote"
	}
	return p
}

func GeoCLIPURL() string {
	return os.Getenv("GEOCLIP_URL")
}

func NominatimURL() string {
	return os.Getenv("NOMINATIM_URL")
}

func OverpassURL() string {
	return os.Getenv("OVERPASS_URL")
}

// MaxIterations bounds the verify-to-hypothesis loop. Defaults to 2.
func MaxIterations() int {
	n, err := strconv.Atoi(os.Getenv("MAX_ITERATIONS"))
	if err != nil || n <= 0 {
		return 2
	}
	return n
}

// ConfidenceThreshold is the fused-score termination bar. Defaults to 0.8.
func ConfidenceThreshold() float32 {
	f, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_THRESHOLD"), 32)
	if err != nil || f <= 0 || f > 1 {
		return 0.8
	}
	return float32(f)
}

// TopK is the embedding-retrieval fan-out. Defaults to 5.
func TopK() int {
	n, err := strconv.Atoi(os.Getenv("TOP_K"))
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

// EnableTopology turns on the POI layout check (one POI-search call per
// candidate per run). Off by default.
func EnableTopology() bool {
	v, err := strconv.ParseBool(os.Getenv("ENABLE_TOPOLOGY"))
	if err != nil {
		return false
	}
	return v
}

// RateLimitRPS returns the HTTP API requests-per-second limit.
// Defaults to 10.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 10
	}
	return rps
}

// RateLimitBurst returns the HTTP API burst size. Defaults to 20.
func RateLimitBurst() int {
	b, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || b <= 0 {
		return 20
	}
	return b
}

// CacheTTL is how long geocoding and retrieval responses are cached.
// Defaults to 15 minutes.
func CacheTTL() time.Duration {
	d, err := time.ParseDuration(os.Getenv("CACHE_TTL"))
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// LogLevel defaults to "info".
func LogLevel() string {
	l := os.Getenv("LOG_LEVEL")
	if l == "" {
		return "info"
	}
	return l
}
