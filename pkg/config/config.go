package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	OpenAITemperature float64
	// IsOpenAIEnabled toggles real provider calls (enum: "1" or "0").
	// When off, the local offline gateway answers instead.
	IsOpenAIEnabled bool

	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret string
	Port      string

	// metering tunables
	StartingTokenAllotment int64
	PreflightTokenEstimate int64

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	DuplicateWindowSeconds int
	ConvListCacheTTLSecond int
	ConvListCacheMaxItems  int
)

// loadAppEnv loads .env only outside production; production relies on the
// host environment alone. A missing .env is fine, the host env may already
// carry everything (CI, test runs).
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	OpenAIModel = os.Getenv("OPENAI_MODEL")
	OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	AppEnv = os.Getenv("APP_ENV")
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	IsOpenAIEnabled = os.Getenv("IS_OPENAI_ENABLED") == "1"

	if OpenAIModel == "" {
		OpenAIModel = "gpt-3.5-turbo"
	}
	if OpenAIBaseURL == "" {
		OpenAIBaseURL = "https://api.openai.com/v1"
	}
	OpenAITemperature = floatOr(os.Getenv("OPENAI_TEMPERATURE"), 0.7)

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	StartingTokenAllotment = int64Or(os.Getenv("STARTING_TOKEN_ALLOTMENT"), 100000)
	PreflightTokenEstimate = int64Or(os.Getenv("PREFLIGHT_TOKEN_ESTIMATE"), 200)

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)
	ConvListCacheTTLSecond = atoiOr(os.Getenv("CONV_LIST_CACHE_TTL_SECONDS"), 30)
	ConvListCacheMaxItems = atoiOr(os.Getenv("CONV_LIST_CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] IsOpenAIEnabled=%v OpenAIAPIKeyPresent=%v", IsOpenAIEnabled, OpenAIAPIKey != "")
	log.Printf("[config] OpenAIModel=%s temperature=%.2f", OpenAIModel, OpenAITemperature)
	log.Printf("[config] Metering allotment=%d preflight=%d", StartingTokenAllotment, PreflightTokenEstimate)
	log.Printf("[config] RateLimit window=%ds capacity=%d dupWindow=%ds listCacheTTL=%ds listCacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, DuplicateWindowSeconds, ConvListCacheTTLSecond, ConvListCacheMaxItems)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func int64Or(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	return def
}

func floatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return def
}
