package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	Environment   string
	LogFilePath   string
	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	SiteURL           string
	AppName           string
	FreeModel         string
	AdvancedModel     string
	// Data files
	DataDir         string
	CRMFile         string
	KnowledgeFile   string
	CallsDir        string
	ScriptExamples  []string
	PromptsFile     string
	UpsellRulesFile string
	// Database
	DatabaseURL   string
	MigrationsDir string
	// Redis-backed session modes when set
	RedisURL string
	// Outgoing segment size in characters
	MaxSegmentLen int
	// Register a demo VIP profile for unknown users
	DemoMode bool
}

// Warnings lists non-fatal configuration problems for startup logging.
type Warnings []string

func Load() (Config, Warnings) {
	_ = godotenv.Load()
	dataDir := getEnvDefault("DATA_DIR", "data")
	cfg := Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		Environment:       getEnvDefault("ENVIRONMENT", "development"),
		LogFilePath:       getEnvDefault("LOG_FILE_PATH", filepath.Join("logs", "app.log")),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SiteURL:           getEnvDefault("SITE_URL", "http://localhost"),
		AppName:           getEnvDefault("APP_NAME", "AI Sales MVP"),
		FreeModel:         getEnvDefault("FREE_MODEL", "mistralai/mistral-7b-instruct:free"),
		AdvancedModel:     getEnvDefault("ADVANCED_MODEL", "microsoft/wizardlm-2-8x22b"),
		DataDir:           dataDir,
		CRMFile:           getEnvDefault("CRM_FILE", filepath.Join(dataDir, "crm", "clients.json")),
		KnowledgeFile:     getEnvDefault("KB_FILE", filepath.Join(dataDir, "knowledge_base", "products.json")),
		CallsDir:          getEnvDefault("CALLS_DIR", filepath.Join(dataDir, "calls")),
		ScriptExamples:    getEnvListDefault("SCRIPT_EXAMPLES", []string{"example_call_good.txt"}),
		PromptsFile:       os.Getenv("PROMPTS_FILE"),
		UpsellRulesFile:   os.Getenv("UPSELL_RULES_FILE"),
		DatabaseURL:       os.Getenv("DB_URL"),
		MigrationsDir:     getEnvDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MaxSegmentLen:     getEnvIntDefault("MAX_SEGMENT_LEN", 4000),
		DemoMode:          getEnvBoolDefault("DEMO_MODE", false),
	}
	var warns Warnings
	if cfg.OpenRouterAPIKey == "" {
		warns = append(warns, "OPENROUTER_API_KEY is not set; completions will fail until provided")
	}
	if cfg.MaxSegmentLen <= 0 {
		warns = append(warns, "MAX_SEGMENT_LEN must be positive; using 4000")
		cfg.MaxSegmentLen = 4000
	}
	return cfg, warns
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
