package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"journeymap/domain/layout"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - journeys by owner, newest first
	EventBusName  string
	EventSource   string

	// Lambda configuration
	IsLambda bool

	// WebSocket configuration
	WebSocketEndpoint string

	// Storage
	StorageBackend string // memory, dynamodb or pebble
	PebblePath     string

	// Language model
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	LLMTimeout         time.Duration
	ReplayFile         string // replays a recorded answer instead of calling the model
	ReplayDelay        time.Duration
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	// Extraction and layout
	ConfigFile         string
	MaxBufferBytes     int
	IntersectionPolicy string
	Layout             layout.Settings
	LayoutOverrides    LayoutOverrides // env layout keys, reapplied on file reloads

	// Journey service
	HistoryLimit   int
	QueryCacheTTL  int // seconds
	GenerateRate   float64
	GenerateBurst  int
	RequestTimeout time.Duration

	// Logging
	LogLevel string

	// Authentication
	JWTSecret    string
	JWTIssuer    string
	AuthDisabled bool

	// Observability
	MetricsBackend   string // prometheus, cloudwatch or none
	MetricsNamespace string
	EnableTracing    bool

	// CORS
	EnableCORS     bool
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and, when
// CONFIG_FILE is set, overlays the YAML file on top. A variable that is set
// explicitly wins over the file.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "journeymap")),
		IndexName:     getEnv("INDEX_NAME", "OwnerIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", ""),
		EventSource:   getEnv("EVENT_SOURCE", "journeymap"),

		// Lambda configuration
		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		// WebSocket configuration
		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),

		// Storage
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		PebblePath:     getEnv("PEBBLE_PATH", "data/journeys"),

		// Language model
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		ReplayFile:         getEnv("REPLAY_FILE", ""),
		ReplayDelay:        getEnvDuration("REPLAY_DELAY", 0),
		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		// Extraction and layout
		ConfigFile:         getEnv("CONFIG_FILE", ""),
		MaxBufferBytes:     getEnvInt("MAX_BUFFER_BYTES", 1<<20),
		IntersectionPolicy: getEnv("INTERSECTION_POLICY", "keep-suggested"),
		Layout:             layout.DefaultSettings(),

		// Journey service
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", 50),
		QueryCacheTTL:  getEnvInt("QUERY_CACHE_TTL", 30),
		GenerateRate:   getEnvFloat("GENERATE_RATE_PER_SECOND", 0.2),
		GenerateBurst:  getEnvInt("GENERATE_BURST", 3),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		// Authentication
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", "journeymap"),
		AuthDisabled: getEnvBool("AUTH_DISABLED", false),

		// Logging and observability
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsBackend:   getEnv("METRICS_BACKEND", "prometheus"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "journeymap"),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),

		EnableCORS:     getEnvBool("ENABLE_CORS", true),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
	}

	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplyFile(file)
	}

	cfg.applyEnvOverrides()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LayoutOverrides holds layout keys set through the environment
type LayoutOverrides struct {
	LaneOrdering layout.LaneOrdering
}

// EnvLayoutOverrides reads the layout keys set in the environment
func EnvLayoutOverrides() LayoutOverrides {
	return LayoutOverrides{LaneOrdering: layout.LaneOrdering(os.Getenv("LANE_ORDERING"))}
}

// Apply returns s with the overridden keys replaced
func (o LayoutOverrides) Apply(s layout.Settings) layout.Settings {
	if o.LaneOrdering != "" {
		s.LaneOrdering = o.LaneOrdering
	}
	return s
}

// applyEnvOverrides restores the keys that both the file and the environment
// can set. An explicitly set variable wins over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INTERSECTION_POLICY"); v != "" {
		c.IntersectionPolicy = v
	}
	if os.Getenv("MAX_BUFFER_BYTES") != "" {
		c.MaxBufferBytes = getEnvInt("MAX_BUFFER_BYTES", c.MaxBufferBytes)
	}
	if os.Getenv("HISTORY_LIMIT") != "" {
		c.HistoryLimit = getEnvInt("HISTORY_LIMIT", c.HistoryLimit)
	}
	c.LayoutOverrides = EnvLayoutOverrides()
	c.Layout = c.LayoutOverrides.Apply(c.Layout)
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory", "pebble":
	case "dynamodb":
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.MetricsBackend {
	case "prometheus", "cloudwatch", "none":
	default:
		return fmt.Errorf("unknown METRICS_BACKEND %q", c.MetricsBackend)
	}

	switch c.IntersectionPolicy {
	case "keep-suggested", "require-shared", "derive":
	default:
		return fmt.Errorf("unknown INTERSECTION_POLICY %q", c.IntersectionPolicy)
	}

	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout settings: %w", err)
	}

	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" && !c.AuthDisabled {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.OpenAIAPIKey == "" && c.ReplayFile == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
