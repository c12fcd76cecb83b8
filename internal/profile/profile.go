package profile

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main process.
type Profile struct {
	// Embedding configuration (OpenAI-compatible protocol)
	// All providers (openai, siliconflow, ollama, dashscope) use the same config.
	EmbeddingProvider   string // Provider identifier: openai, siliconflow, ollama, dashscope
	EmbeddingModel      string // Model name: text-embedding-3-small, BAAI/bge-m3, etc.
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string // Optional, has default per provider
	EmbeddingDimensions int    // Vector dimensionality, shared with the vector index schema

	// Vector index configuration
	VectorDSN   string // DSN of the database holding the vector table; defaults to DSN
	VectorTable string // Name of the vector table

	Mode        string // "prod", "dev" or "demo"
	Driver      string // database driver: postgres, sqlite
	DSN         string
	Version     string
	MetricsAddr string // optional address to expose Prometheus metrics on
}

// Provider default configurations for embeddings.
// Used when the base URL or model is not explicitly set.
var embeddingProviderDefaults = map[string]struct {
	BaseURL    string
	Model      string
	Dimensions int
}{
	"openai": {
		BaseURL:    "https://api.openai.com/v1",
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
	},
	"siliconflow": {
		BaseURL:    "https://api.siliconflow.cn/v1",
		Model:      "BAAI/bge-m3",
		Dimensions: 1024,
	},
	"dashscope": {
		BaseURL:    "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:      "text-embedding-v3",
		Dimensions: 1024,
	},
	"ollama": {
		BaseURL:    "http://localhost:11434/v1",
		Model:      "nomic-embed-text",
		Dimensions: 768,
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.EmbeddingProvider = getEnvOrDefault("VECTOOL_EMBEDDING_PROVIDER", "siliconflow")
	p.EmbeddingAPIKey = getEnvOrDefault("VECTOOL_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("VECTOOL_EMBEDDING_BASE_URL", "")
	p.EmbeddingModel = getEnvOrDefault("VECTOOL_EMBEDDING_MODEL", "")
	p.EmbeddingDimensions = getEnvOrDefaultInt("VECTOOL_EMBEDDING_DIMENSIONS", 0)

	if p.EmbeddingProvider != "" {
		if _, ok := embeddingProviderDefaults[p.EmbeddingProvider]; !ok {
			slog.Warn("unknown embedding provider, using default: siliconflow", "provider", p.EmbeddingProvider)
			p.EmbeddingProvider = "siliconflow"
		}
	}
	if defaults, ok := embeddingProviderDefaults[p.EmbeddingProvider]; ok {
		if p.EmbeddingBaseURL == "" {
			p.EmbeddingBaseURL = defaults.BaseURL
		}
		if p.EmbeddingModel == "" {
			p.EmbeddingModel = defaults.Model
		}
		if p.EmbeddingDimensions == 0 {
			p.EmbeddingDimensions = defaults.Dimensions
		}
	}

	p.VectorDSN = getEnvOrDefault("VECTOOL_VECTOR_DSN", "")
	p.VectorTable = getEnvOrDefault("VECTOOL_VECTOR_TABLE", "tool_vector")
	p.MetricsAddr = getEnvOrDefault("VECTOOL_METRICS_ADDR", "")
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = "vectool_" + p.Mode + ".db"
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	// The vector table lives next to the relational tables by default.
	if p.VectorDSN == "" {
		p.VectorDSN = p.DSN
	}

	if p.EmbeddingDimensions <= 0 {
		return errors.Errorf("invalid embedding dimensions: %d", p.EmbeddingDimensions)
	}

	return nil
}
