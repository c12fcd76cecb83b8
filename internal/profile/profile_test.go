package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "siliconflow", p.EmbeddingProvider)
	assert.Equal(t, "https://api.siliconflow.cn/v1", p.EmbeddingBaseURL)
	assert.Equal(t, "BAAI/bge-m3", p.EmbeddingModel)
	assert.Equal(t, 1024, p.EmbeddingDimensions)
	assert.Equal(t, "tool_vector", p.VectorTable)
}

func TestFromEnvUnknownProviderFallsBack(t *testing.T) {
	t.Setenv("VECTOOL_EMBEDDING_PROVIDER", "nonexistent")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "siliconflow", p.EmbeddingProvider)
}

func TestFromEnvExplicitOverrides(t *testing.T) {
	t.Setenv("VECTOOL_EMBEDDING_PROVIDER", "openai")
	t.Setenv("VECTOOL_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("VECTOOL_EMBEDDING_DIMENSIONS", "3072")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "openai", p.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-large", p.EmbeddingModel)
	assert.Equal(t, 3072, p.EmbeddingDimensions)
	assert.Equal(t, "https://api.openai.com/v1", p.EmbeddingBaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr bool
	}{
		{
			name:    "postgres without dsn",
			profile: &Profile{Mode: "dev", Driver: "postgres", EmbeddingDimensions: 1024},
			wantErr: true,
		},
		{
			name:    "unsupported driver",
			profile: &Profile{Mode: "dev", Driver: "mysql", DSN: "x", EmbeddingDimensions: 1024},
			wantErr: true,
		},
		{
			name:    "zero dimensions",
			profile: &Profile{Mode: "dev", Driver: "sqlite", EmbeddingDimensions: 0},
			wantErr: true,
		},
		{
			name:    "valid postgres",
			profile: &Profile{Mode: "prod", Driver: "postgres", DSN: "postgres://localhost/vectool", EmbeddingDimensions: 1024},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateDefaultsSqliteDSN(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "sqlite", EmbeddingDimensions: 768}

	require.NoError(t, p.Validate())
	assert.Equal(t, "vectool_dev.db", p.DSN)
	assert.Equal(t, p.DSN, p.VectorDSN, "vector DSN should default to relational DSN")
}

func TestValidateInvalidModeFallsBackToDemo(t *testing.T) {
	p := &Profile{Mode: "staging", Driver: "sqlite", EmbeddingDimensions: 768}

	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
}
