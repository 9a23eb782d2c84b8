package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the documentation generator.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Budgets BudgetsConfig `yaml:"budgets"`
	Workers int           `yaml:"workers"`
	Cache   CacheConfig   `yaml:"cache"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// LLMConfig holds the model endpoint configuration.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"` // Environment variable for the API key, empty is fine for local endpoints
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Retries        int     `yaml:"retries"`
}

// BudgetsConfig holds the token budgets for chunking and merging.
type BudgetsConfig struct {
	MaxContextTokens   int `yaml:"max_context_tokens"`
	ChunkTokens        int `yaml:"chunk_tokens"`
	MergeTokens        int `yaml:"merge_tokens"`
	MergeChars         int `yaml:"merge_chars"`
	MaxMergeIterations int `yaml:"max_merge_iterations"`
}

// CacheConfig holds the response cache configuration.
type CacheConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// ScanConfig holds the repository scan globs.
type ScanConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Docs    []string `yaml:"docs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig holds the rendering destination.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:        "http://localhost:1234/v1",
			Model:          "local-model",
			APIKeyEnv:      "OPENAI_API_KEY",
			Temperature:    0.3,
			MaxTokens:      256,
			TimeoutSeconds: 120,
			Retries:        3,
		},
		Budgets: BudgetsConfig{
			MaxContextTokens:   4096,
			ChunkTokens:        2000,
			MergeTokens:        2000,
			MergeChars:         6000,
			MaxMergeIterations: 8,
		},
		Workers: 4,
		Cache: CacheConfig{
			Path:    filepath.Join(".docgen", "cache.db"),
			Enabled: true,
		},
		Scan: ScanConfig{
			Include: []string{"**/*.go", "**/*.py", "**/*.js", "**/*.ts", "**/*.java", "**/*.c", "**/*.cpp", "**/*.h", "**/*.rs"},
			Exclude: []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/__pycache__/**", "**/testdata/**", "**/.docgen/**"},
			Docs:    []string{"**/*.md", "**/*.rst", "**/*.txt"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir: filepath.Join("docs", "generated"),
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docgen.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try docgen.yaml in the directory
	path := filepath.Join(dir, "docgen.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .docgen/config.yaml
	path = filepath.Join(dir, ".docgen", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CachePath resolves the cache file path against the scanned directory.
func CachePath(dir string, c *Config) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(dir, c.Cache.Path)
}

// EnsureCacheDir ensures the directory holding the cache file exists.
func EnsureCacheDir(dir string, c *Config) error {
	return os.MkdirAll(filepath.Dir(CachePath(dir, c)), 0755)
}
