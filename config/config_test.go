package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Budgets.MaxContextTokens != 4096 {
		t.Errorf("expected MaxContextTokens=4096, got %d", cfg.Budgets.MaxContextTokens)
	}
	if cfg.Budgets.MergeTokens != 2000 {
		t.Errorf("expected MergeTokens=2000, got %d", cfg.Budgets.MergeTokens)
	}
	if cfg.Budgets.MergeChars != 6000 {
		t.Errorf("expected MergeChars=6000, got %d", cfg.Budgets.MergeChars)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Workers)
	}
	if cfg.LLM.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected local endpoint default, got %s", cfg.LLM.BaseURL)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docgen.yaml")

	content := `
budgets:
  max_context_tokens: 8192
  chunk_tokens: 1000
llm:
  model: qwen2.5-coder
workers: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Budgets.MaxContextTokens != 8192 {
		t.Errorf("expected MaxContextTokens=8192, got %d", cfg.Budgets.MaxContextTokens)
	}
	if cfg.Budgets.ChunkTokens != 1000 {
		t.Errorf("expected ChunkTokens=1000, got %d", cfg.Budgets.ChunkTokens)
	}
	if cfg.LLM.Model != "qwen2.5-coder" {
		t.Errorf("expected Model=qwen2.5-coder, got %s", cfg.LLM.Model)
	}
	if cfg.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Workers)
	}
	// Untouched sections keep their defaults.
	if cfg.Budgets.MergeTokens != 2000 {
		t.Errorf("expected MergeTokens default, got %d", cfg.Budgets.MergeTokens)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docgen.yaml")

	content := `
output:
  dir: build/docs
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output.Dir != "build/docs" {
		t.Errorf("expected Dir=build/docs, got %s", cfg.Output.Dir)
	}
}

func TestCachePath(t *testing.T) {
	cfg := DefaultConfig()
	path := CachePath("/home/user/project", cfg)
	expected := filepath.Join("/home/user/project", ".docgen", "cache.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}

	cfg.Cache.Path = "/tmp/shared.db"
	if got := CachePath("/home/user/project", cfg); got != "/tmp/shared.db" {
		t.Errorf("expected absolute path kept, got %s", got)
	}
}
