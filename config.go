package contextcore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/deepnoodle-ai/contextcore/schema"
	"github.com/deepnoodle-ai/contextcore/toolretriever"
)

// CompactionConfig selects and tunes the trigger/compactor pair a
// [ContextManager] builds around, mirroring the options a YAML/JSON
// config file would carry into an agent's setup.
type CompactionConfig struct {
	UseAnchoredCompaction   bool `yaml:"use_anchored_compaction" json:"use_anchored_compaction"`
	UseTokenBasedCompaction bool `yaml:"use_token_based_compaction" json:"use_token_based_compaction"`

	EnableToolResultCompaction bool `yaml:"enable_tool_result_compaction" json:"enable_tool_result_compaction"`
	EnableObservationMasking   bool `yaml:"enable_observation_masking" json:"enable_observation_masking"`

	ThresholdPercentage float64 `yaml:"threshold_percentage" json:"threshold_percentage"`
	ProtectRecentTokens int     `yaml:"protect_recent_tokens" json:"protect_recent_tokens"`
	MinimumPruneTokens  int     `yaml:"minimum_prune_tokens" json:"minimum_prune_tokens"`

	MaxResultChars int `yaml:"max_result_chars" json:"max_result_chars"`
	KeepHeadLines  int `yaml:"keep_head_lines" json:"keep_head_lines"`
	KeepTailLines  int `yaml:"keep_tail_lines" json:"keep_tail_lines"`

	ProtectedTurns      int `yaml:"protected_turns" json:"protected_turns"`
	MinimumMaskedLength int `yaml:"minimum_masked_length" json:"minimum_masked_length"`

	ProtectedToolOutputs []string `yaml:"protected_tool_outputs" json:"protected_tool_outputs"`
}

// DefaultCompactionConfig returns the package defaults assembled into a
// CompactionConfig, selecting the head/tail trigger+compactor pair.
func DefaultCompactionConfig() CompactionConfig {
	return CompactionConfig{
		EnableToolResultCompaction: true,
		EnableObservationMasking:   true,
		ThresholdPercentage:        DefaultThresholdPercentage,
		ProtectRecentTokens:        DefaultProtectRecentTokens,
		MinimumPruneTokens:         DefaultMinimumPruneTokens,
		MaxResultChars:             DefaultMaxResultChars,
		KeepHeadLines:              DefaultKeepHeadLines,
		KeepTailLines:              DefaultKeepTailLines,
		ProtectedTurns:             DefaultProtectedTurns,
		MinimumMaskedLength:        DefaultMinimumMaskedLength,
		ProtectedToolOutputs:       append([]string(nil), DefaultProtectedToolOutputs...),
	}
}

// RetrieverConfig tunes the tool retriever stage of the pipeline.
type RetrieverConfig struct {
	UseEmbeddingRetriever bool     `yaml:"use_embedding_retriever" json:"use_embedding_retriever"`
	MaxTools              int      `yaml:"max_tools" json:"max_tools"`
	MinRelevanceScore     float64  `yaml:"min_relevance_score" json:"min_relevance_score"`
	AlwaysInclude         []string `yaml:"always_include" json:"always_include"`
}

// DefaultRetrieverConfig returns the package defaults for tool retrieval.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		MaxTools:          toolretriever.DefaultMaxTools,
		MinRelevanceScore: toolretriever.DefaultMinRelevanceScore,
	}
}

// LoadCompactionConfig reads a CompactionConfig from a YAML or JSON file,
// selected by extension (.yml/.yaml or .json).
func LoadCompactionConfig(path string) (*CompactionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultCompactionConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("contextcore: unsupported config extension %q", ext)
	}
	return &cfg, nil
}

// ConfigSchema reflects CompactionConfig into a JSON schema, for tooling
// that validates or documents a config file before it's loaded.
func ConfigSchema() (*schema.Schema, error) {
	return schema.Generate(CompactionConfig{})
}

// Save writes cfg to path, selecting YAML or JSON by extension.
func (cfg *CompactionConfig) Save(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".yml", ".yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("contextcore: unsupported config extension %q", ext)
	}
}
