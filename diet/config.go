package diet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dietcheck/emb"
)

const defaultConfigFile = "config.json"

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Engine EngineConfig `json:"engine"`
	// VocabPath points at the editable rule-set JSON file; empty uses the
	// built-in defaults.
	VocabPath string `json:"vocabPath"`
	// ModelDirs are probed in order for trained artifacts; empty uses
	// DefaultModelDirs.
	ModelDirs []string `json:"modelDirs"`
	// Encoder locates the ONNX encoder artifacts used when an exemplar model
	// is discovered; left zero, exemplar discovery degrades to rule-only.
	Encoder emb.Config `json:"encoder"`
	// Workers bounds batch-evaluation parallelism; zero means GOMAXPROCS.
	Workers int `json:"workers"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.Engine.ApplyDefaults()
	if len(c.ModelDirs) == 0 {
		c.ModelDirs = append([]string(nil), DefaultModelDirs...)
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
}

// LoadConfig loads configuration from the given path or the default
// config.json. A missing file yields the defaults, not an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk atomically.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
