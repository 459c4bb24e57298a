package architecture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads a system configuration document. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON. A leading ~ is expanded to
// the user's home directory.
func Load(path string) (*schemas.SystemConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read system configuration: %w", err)
	}

	var cfg schemas.SystemConfig
	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse system configuration %s: %w", expanded, err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path and checks that it builds into a model. An empty
// path, an unreadable or malformed document, or a document that fails to
// build all fall back to DefaultSystemConfig with a warning.
func LoadOrDefault(path string, logger *zap.Logger) *schemas.SystemConfig {
	log := logger.Named("architecture")
	if path == "" {
		log.Info("No system configuration given; using the default system.")
		return DefaultSystemConfig()
	}

	cfg, err := Load(path)
	if err == nil {
		_, err = Build(cfg)
	}
	if err != nil {
		log.Warn("System configuration unusable; falling back to the default system.",
			zap.String("path", path), zap.Error(err))
		return DefaultSystemConfig()
	}

	log.Info("Loaded system configuration.",
		zap.String("system", cfg.SystemName),
		zap.Int("components", len(cfg.Components)))
	return cfg
}
