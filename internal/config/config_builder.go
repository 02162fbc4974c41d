package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/spf13/pflag"
)

// configBuilder collects partial configs in ascending priority order and
// merges them in [configBuilder.build].
type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, Default())
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(fs *pflag.FlagSet) *configBuilder {
	b.configs = append(b.configs, ParseFlags(fs))
	return b
}

// withFile loads the config file named by any already collected source. The
// file sits just above the defaults: env and flags still override it.
func (b *configBuilder) withFile() *configBuilder {
	var path string
	for _, cfg := range b.configs {
		if cfg.ConfigFilePath != "" {
			path = cfg.ConfigFilePath
		}
	}
	if path == "" {
		return b
	}

	fileCfg, err := parseFile(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	pos := 0
	if len(b.configs) > 0 {
		pos = 1
	}
	b.configs = append(b.configs[:pos], append([]*StructuredConfig{fileCfg}, b.configs[pos:]...)...)
	return b
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dashkeys-credentials.json"
	}
	return filepath.Join(dir, "dashkeys", "credentials.json")
}
