package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a config file. It mirrors
// [StructuredConfig] but uses [Duration] so that "15s" works in JSON too.
type fileConfig struct {
	App     App     `json:"app" yaml:"app"`
	Crypto  Crypto  `json:"crypto" yaml:"crypto"`
	Storage Storage `json:"storage" yaml:"storage"`
	Adapter struct {
		RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
		RetryCount     int      `json:"retry_count" yaml:"retry_count"`
	} `json:"adapter" yaml:"adapter"`
	Log Log `json:"log" yaml:"log"`
}

// parseFile reads a JSON or YAML config file; the format is chosen by
// extension, with JSON as the default.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err = json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	return &StructuredConfig{
		App:     fc.App,
		Crypto:  fc.Crypto,
		Storage: fc.Storage,
		Adapter: Adapter{
			RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
			RetryCount:     fc.Adapter.RetryCount,
		},
		Log: fc.Log,
	}, nil
}

// Duration is a wrapper around time.Duration that supports unmarshaling
// from strings like "1h", "30s" in both JSON and YAML.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var tmp time.Duration
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}
