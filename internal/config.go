package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cognitedata/olympus-camctl/drivers/camera/olympus"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. OLYCAM_ADDRESS.
const EnvPrefix = "OLYCAM"

type StaticConfig struct {
	Model          string `json:"model" yaml:"model"`
	Address        string `json:"address" yaml:"address"`
	HostHeader     string `json:"host_header" yaml:"host_header" split_words:"true"`
	UserAgent      string `json:"user_agent" yaml:"user_agent" split_words:"true"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" split_words:"true"`

	LogLevel string `json:"log_level" yaml:"log_level" split_words:"true"`
	LogDir   string `json:"log_dir" yaml:"log_dir" split_words:"true"`
}

func DefaultConfig() StaticConfig {
	return StaticConfig{
		Model:          "olympus",
		Address:        olympus.DefaultBaseURL,
		HostHeader:     olympus.DefaultHost,
		UserAgent:      olympus.DefaultUserAgent,
		TimeoutSeconds: int(olympus.DefaultTimeout / time.Second),
		LogLevel:       "info",
		LogDir:         "-",
	}
}

// LoadConfig reads a JSON or YAML (.yaml, .yml) file on top of the defaults and
// then applies OLYCAM_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (StaticConfig, error) {
	config := DefaultConfig()
	if path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return config, errors.Wrap(err, "load config file")
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(body, &config)
		default:
			err = json.Unmarshal(body, &config)
		}
		if err != nil {
			return config, errors.Wrapf(err, "incorrect config file format %s", path)
		}
	}
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return config, errors.Wrap(err, "read environment overrides")
	}
	return config, nil
}

// WriteConfig stores config as indented JSON, or YAML for .yaml/.yml paths.
func WriteConfig(path string, config StaticConfig) error {
	var body []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		body, err = yaml.Marshal(&config)
	default:
		body, err = json.MarshalIndent(&config, " ", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0644)
}

// CameraConfig converts the file settings into a camera connection config.
func (c StaticConfig) CameraConfig() olympus.Config {
	return olympus.Config{
		BaseURL:   c.Address,
		Host:      c.HostHeader,
		UserAgent: c.UserAgent,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
	}
}
