// Copyright 2025 OpenAnchor Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/openanchor-io/anchord/database/plugin"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "anchord.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin  string   `yaml:"metadataPlugin"  envconfig:"ANCHORD_DATABASE_METADATA_PLUGIN"`
	BlobPlugin      string   `yaml:"blobPlugin"      envconfig:"ANCHORD_DATABASE_BLOB_PLUGIN"`
	DataDir         string   `yaml:"dataDir"                                                      split_words:"true"`
	BindAddr        string   `yaml:"bindAddr"                                                     split_words:"true"`
	ShutdownTimeout string   `yaml:"shutdownTimeout"                                              split_words:"true"`
	MetricsPort     uint     `yaml:"metricsPort"                                                  split_words:"true"`
	Registrars      []string `yaml:"registrars"`
	Voters          []string `yaml:"voters"`
	Tracing         bool     `yaml:"tracing"`
	TracingStdout   bool     `yaml:"tracingStdout"                                                split_words:"true"`

	// Voting round scheduling (seconds, 0 = rounds advance only via
	// explicit privileged calls)
	RoundInterval uint64 `yaml:"roundInterval" split_words:"true"`

	// Issuer field bounds (0 = use default)
	MaxDomainLen          uint   `yaml:"maxDomainLen"          split_words:"true"`
	MaxOpenIDURLLen       uint   `yaml:"maxOpenIdUrlLen"       envconfig:"ANCHORD_MAX_OPEN_ID_URL_LEN"`
	MaxJwksLen            uint   `yaml:"maxJwksLen"            split_words:"true"`
	MaxProposersPerIssuer uint   `yaml:"maxProposersPerIssuer" split_words:"true"`
	MinUpdateInterval     uint64 `yaml:"minUpdateInterval"     split_words:"true"`
	MaxUpdateInterval     uint64 `yaml:"maxUpdateInterval"     split_words:"true"`
}

var globalConfig = &Config{
	BindAddr:        "0.0.0.0",
	DataDir:         ".anchord",
	MetricsPort:     12798,
	BlobPlugin:      DefaultBlobPlugin,
	MetadataPlugin:  DefaultMetadataPlugin,
	ShutdownTimeout: DefaultShutdownTimeout,
	RoundInterval:   0,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.anchord/anchord.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".anchord", "anchord.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/anchord/anchord.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/anchord/anchord.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			err = yaml.Unmarshal(configBytes, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			// Otherwise unmarshal the whole file as main config
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		// Process plugin configurations
		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		// Handle database section if present
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				blobConfig, pluginName := extractPluginSection(
					tempCfg.Database.Blob,
					"blob",
				)
				if pluginName != "" {
					globalConfig.BlobPlugin = pluginName
				}
				if pluginConfig["blob"] == nil {
					pluginConfig["blob"] = blobConfig
				} else {
					maps.Copy(pluginConfig["blob"], blobConfig)
				}
			}
			if tempCfg.Database.Metadata != nil {
				metadataConfig, pluginName := extractPluginSection(
					tempCfg.Database.Metadata,
					"metadata",
				)
				if pluginName != "" {
					globalConfig.MetadataPlugin = pluginName
				}
				if pluginConfig["metadata"] == nil {
					pluginConfig["metadata"] = metadataConfig
				} else {
					maps.Copy(pluginConfig["metadata"], metadataConfig)
				}
			}
		}
		if len(pluginConfig) > 0 {
			err = plugin.ProcessConfig(pluginConfig)
			if err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process("anchord", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	return globalConfig, nil
}

// extractPluginSection converts a database.<type> config section into a
// per-plugin option map. A "plugin" key selects the plugin by name and is
// removed from the option map.
func extractPluginSection(
	section map[string]any,
	typeName string,
) (map[string]map[string]any, string) {
	pluginName := ""
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			pluginName = name
			delete(section, "plugin")
		}
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if val, ok := v.(map[string]any); ok {
			ret[k] = val
		} else if val, ok := v.(map[any]any); ok {
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		} else {
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				typeName,
				k,
				v,
			)
		}
	}
	return ret, pluginName
}

func GetConfig() *Config {
	return globalConfig
}
