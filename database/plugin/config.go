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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// pluginTypeByName maps a config section name back to a plugin type
func pluginTypeByName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	default:
		return 0, false
	}
}

// ProcessConfig applies plugin option values from the parsed config file.
// The outer map is keyed by plugin type name, then plugin name, then option
// name. Unknown plugin types and plugins are rejected; unknown options for a
// known plugin are ignored so that shared options can be applied broadly.
func ProcessConfig(
	pluginConfig map[string]map[string]map[string]any,
) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := pluginTypeByName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type in config: %s", typeName)
		}
		for pluginName, options := range plugins {
			for optName, optValue := range options {
				if err := SetPluginOption(
					pluginType,
					pluginName,
					optName,
					optValue,
				); err != nil {
					return fmt.Errorf(
						"config option %s.%s.%s: %w",
						typeName,
						pluginName,
						optName,
						err,
					)
				}
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin option values from the environment. Each
// registered option is looked up as ANCHORD_<TYPE>_<PLUGIN>_<OPTION> with
// dashes mapped to underscores
func ProcessEnvVars() error {
	pluginEntriesLock.Lock()
	defer pluginEntriesLock.Unlock()
	for i := range pluginEntries {
		entry := &pluginEntries[i]
		for j := range entry.Options {
			opt := &entry.Options[j]
			envName := strings.ToUpper(
				strings.ReplaceAll(
					fmt.Sprintf(
						"anchord_%s_%s_%s",
						PluginTypeName(entry.Type),
						entry.Name,
						opt.Name,
					),
					"-",
					"_",
				),
			)
			envValue, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			value, err := parseOptionValue(opt, envValue)
			if err != nil {
				return fmt.Errorf("env var %s: %w", envName, err)
			}
			if err := setOptionValue(opt, value); err != nil {
				return fmt.Errorf("env var %s: %w", envName, err)
			}
		}
	}
	return nil
}

// parseOptionValue converts an env var string into the option's value type
func parseOptionValue(opt *PluginOption, raw string) (any, error) {
	switch opt.Type {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value %q", raw)
		}
		return v, nil
	case PluginOptionTypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid int value %q", raw)
		}
		return v, nil
	case PluginOptionTypeUint:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid uint value %q", raw)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown option type %d", opt.Type)
	}
}
