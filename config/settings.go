/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"

	"github.com/spf13/viper"

	"dirpx.dev/nsx/apis"
)

// EnvPrefix is the prefix of environment variables read by LoadSettings (NSX_SEPARATOR, ...).
const EnvPrefix = "NSX"

// LogSettings controls the process logger.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Settings holds the runtime configuration of the nsx command.
// Values are populated from .nsx.yaml/.nsx.toml, NSX_* env vars, and CLI flags.
type Settings struct {
	Separator   string      `mapstructure:"separator"`
	MaxDepth    int         `mapstructure:"max_depth"`
	StrictNames bool        `mapstructure:"strict_names"`
	Manifests   []string    `mapstructure:"manifests"`
	Log         LogSettings `mapstructure:"log"`
}

// LoadSettings reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func LoadSettings(v *viper.Viper) (Settings, error) {
	v.SetDefault("separator", DefaultSeparator)
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("strict_names", DefaultStrictNames)
	v.SetDefault("manifests", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

// Registry converts the registry-related settings into an apis.Config.
func (s Settings) Registry() apis.Config {
	return NewConfig(
		WithSeparator(s.Separator),
		WithMaxDepth(s.MaxDepth),
		WithStrictNames(s.StrictNames),
	)
}
