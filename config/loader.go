/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// KeyDelimiter separates configuration sections, "Settings:Jwt:SigningKey".
const KeyDelimiter = ":"

// EnvKeySeparator replaces KeyDelimiter in environment variable names,
// CONNECTIONSTRINGS__CONNECTIONMYSQL overrides ConnectionStrings:ConnectionMySQL.
const EnvKeySeparator = "__"

// LoaderOptions controls where configuration is read from. Zero values fall
// back to "appsettings" in the working directory and ./config.
type LoaderOptions struct {
	ConfigFile  string
	ConfigName  string
	ConfigPaths []string
	EnvFile     string
	Environment string
}

// Load builds a viper instance from (lowest precedence first) the base
// appsettings file, the environment specific appsettings.<env> file, the
// optional .env file and the process environment.
func Load(opts LoaderOptions) (*viper.Viper, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := NewSource()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		name := opts.ConfigName
		if name == "" {
			name = "appsettings"
		}
		v.SetConfigName(name)
		paths := opts.ConfigPaths
		if len(paths) == 0 {
			paths = []string{".", "./config"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := opts.Environment
	if env == "" {
		env = v.GetString(KeyEnvironment)
	}
	if env != "" && v.ConfigFileUsed() != "" {
		if err := mergeEnvironmentFile(v, env); err != nil {
			return nil, err
		}
	}
	if opts.Environment != "" {
		v.Set(KeyEnvironment, opts.Environment)
	}
	return v, nil
}

// NewSource returns an empty viper instance using the project key delimiter
// and environment variable mapping.
func NewSource() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
	v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelimiter, EnvKeySeparator))
	v.AutomaticEnv()
	return v
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func mergeEnvironmentFile(v *viper.Viper, env string) error {
	base := v.ConfigFileUsed()
	ext := filepath.Ext(base)
	overlay := strings.TrimSuffix(base, ext) + "." + env + ext
	if _, err := os.Stat(overlay); err != nil {
		return nil
	}
	v.SetConfigFile(overlay)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", overlay, err)
	}
	return nil
}
