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
	"fmt"
	"time"

	"github.com/tomoncle/planshare/types"
)

// Settings is the resolved configuration handed to every component.
type Settings struct {
	Environment string           `yaml:"environment"`
	Database    DatabaseSettings `yaml:"database"`
	Jwt         JwtSettings      `yaml:"jwt"`
	Logging     LoggingSettings  `yaml:"logging"`
}

// DatabaseSettings selects and tunes the relational backend.
type DatabaseSettings struct {
	Type                types.DatabaseType `yaml:"type"`
	ConnectionString    string             `yaml:"connection_string"`
	InMemory            bool               `yaml:"in_memory"`
	EnableQueryLog      bool               `yaml:"enable_query_log"`
	SlowQueryTime       time.Duration      `yaml:"slow_query_time"`
	MaxOpenConns        int                `yaml:"max_open_conns"`
	MaxIdleConns        int                `yaml:"max_idle_conns"`
	ConnMaxLifetime     time.Duration      `yaml:"conn_max_lifetime"`
	ConnectTimeout      time.Duration      `yaml:"connect_timeout"`
	SeedPath            string             `yaml:"seed_path,omitempty"`
	LegacyMySQLFallback bool               `yaml:"legacy_mysql_fallback"`
}

// JwtSettings configures the access token generator and validator.
type JwtSettings struct {
	ExpiresMinutes uint32 `yaml:"expires_minutes"`
	SigningKey     string `yaml:"signing_key"`
}

type LoggingSettings struct {
	Level string `yaml:"level"`
}

// ApplyDefaults fills zero-valued fields.
func (s *Settings) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = "Development"
	}
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	s.Database.ApplyDefaults()
}

func (d *DatabaseSettings) ApplyDefaults() {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 25
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = 5
	}
	if d.ConnMaxLifetime <= 0 {
		d.ConnMaxLifetime = time.Hour
	}
	if d.ConnectTimeout <= 0 {
		d.ConnectTimeout = 30 * time.Second
	}
	if d.SlowQueryTime <= 0 {
		d.SlowQueryTime = 2 * time.Second
	}
}

// Validate checks pool settings. Connection strings are left to the driver.
func (s *Settings) Validate() error {
	d := s.Database
	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", d.MaxIdleConns, d.MaxOpenConns)
	}
	return nil
}

// Redacted returns a copy safe to print: secrets are masked.
func (s Settings) Redacted() Settings {
	if s.Jwt.SigningKey != "" {
		s.Jwt.SigningKey = "******"
	}
	if s.Database.ConnectionString != "" {
		s.Database.ConnectionString = "******"
	}
	return s
}
