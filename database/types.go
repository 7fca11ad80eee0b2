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

package database

import (
	"time"

	"github.com/tomoncle/planshare/types"
)

// Config describes the single database a process talks to.
type Config struct {
	Type             types.DatabaseType
	ConnectionString string

	// InMemory replaces the configured backend with a shared-cache in-memory
	// SQLite database. InMemoryName keeps parallel test databases apart.
	InMemory     bool
	InMemoryName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration

	EnableQueryLog bool
	SlowQueryTime  time.Duration

	// SeedPath points at a directory of SQL seed files run after migrations.
	SeedPath    string
	Environment string

	// LegacyMySQLFallback keeps the historical behaviour of configuring the
	// MySQL driver when Type matches no provider.
	LegacyMySQLFallback bool
}

// DefaultConfig returns pool and timeout defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnectTimeout:  30 * time.Second,
		SlowQueryTime:   2 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = d.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.SlowQueryTime <= 0 {
		c.SlowQueryTime = d.SlowQueryTime
	}
	if c.InMemoryName == "" {
		c.InMemoryName = "planshare"
	}
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy" yaml:"healthy"`
	Provider      string        `json:"provider" yaml:"provider"`
	ServerVersion string        `json:"server_version,omitempty" yaml:"server_version,omitempty"`
	ResponseTime  time.Duration `json:"response_time" yaml:"response_time"`
	ActiveConns   int           `json:"active_conns" yaml:"active_conns"`
	IdleConns     int           `json:"idle_conns" yaml:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns" yaml:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time" yaml:"last_check_time"`
}

// DBStats mirrors database/sql pool statistics.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns" yaml:"max_open_conns"`
	OpenConns         int           `json:"open_conns" yaml:"open_conns"`
	InUse             int           `json:"in_use" yaml:"in_use"`
	Idle              int           `json:"idle" yaml:"idle"`
	WaitCount         int64         `json:"wait_count" yaml:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration" yaml:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed" yaml:"max_idle_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed" yaml:"max_lifetime_closed"`
}
