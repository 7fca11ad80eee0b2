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
	"strconv"
	"strings"
	"time"

	"github.com/tomoncle/planshare/types"
)

// Configuration keys.
const (
	KeyEnvironment   = "Environment"
	KeyInMemoryTests = "InMemoryTests"

	KeyDatabaseType          = "ConnectionStrings:DatabaseType"
	KeyConnection            = "ConnectionStrings:Connection"
	KeyConnectionSQLServer   = "ConnectionStrings:ConnectionSQLServer"
	KeyConnectionMySQL       = "ConnectionStrings:ConnectionMySQL"
	KeyConnectionPostgreSQL  = "ConnectionStrings:ConnectionPostgreSQL"
	KeyJwtExpiresMinutes     = "Settings:Jwt:ExpiresMinutes"
	KeyJwtSigningKey         = "Settings:Jwt:SigningKey"
	KeyLoggingLevel          = "Settings:Logging:Level"
	KeyDBEnableQueryLog      = "Settings:Database:EnableQueryLog"
	KeyDBSlowQueryTime       = "Settings:Database:SlowQueryTime"
	KeyDBMaxOpenConns        = "Settings:Database:MaxOpenConns"
	KeyDBMaxIdleConns        = "Settings:Database:MaxIdleConns"
	KeyDBConnMaxLifetime     = "Settings:Database:ConnMaxLifetime"
	KeyDBConnectTimeout      = "Settings:Database:ConnectTimeout"
	KeyDBSeedPath            = "Settings:Database:SeedPath"
	KeyDBLegacyMySQLFallback = "Settings:Database:LegacyMySQLFallback"
)

// Source is the read side of a configuration store. *viper.Viper satisfies it.
type Source interface {
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetDuration(key string) time.Duration
	IsSet(key string) bool
}

// Resolver interprets raw configuration values. It performs no I/O beyond
// reading the Source.
type Resolver struct {
	src Source
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// ConnectionStringKey returns the configuration key holding the connection
// string for dt. Every value without a dedicated key maps to KeyConnection.
func ConnectionStringKey(dt types.DatabaseType) string {
	switch dt {
	case types.DatabaseTypePostgreSQL:
		return KeyConnectionPostgreSQL
	case types.DatabaseTypeSQLServer:
		return KeyConnectionSQLServer
	case types.DatabaseTypeMySQL:
		return KeyConnectionMySQL
	default:
		return KeyConnection
	}
}

// DatabaseType parses the configured database type. A missing or unknown
// value is an error.
func (r *Resolver) DatabaseType() (types.DatabaseType, error) {
	raw := r.src.GetString(KeyDatabaseType)
	dt, err := types.ParseDatabaseType(raw)
	if err != nil {
		return types.DatabaseTypeUnspecified, fmt.Errorf("%s: %w", KeyDatabaseType, err)
	}
	return dt, nil
}

// ConnectionString returns the connection string matching the configured
// database type. The string itself is not validated.
func (r *Resolver) ConnectionString() (string, error) {
	dt, err := r.DatabaseType()
	if err != nil {
		return "", err
	}
	return r.src.GetString(ConnectionStringKey(dt)), nil
}

// IsUnitTestEnvironment reports whether InMemoryTests is "true" (any case).
// Anything else, including malformed values, is false.
func (r *Resolver) IsUnitTestEnvironment() bool {
	return strings.EqualFold(strings.TrimSpace(r.src.GetString(KeyInMemoryTests)), "true")
}

// Jwt reads the token settings. ExpiresMinutes must be an unsigned integer
// when present.
func (r *Resolver) Jwt() (JwtSettings, error) {
	s := JwtSettings{SigningKey: r.src.GetString(KeyJwtSigningKey)}
	raw := strings.TrimSpace(r.src.GetString(KeyJwtExpiresMinutes))
	if raw == "" {
		return s, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return s, fmt.Errorf("%s: %w", KeyJwtExpiresMinutes, err)
	}
	s.ExpiresMinutes = uint32(n)
	return s, nil
}

// Resolve reads everything the infrastructure layer needs in one pass.
func (r *Resolver) Resolve() (*Settings, error) {
	dt, err := r.DatabaseType()
	if err != nil {
		return nil, err
	}
	jwt, err := r.Jwt()
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Environment: r.src.GetString(KeyEnvironment),
		Database: DatabaseSettings{
			Type:                dt,
			ConnectionString:    r.src.GetString(ConnectionStringKey(dt)),
			InMemory:            r.IsUnitTestEnvironment(),
			EnableQueryLog:      r.src.GetBool(KeyDBEnableQueryLog),
			SlowQueryTime:       r.src.GetDuration(KeyDBSlowQueryTime),
			MaxOpenConns:        r.src.GetInt(KeyDBMaxOpenConns),
			MaxIdleConns:        r.src.GetInt(KeyDBMaxIdleConns),
			ConnMaxLifetime:     r.src.GetDuration(KeyDBConnMaxLifetime),
			ConnectTimeout:      r.src.GetDuration(KeyDBConnectTimeout),
			SeedPath:            r.src.GetString(KeyDBSeedPath),
			LegacyMySQLFallback: r.src.GetBool(KeyDBLegacyMySQLFallback),
		},
		Jwt:     jwt,
		Logging: LoggingSettings{Level: r.src.GetString(KeyLoggingLevel)},
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
