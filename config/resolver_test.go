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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/planshare/types"
)

func newSource(values map[string]any) Source {
	v := NewSource()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestConnectionStringKey(t *testing.T) {
	cases := map[types.DatabaseType]string{
		types.DatabaseTypeSQLServer:   "ConnectionStrings:ConnectionSQLServer",
		types.DatabaseTypeMySQL:       "ConnectionStrings:ConnectionMySQL",
		types.DatabaseTypePostgreSQL:  "ConnectionStrings:ConnectionPostgreSQL",
		types.DatabaseTypeUnspecified: "ConnectionStrings:Connection",
	}
	for dt, want := range cases {
		assert.Equal(t, want, ConnectionStringKey(dt), dt.String())
	}
}

func TestResolverConnectionString(t *testing.T) {
	src := map[string]any{
		KeyConnection:           "generic",
		KeyConnectionSQLServer:  "sqlserver://sa:pw@localhost?database=planshare",
		KeyConnectionMySQL:      "root:pw@tcp(localhost:3306)/planshare",
		KeyConnectionPostgreSQL: "postgres://localhost/planshare",
	}
	tests := []struct {
		dbType string
		want   string
	}{
		{"SQLServer", "sqlserver://sa:pw@localhost?database=planshare"},
		{"MySQL", "root:pw@tcp(localhost:3306)/planshare"},
		{"PostgreSQL", "postgres://localhost/planshare"},
		{"Unspecified", "generic"},
		{"0", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			values := map[string]any{KeyDatabaseType: tt.dbType}
			for k, v := range src {
				values[k] = v
			}
			got, err := NewResolver(newSource(values)).ConnectionString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverDatabaseTypeErrors(t *testing.T) {
	_, err := NewResolver(newSource(nil)).DatabaseType()
	assert.ErrorIs(t, err, types.ErrInvalidDatabaseType)

	r := NewResolver(newSource(map[string]any{KeyDatabaseType: "Oracle"}))
	_, err = r.DatabaseType()
	assert.ErrorIs(t, err, types.ErrInvalidDatabaseType)
	_, err = r.ConnectionString()
	assert.ErrorIs(t, err, types.ErrInvalidDatabaseType)
}

func TestIsUnitTestEnvironment(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{"true", true},
		{"True", true},
		{" TRUE ", true},
		{true, true},
		{"false", false},
		{"yes", false},
		{"1", false},
		{"", false},
		{nil, false},
	}
	for _, tt := range tests {
		values := map[string]any{}
		if tt.value != nil {
			values[KeyInMemoryTests] = tt.value
		}
		got := NewResolver(newSource(values)).IsUnitTestEnvironment()
		assert.Equal(t, tt.want, got, "%v", tt.value)
	}
}

func TestResolverJwt(t *testing.T) {
	r := NewResolver(newSource(map[string]any{
		KeyJwtExpiresMinutes: "90",
		KeyJwtSigningKey:     "secret",
	}))
	jwt, err := r.Jwt()
	require.NoError(t, err)
	assert.Equal(t, uint32(90), jwt.ExpiresMinutes)
	assert.Equal(t, "secret", jwt.SigningKey)

	r = NewResolver(newSource(map[string]any{KeyJwtExpiresMinutes: "-5"}))
	_, err = r.Jwt()
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	r := NewResolver(newSource(map[string]any{
		KeyDatabaseType:      "MySQL",
		KeyConnectionMySQL:   "root@tcp(localhost)/planshare",
		KeyInMemoryTests:     "true",
		KeyJwtExpiresMinutes: "30",
		KeyDBSlowQueryTime:   "500ms",
	}))
	s, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, types.DatabaseTypeMySQL, s.Database.Type)
	assert.Equal(t, "root@tcp(localhost)/planshare", s.Database.ConnectionString)
	assert.True(t, s.Database.InMemory)
	assert.Equal(t, 500*time.Millisecond, s.Database.SlowQueryTime)
	assert.Equal(t, 25, s.Database.MaxOpenConns)
	assert.Equal(t, "Development", s.Environment)
	assert.Equal(t, "info", s.Logging.Level)

	redacted := s.Redacted()
	assert.Equal(t, "******", redacted.Database.ConnectionString)
	assert.Equal(t, "root@tcp(localhost)/planshare", s.Database.ConnectionString)
}

func TestResolveRejectsPool(t *testing.T) {
	r := NewResolver(newSource(map[string]any{
		KeyDatabaseType:   "PostgreSQL",
		KeyDBMaxOpenConns: 2,
		KeyDBMaxIdleConns: 10,
	}))
	_, err := r.Resolve()
	assert.Error(t, err)
}

func TestLoadMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "appsettings.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
ConnectionStrings:
  DatabaseType: MySQL
  ConnectionMySQL: root@tcp(localhost)/base
InMemoryTests: false
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appsettings.Testing.yaml"), []byte(`
ConnectionStrings:
  ConnectionMySQL: root@tcp(localhost)/testing
`), 0o600))

	v, err := Load(LoaderOptions{ConfigFile: base, Environment: "Testing"})
	require.NoError(t, err)

	r := NewResolver(v)
	cs, err := r.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "root@tcp(localhost)/testing", cs)
	assert.Equal(t, "Testing", v.GetString(KeyEnvironment))
	assert.False(t, r.IsUnitTestEnvironment())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "appsettings.yaml")
	require.NoError(t, os.WriteFile(base, []byte("ConnectionStrings:\n  DatabaseType: MySQL\n"), 0o600))
	t.Setenv("CONNECTIONSTRINGS__DATABASETYPE", "PostgreSQL")

	v, err := Load(LoaderOptions{ConfigFile: base})
	require.NoError(t, err)
	dt, err := NewResolver(v).DatabaseType()
	require.NoError(t, err)
	assert.Equal(t, types.DatabaseTypePostgreSQL, dt)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(LoaderOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}
